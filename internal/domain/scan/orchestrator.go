package scan

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/khoward/debtscan/internal/ports"
)

// DefaultWorkers bounds the pool when the caller does not choose a size.
const DefaultWorkers = 8

// Orchestrator distributes a file list across a bounded worker pool and
// merges per-file results. Workers are independent: the cache is the only
// shared state, and its per-key atomicity is enforced by the adapter, so
// nothing here locks across files.
type Orchestrator struct {
	incremental *Incremental
	workers     int
	log         hclog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the pool size. Values below 1 fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithLogger sets the orchestrator's logger.
func WithLogger(log hclog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator builds an orchestrator over an incremental scanner.
func NewOrchestrator(inc *Incremental, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		incremental: inc,
		workers:     DefaultWorkers,
		log:         hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fileResult is one worker's output for one file.
type fileResult struct {
	findings  []ports.Finding
	fromCache bool
	err       *ports.ScanError
	done      bool
}

// Scan processes the file list and returns merged findings, statistics,
// and the per-file error list. Per-file failures never abort the batch: a
// failing file contributes zero findings and one error entry. Cancelling
// ctx stops the scan at file granularity — results for files already
// completed remain valid and are returned along with ctx's error.
//
// Findings come back sorted by file, then line, then column. Statistics
// are an associative merge of per-file results, so totals are identical
// regardless of worker count.
func (o *Orchestrator) Scan(ctx context.Context, files []string) (*ports.ScanResult, error) {
	start := time.Now()
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			findings, fromCache, err := o.incremental.ScanPath(path)
			r := &results[i]
			r.done = true
			r.fromCache = fromCache
			if err != nil {
				var scanErr *ports.ScanError
				if !errors.As(err, &scanErr) {
					scanErr = &ports.ScanError{Path: path, Kind: ports.ErrorIO, Err: err}
				}
				r.err = scanErr
				o.log.Debug("file failed", "path", path, "kind", scanErr.Kind.String(), "error", scanErr.Err)
				return nil
			}
			r.findings = findings
			return nil
		})
	}

	waitErr := g.Wait()

	result := &ports.ScanResult{Stats: ports.NewScanStats()}
	for i := range results {
		r := &results[i]
		if !r.done {
			continue
		}
		if r.err != nil {
			result.Errors = append(result.Errors, r.err)
			result.Stats.FilesScanned++
			continue
		}
		result.Stats.AddFile(r.findings, r.fromCache)
		result.Findings = append(result.Findings, r.findings...)
	}

	sort.SliceStable(result.Findings, func(a, b int) bool {
		fa, fb := &result.Findings[a], &result.Findings[b]
		if fa.File != fb.File {
			return fa.File < fb.File
		}
		if fa.Line != fb.Line {
			return fa.Line < fb.Line
		}
		return fa.Column < fb.Column
	})

	result.Stats.Elapsed = time.Since(start)
	o.log.Debug("scan complete",
		"files", result.Stats.FilesScanned,
		"findings", result.Stats.TotalFindings,
		"from_cache", result.Stats.FromCache,
		"errors", len(result.Errors),
		"elapsed", result.Stats.Elapsed)

	return result, waitErr
}
