package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	boltcache "github.com/khoward/debtscan/internal/adapters/bbolt"
	"github.com/khoward/debtscan/internal/adapters/mmap"
	"github.com/khoward/debtscan/internal/adapters/treesitter"
	"github.com/khoward/debtscan/internal/config"
	"github.com/khoward/debtscan/internal/domain/extract"
	"github.com/khoward/debtscan/internal/domain/lang"
	"github.com/khoward/debtscan/internal/domain/scan"
	"github.com/khoward/debtscan/internal/ports"
)

var (
	scanVerify  bool
	scanNoCache bool
	scanWorkers int
	scanTags    []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Scan files for debt markers",
	Long: `Scans the given files for debt markers. Pass file paths as arguments,
or "-" to read a newline-separated list from stdin (the usual hand-off
from a discovery tool). Files with unknown extensions are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanVerify, "verify", false, "verify comment boundaries with syntax trees")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "bypass the fingerprint cache")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "worker pool size (0 = default)")
	scanCmd.Flags().StringSliceVar(&scanTags, "tag", nil, "additional tag to recognize (repeatable)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := cfg.Logger("debtscan")

	files, err := fileArgs(args)
	if err != nil {
		return err
	}

	registry := lang.NewRegistry()

	vocab := cfg.Scan.Tags
	vocab = append(vocab, scanTags...)
	var extractOpts []extract.Option
	if !cfg.Scan.CaseSensitive() {
		extractOpts = append(extractOpts, extract.WithCaseInsensitive())
	}
	extractor, err := extract.New(registry, vocab, extractOpts...)
	if err != nil {
		return err
	}

	var scanner ports.FileScanner = extractor
	var verifier *treesitter.Verifier
	if scanVerify || cfg.Scan.Verify {
		loader := treesitter.NewDynamicLoader(treesitter.DefaultGrammarPaths(projectRoot()))
		verifier = treesitter.NewVerifier(extractor, registry,
			treesitter.WithLoader(loader), treesitter.WithLogger(log))
		scanner = verifier
	}

	var cache ports.FindingCache
	if !scanNoCache && !cfg.Cache.Disabled {
		path := cfg.CachePath(projectRoot())
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		c, err := boltcache.Open(path, log)
		if err != nil {
			return err
		}
		defer c.Close()
		cache = c
	}

	reader := mmap.NewReader(cfg.Scan.MmapThreshold)
	inc := scan.NewIncremental(scanner, cache, reader, log)

	workers := scanWorkers
	if workers == 0 {
		workers = cfg.Scan.Workers
	}
	orch := scan.NewOrchestrator(inc, scan.WithWorkers(workers), scan.WithLogger(log))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := orch.Scan(ctx, files)
	if err != nil {
		log.Warn("scan stopped early", "error", err)
	}

	printFindings(result.Findings)
	printSummary(result, verifier)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "warning: %v\n", e)
		}
	}
	return nil
}

// fileArgs resolves the positional arguments into a file list. A single
// "-" reads newline-separated paths from stdin.
func fileArgs(args []string) ([]string, error) {
	if len(args) == 1 && args[0] == "-" {
		var files []string
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if line := sc.Text(); line != "" {
				files = append(files, line)
			}
		}
		return files, sc.Err()
	}
	return args, nil
}

func printFindings(findings []ports.Finding) {
	for _, f := range findings {
		meta := ""
		if f.Author != "" {
			meta += " @" + f.Author
		}
		if f.Issue != "" {
			meta += " #" + f.Issue
		}
		if f.Priority != ports.PriorityNone {
			meta += " !" + f.Priority.String()
		}
		fmt.Printf("%s:%d:%d [%s]%s %s\n", f.File, f.Line, f.Column, f.Tag, meta, f.Message)
	}
}

func printSummary(result *ports.ScanResult, verifier *treesitter.Verifier) {
	s := result.Stats
	fmt.Printf("\n%d findings in %d/%d files (%d from cache) in %s\n",
		s.TotalFindings, s.FilesWithResults, s.FilesScanned, s.FromCache, s.Elapsed.Round(time.Millisecond))
	if verifier != nil {
		snap := verifier.StatsSnapshot()
		if snap.Discarded > 0 {
			fmt.Printf("verification dropped %d of %d candidates (%.1f%% accuracy)\n",
				snap.Discarded, snap.Candidates, snap.Accuracy())
		}
	}
}
