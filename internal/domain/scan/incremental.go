// Package scan composes the extraction strategies, the fingerprint cache,
// and the content reader into whole-batch scans. The orchestrator fans a
// file list out over a bounded worker pool; the incremental layer skips
// files whose fingerprint has not changed since the last scan.
package scan

import (
	"errors"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/khoward/debtscan/internal/ports"
)

// Incremental wraps an extraction strategy with fingerprint-cache reuse.
// For a fresh file it returns cached findings without reading content, so
// repeated scans over an unchanged tree cost one stat per file. At most one
// physical content scan happens per (file, fingerprint) pair for callers
// sharing the same cache store.
type Incremental struct {
	scanner ports.FileScanner
	cache   ports.FindingCache
	reader  ports.ContentReader
	log     hclog.Logger
}

// NewIncremental builds an incremental scanner. The cache may be nil, in
// which case every call scans content directly.
func NewIncremental(scanner ports.FileScanner, cache ports.FindingCache, reader ports.ContentReader, log hclog.Logger) *Incremental {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Incremental{scanner: scanner, cache: cache, reader: reader, log: log}
}

// ScanPath scans one file, consulting the cache first. fromCache reports
// whether the findings were served without a content read.
func (s *Incremental) ScanPath(path string) (findings []ports.Finding, fromCache bool, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return nil, false, &ports.ScanError{Path: path, Kind: ports.ErrorIO, Err: statErr}
	}
	fp := ports.Fingerprint{MTime: info.ModTime().Unix(), Size: info.Size()}

	if s.cache != nil && s.cache.IsFresh(path, fp) {
		entry, getErr := s.cache.Get(path)
		if getErr == nil && entry != nil {
			return entry.Findings, true, nil
		}
		// A read failure on a fresh entry falls through to a real scan.
		s.log.Debug("cache read failed, rescanning", "path", path, "error", getErr)
	}

	findings, err = s.scanContent(path)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if putErr := s.cache.Put(path, fp, findings); putErr != nil {
			// Cache write failures degrade to uncached behavior.
			s.log.Warn("cache write failed", "path", path, "error", putErr)
		}
	}
	return findings, false, nil
}

// scanContent reads the file and runs the wrapped strategy.
func (s *Incremental) scanContent(path string) ([]ports.Finding, error) {
	content, err := s.reader.Open(path)
	if err != nil {
		return nil, &ports.ScanError{Path: path, Kind: ports.ErrorIO, Err: err}
	}
	defer content.Close()

	findings, err := s.scanner.ScanFile(path, content.Bytes())
	if err != nil {
		var scanErr *ports.ScanError
		if errors.As(err, &scanErr) {
			return nil, scanErr
		}
		return nil, &ports.ScanError{Path: path, Kind: ports.ErrorParse, Err: err}
	}
	return findings, nil
}
