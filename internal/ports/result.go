package ports

import (
	"fmt"
	"time"
)

// ErrorKind classifies a per-file scan failure.
type ErrorKind int

const (
	ErrorIO       ErrorKind = iota // file unreadable or missing
	ErrorEncoding                  // binary or invalid text content
	ErrorParse                     // syntax-tree layer failure
	ErrorCache                     // cache store failure
)

// String returns the short machine-readable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorIO:
		return "io"
	case ErrorEncoding:
		return "encoding"
	case ErrorParse:
		return "parse"
	case ErrorCache:
		return "cache"
	}
	return "unknown"
}

// ScanError records one file's failure. A failing file contributes zero
// findings and exactly one ScanError; it never aborts the batch.
type ScanError struct {
	Path string
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ScanError) Unwrap() error { return e.Err }

// ScanStats aggregates a whole batch. It is built by an associative,
// order-independent merge over per-file results, so totals are identical
// regardless of worker count or scheduling.
type ScanStats struct {
	FilesScanned     int            `json:"files_scanned"`
	FilesWithResults int            `json:"files_with_findings"`
	TotalFindings    int            `json:"total_findings"`
	ByTag            map[string]int `json:"by_tag"`
	FromCache        int            `json:"from_cache"`
	Elapsed          time.Duration  `json:"elapsed_ns"`
}

// NewScanStats returns an empty stats accumulator.
func NewScanStats() ScanStats {
	return ScanStats{ByTag: make(map[string]int)}
}

// AddFile folds one file's findings into the stats.
func (s *ScanStats) AddFile(findings []Finding, fromCache bool) {
	s.FilesScanned++
	if fromCache {
		s.FromCache++
	}
	if len(findings) == 0 {
		return
	}
	s.FilesWithResults++
	for _, f := range findings {
		s.TotalFindings++
		s.ByTag[f.Tag.String()]++
	}
}

// Merge folds another accumulator into this one. Merge is associative and
// commutative apart from Elapsed, which the orchestrator sets once at the end.
func (s *ScanStats) Merge(other ScanStats) {
	s.FilesScanned += other.FilesScanned
	s.FilesWithResults += other.FilesWithResults
	s.TotalFindings += other.TotalFindings
	s.FromCache += other.FromCache
	for tag, n := range other.ByTag {
		s.ByTag[tag] += n
	}
}

// ScanResult is the full output of one orchestrated scan.
type ScanResult struct {
	Findings []Finding
	Stats    ScanStats
	Errors   []*ScanError
}
