// Package mmap implements ports.ContentReader with a size-based strategy:
// files at or below the threshold use an ordinary buffered read, larger
// ones are memory-mapped so peak memory stays bounded on very large files.
// Both paths yield byte-identical content; mapping is a performance choice,
// never a behavior change.
package mmap

import (
	"os"

	"github.com/khoward/debtscan/internal/ports"
)

// DefaultThreshold is the size above which files are memory-mapped.
const DefaultThreshold = 256 * 1024

// Reader implements ports.ContentReader.
type Reader struct {
	threshold int64
}

// NewReader creates a reader with the given mmap threshold in bytes.
// A non-positive threshold selects DefaultThreshold.
func NewReader(threshold int64) *Reader {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Reader{threshold: threshold}
}

// Open returns the content of the file at path. Content larger than the
// threshold is memory-mapped on platforms that support it.
func (r *Reader) Open(path string) (ports.FileContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > r.threshold {
		if c, err := openMapped(path, info.Size()); err == nil {
			return c, nil
		}
		// Mapping can fail on exotic filesystems; fall through to a plain read.
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &buffered{data: data}, nil
}

// buffered is the plain-read content implementation.
type buffered struct {
	data []byte
}

func (b *buffered) Bytes() []byte { return b.data }
func (b *buffered) Close() error  { b.data = nil; return nil }
