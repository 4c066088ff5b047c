//go:build !unix

package mmap

import (
	"errors"

	"github.com/khoward/debtscan/internal/ports"
)

// openMapped is unavailable on platforms without unix mmap; the caller
// falls back to a buffered read.
func openMapped(path string, size int64) (ports.FileContent, error) {
	return nil, errors.New("mmap not supported on this platform")
}
