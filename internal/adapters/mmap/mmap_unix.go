//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/khoward/debtscan/internal/ports"
)

// mapped is a memory-mapped content view. Bytes are valid until Close.
type mapped struct {
	data []byte
}

func (m *mapped) Bytes() []byte { return m.data }

func (m *mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// openMapped maps the file read-only. The descriptor is closed immediately
// after mapping; the mapping stays valid until Munmap.
func openMapped(path string, size int64) (ports.FileContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &mapped{data: data}, nil
}
