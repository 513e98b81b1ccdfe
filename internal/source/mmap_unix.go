//go:build unix

package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"syscall"
)

type mapping struct {
	*bytes.Reader
	file *os.File
	data []byte
}

func mapFile(f *os.File, size int64) (*mapping, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mapping{Reader: bytes.NewReader(data), file: f, data: data}, nil
}

func (m *mapping) Close() error {
	var errs []error

	if m.data != nil {
		if err := syscall.Munmap(m.data); err != nil {
			errs = append(errs, fmt.Errorf("failed to munmap: %w", err))
		}
		m.data = nil // prevent double unmapping
	}

	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close file: %w", err))
		}
		m.file = nil
	}

	return errors.Join(errs...)
}
