// Package source supplies the bytes of archives stored in files.
package source

import (
	"fmt"
	"io"
	"os"
)

// Source is a read-only view of the content of a file.
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Open opens the file at name. When mmap is true the file is mapped in memory
// (where the platform supports it), otherwise reads are issued as positioned
// reads on the file descriptor, allowing concurrent use of the source.
func Open(name string, mmap bool) (Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat archive %s: %w", name, err)
	}

	if mmap && info.Size() > 0 {
		m, err := mapFile(f, info.Size())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to mmap archive %s: %w", name, err)
		}
		return m, nil
	}
	return &file{File: f, size: info.Size()}, nil
}

type file struct {
	*os.File
	size int64
}

func (f *file) Size() int64 { return f.size }
