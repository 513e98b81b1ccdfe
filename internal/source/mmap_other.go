//go:build !unix

package source

import (
	"errors"
	"os"
)

func mapFile(f *os.File, size int64) (Source, error) {
	return nil, errors.New("memory mapping is not supported on this platform")
}
