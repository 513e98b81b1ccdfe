package ustar

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrWrongType wraps ErrNotFound: a query for a file of one type does not
// find an entry of another type, but the two cases remain distinguishable.
var (
	ErrBadMagic        = errors.New("ustar: invalid magic")
	ErrBadVersion       = errors.New("ustar: invalid version")
	ErrBadChecksum      = errors.New("ustar: invalid checksum")
	ErrMalformedHeader  = errors.New("ustar: malformed header")
	ErrTruncated        = errors.New("ustar: archive is truncated")
	ErrNotFound         = fmt.Errorf("ustar: entry %w", fs.ErrNotExist)
	ErrWrongType        = fmt.Errorf("%w: wrong entry type", ErrNotFound)
	ErrOffsetOutOfRange = errors.New("ustar: offset out of range")
	ErrSymlinkCycle     = errors.New("ustar: loop detected while following symbolic links")
)

// HeaderError is returned when a header block of the archive cannot be
// trusted. No header past Offset is looked at once it has been reported.
type HeaderError struct {
	Offset int64
	Name   string
	Err    error
}

func (e *HeaderError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("header at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("header %q at offset %d: %v", e.Name, e.Offset, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }
