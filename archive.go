package ustar

import (
	"errors"
	"io"
	"io/fs"

	lru "github.com/hashicorp/golang-lru"
)

// Archive gives read-only access to a ustar archive held behind an
// io.ReaderAt.
//
// An Archive retains no parsed state: every query walks the header records of
// the underlying data from the start. The data is never written to, so an
// Archive is safe for concurrent use as long as the io.ReaderAt is (which is
// the case of *bytes.Reader and *os.File).
type Archive struct {
	data  *io.SectionReader
	size  int64
	cache *lru.Cache
}

// Option configures an Archive.
type Option func(*Archive) error

// WithLookupCache keeps the entries found by Locate in a LRU cache holding up
// to size names.
func WithLookupCache(size int) Option {
	return func(a *Archive) error {
		cache, err := lru.New(size)
		if err != nil {
			return err
		}
		a.cache = cache
		return nil
	}
}

// New returns an Archive reading size bytes from data.
func New(data io.ReaderAt, size int64, options ...Option) (*Archive, error) {
	if size < 0 {
		return nil, errors.New("ustar: negative archive size")
	}
	a := &Archive{
		data: io.NewSectionReader(data, 0, size),
		size: size,
	}
	for _, opt := range options {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Size returns the number of bytes of the archive.
func (a *Archive) Size() int64 {
	return a.size
}

// Validate checks the magic, version and checksum of every header of the
// archive and returns the number of entries it holds.
//
// Validation stops at the first header failing a check; the returned
// *HeaderError wraps ErrBadMagic, ErrBadVersion or ErrBadChecksum.
func (a *Archive) Validate() (int, error) {
	count := 0
	err := a.walk(func(offset int64, b *block) error {
		if err := b.verify(); err != nil {
			return &HeaderError{Offset: offset, Name: parseString(b.name()), Err: err}
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// walk calls fn with the offset and raw record of each header of the archive,
// in physical order, until the end-of-archive marker is reached. The record
// is only valid for the duration of the call. Returning fs.SkipAll from fn
// ends the walk without error.
//
// The size of each header is trusted to find the next one; a corrupted size
// desynchronizes the rest of the walk, which is then likely to fail on a
// truncated or malformed header.
func (a *Archive) walk(fn func(offset int64, b *block) error) error {
	var window [endSize]byte

	for offset := int64(0); ; {
		n, err := a.data.ReadAt(window[:], offset)
		if n < endSize && err != nil && err != io.EOF {
			return err
		}
		if isEnd(window[:n]) {
			return nil
		}
		// a lone zero block is an incomplete end marker, not a header
		if n < headerSize || (n < endSize && isZero(window[:headerSize])) {
			return &HeaderError{Offset: offset, Err: ErrTruncated}
		}

		b := (*block)(window[:headerSize])
		if err := fn(offset, b); err != nil {
			if err == fs.SkipAll {
				return nil
			}
			return err
		}

		size, err := parseOctal(b.size())
		if err != nil {
			return &HeaderError{Offset: offset, Name: parseString(b.name()), Err: ErrMalformedHeader}
		}
		if size > a.size-offset-headerSize {
			return &HeaderError{Offset: offset, Name: parseString(b.name()), Err: ErrTruncated}
		}
		offset = NextHeaderOffset(offset, size)
	}
}
