package ustar_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stealthrocket/ustar"
	"github.com/stealthrocket/ustar/internal/ustartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openArchive(t *testing.T, data []byte, options ...ustar.Option) *ustar.Archive {
	t.Helper()
	a, err := ustar.New(bytes.NewReader(data), int64(len(data)), options...)
	require.NoError(t, err)
	return a
}

// sampleArchive is laid out as:
//
//	offset 0     dir/
//	offset 512   dir/a    (1 byte)
//	offset 1536  dir/b    (1500 bytes)
//	offset 3584  dir/c/
//	offset 4096  dir/c/d  (empty)
//	offset 4608  link -> dir/a
//	offset 5120  end of archive
func sampleArchive(t *testing.T) []byte {
	return ustartest.NewWriter(t).
		Dir("dir/").
		File("dir/a", "A").
		File("dir/b", strings.Repeat("b", 1500)).
		Dir("dir/c/").
		File("dir/c/d", "").
		Symlink("link", "dir/a").
		Bytes()
}

func TestValidate(t *testing.T) {
	data := sampleArchive(t)

	count, err := openArchive(t, data).Validate()
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// walking count headers from the start lands on the end marker
	var offset int64
	for i := 0; i < count; i++ {
		h, err := ustar.DecodeHeader(data[offset:])
		require.NoError(t, err)
		offset = ustar.NextHeaderOffset(offset, h.Size)
	}
	assert.Equal(t, int64(len(data)), offset+1024)
	assert.Equal(t, make([]byte, 1024), data[offset:])
}

func TestValidateEmpty(t *testing.T) {
	count, err := openArchive(t, ustartest.NewWriter(t).Bytes()).Validate()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestValidateZeroSizeLastEntry(t *testing.T) {
	data := ustartest.NewWriter(t).File("empty", "").Bytes()

	count, err := openArchive(t, data).Validate()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		scenario string
		corrupt  func([]byte) []byte
		err      error
		offset   int64
	}{
		{
			scenario: "magic of the first header",
			corrupt:  func(b []byte) []byte { b[257] = 'X'; return b },
			err:      ustar.ErrBadMagic,
			offset:   0,
		},
		{
			scenario: "version of the first header",
			corrupt:  func(b []byte) []byte { b[264] = '1'; return b },
			err:      ustar.ErrBadVersion,
			offset:   0,
		},
		{
			scenario: "byte covered by the checksum",
			corrupt:  func(b []byte) []byte { b[0] = 'D'; return b },
			err:      ustar.ErrBadChecksum,
			offset:   0,
		},
		{
			scenario: "magic of the third header",
			corrupt:  func(b []byte) []byte { b[1536+257] = 0; return b },
			err:      ustar.ErrBadMagic,
			offset:   1536,
		},
		{
			scenario: "size field",
			corrupt: func(b []byte) []byte {
				ustartest.Patch(b, 512, 124, []byte("abcdefghijk\x00"))
				return b
			},
			err:    ustar.ErrMalformedHeader,
			offset: 512,
		},
		{
			scenario: "missing end marker",
			corrupt:  func(b []byte) []byte { return b[:len(b)-1024] },
			err:      ustar.ErrTruncated,
		},
		{
			scenario: "single zero block as end marker",
			corrupt:  func(b []byte) []byte { return b[:len(b)-512] },
			err:      ustar.ErrTruncated,
		},
		{
			scenario: "payload past the end of the data",
			corrupt:  func(b []byte) []byte { return b[:1536+512+700] },
			err:      ustar.ErrTruncated,
			offset:   1536,
		},
		{
			scenario: "no data",
			corrupt:  func(b []byte) []byte { return b[:0] },
			err:      ustar.ErrTruncated,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			data := test.corrupt(sampleArchive(t))

			count, err := openArchive(t, data).Validate()
			assert.Equal(t, 0, count)
			require.ErrorIs(t, err, test.err)

			var headerErr *ustar.HeaderError
			require.True(t, errors.As(err, &headerErr))
			if test.offset != 0 {
				assert.Equal(t, test.offset, headerErr.Offset)
			}
		})
	}
}

func TestValidateStopsAtFirstViolation(t *testing.T) {
	data := sampleArchive(t)
	data[1536+264] = '9' // version of dir/b
	data[257] = 'X'      // magic of dir/

	_, err := openArchive(t, data).Validate()
	assert.ErrorIs(t, err, ustar.ErrBadMagic)
	assert.NotErrorIs(t, err, ustar.ErrBadVersion)
}

func TestNewErrors(t *testing.T) {
	_, err := ustar.New(bytes.NewReader(nil), -1)
	assert.Error(t, err)

	_, err = ustar.New(bytes.NewReader(nil), 0, ustar.WithLookupCache(0))
	assert.Error(t, err)
}
