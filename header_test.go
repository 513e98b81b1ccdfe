package ustar

import (
	"archive/tar"
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCursor(t *testing.T) {
	tests := []struct {
		size   int64
		blocks int64
	}{
		{0, 0},
		{1, 1},
		{511, 1},
		{512, 1},
		{513, 2},
		{1024, 2},
		{1025, 3},
	}

	for _, test := range tests {
		assert.Equal(t, test.blocks, BlocksFor(test.size), "size=%d", test.size)
		assert.Equal(t, 1000+512+test.blocks*512, NextHeaderOffset(1000, test.size), "size=%d", test.size)
	}
}

func TestParseOctal(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"", 0, true},
		{"\x00\x00\x00", 0, true},
		{"00000000013\x00", 11, true},
		{"     13 ", 11, true},
		{"0000644\x00", 0644, true},
		{"006543\x00 ", 06543, true},
		{"17777777777", 017777777777, true},
		{"12 3", 0, false},
		{"9", 0, false},
		{"abc", 0, false},
	}

	for _, test := range tests {
		got, err := parseOctal([]byte(test.in))
		if !test.ok {
			assert.Error(t, err, "%q", test.in)
			continue
		}
		require.NoError(t, err, "%q", test.in)
		assert.Equal(t, test.want, got, "%q", test.in)
	}
}

func TestParseString(t *testing.T) {
	assert.Equal(t, "hello", parseString([]byte("hello\x00\x00\x00")))
	assert.Equal(t, "", parseString(make([]byte, 100)))

	full := bytes.Repeat([]byte("a"), 100)
	assert.Equal(t, string(full), parseString(full))
}

func TestDecodeHeader(t *testing.T) {
	modTime := time.Unix(1577836800, 0)
	b := writeHeader(t, &tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     "some/link",
		Linkname: "../target",
		Mode:     0777,
		ModTime:  modTime,
	})

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, "some/link", h.Name)
	assert.Equal(t, "../target", h.Linkname)
	assert.Equal(t, int64(0777), h.Mode)
	assert.Equal(t, int64(0), h.Size)
	assert.True(t, h.ModTime.Equal(modTime))
	assert.Equal(t, TypeSymlink, h.Typeflag)
	assert.Equal(t, magicUSTAR, h.Magic)
	assert.Equal(t, versionUSTAR, h.Version)
	assert.True(t, h.IsSymlink())
	assert.False(t, h.IsDir())
	assert.False(t, h.IsRegular())

	info := h.FileInfo()
	assert.Equal(t, "link", info.Name())
	assert.Equal(t, fs.ModeSymlink, info.Mode().Type())
}

func TestDecodeHeaderFile(t *testing.T) {
	b := writeHeader(t, &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     "file",
		Mode:     0644,
		Size:     12345,
	})

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), h.Size)
	assert.True(t, h.IsRegular())

	b[156] = TypeRegA
	h, err = DecodeHeader(b)
	require.NoError(t, err)
	assert.True(t, h.IsRegular())
}

func TestDecodeHeaderErrors(t *testing.T) {
	_, err := DecodeHeader(make([]byte, 511))
	assert.ErrorIs(t, err, ErrTruncated)

	b := writeHeader(t, &tar.Header{Name: "file", Size: 1})
	copy(b[124:136], "not octal!!\x00")
	_, err = DecodeHeader(b)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestChecksum(t *testing.T) {
	b := writeHeader(t, &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     "dir/file.txt",
		Mode:     0600,
		Size:     42,
	})

	stored, err := parseOctal(b[148:156])
	require.NoError(t, err)
	assert.Equal(t, stored, Checksum(b))

	// the checksum field itself does not contribute to the sum
	copy(b[148:156], "77777777")
	assert.Equal(t, stored, Checksum(b))

	b[0]++
	assert.Equal(t, stored+1, Checksum(b))

	var zero [blockSize]byte
	assert.Equal(t, int64(8*' '), Checksum(zero[:]))
}

func TestVerify(t *testing.T) {
	fresh := func() *block {
		return (*block)(writeHeader(t, &tar.Header{Name: "file", Mode: 0644}))
	}

	assert.NoError(t, fresh().verify())

	b := fresh()
	b[257] = 'U'
	assert.ErrorIs(t, b.verify(), ErrBadMagic)

	b = fresh()
	b[262] = ' '
	assert.ErrorIs(t, b.verify(), ErrBadMagic)

	b = fresh()
	b[264] = '1'
	assert.ErrorIs(t, b.verify(), ErrBadVersion)

	b = fresh()
	b[1] = 'X'
	assert.ErrorIs(t, b.verify(), ErrBadChecksum)

	b = fresh()
	copy(b.chksum(), "garbage!")
	assert.ErrorIs(t, b.verify(), ErrBadChecksum)
}

func TestIsEnd(t *testing.T) {
	window := make([]byte, endSize)
	assert.True(t, isEnd(window))
	assert.False(t, isEnd(window[:blockSize]))

	window[endSize-1] = 1
	assert.False(t, isEnd(window))
}

func TestIsChild(t *testing.T) {
	tests := []struct {
		name  string
		child bool
	}{
		{"dir/a", true},
		{"dir/c/", true},
		{"dir/", false},
		{"dir", false},
		{"dir/c/d", false},
		{"dir/c/d/", false},
		{"dir//", false},
		{"dirx/a", false},
		{"other/a", false},
	}

	for _, test := range tests {
		assert.Equal(t, test.child, isChild("dir/", []byte(test.name)), "%q", test.name)
	}
}

// writeHeader returns the header record written by archive/tar for h.
func writeHeader(t *testing.T, h *tar.Header) []byte {
	t.Helper()
	buffer := new(bytes.Buffer)
	writer := tar.NewWriter(buffer)
	h.Format = tar.FormatUSTAR
	require.NoError(t, writer.WriteHeader(h))
	return buffer.Bytes()[:blockSize]
}
