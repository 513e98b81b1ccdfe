package ustar

import (
	"bytes"
	"io/fs"
	"path"
	"strconv"
	"time"
)

// Size constants of the ustar format.
const (
	blockSize  = 512
	headerSize = blockSize
	endSize    = 2 * blockSize
)

const (
	magicUSTAR   = "ustar\x00"
	versionUSTAR = "00"
)

// Type flags of the entries found in an archive. Only regular files,
// directories and symbolic links are recognized by the queries of an Archive,
// other types are carried through untouched.
const (
	TypeReg     byte = '0'
	TypeRegA    byte = '\x00' // legacy encoding of a regular file
	TypeLink    byte = '1'
	TypeSymlink byte = '2'
	TypeChar    byte = '3'
	TypeBlock   byte = '4'
	TypeDir     byte = '5'
	TypeFifo    byte = '6'
)

// block is a raw header record. The accessors follow the POSIX ustar layout.
type block [blockSize]byte

func (b *block) name() []byte     { return b[0:][:100] }
func (b *block) mode() []byte     { return b[100:][:8] }
func (b *block) size() []byte     { return b[124:][:12] }
func (b *block) modTime() []byte  { return b[136:][:12] }
func (b *block) chksum() []byte   { return b[148:][:8] }
func (b *block) typeflag() byte   { return b[156] }
func (b *block) linkname() []byte { return b[157:][:100] }
func (b *block) magic() []byte    { return b[257:][:6] }
func (b *block) version() []byte  { return b[263:][:2] }

// Header is the decoded view of one header record.
type Header struct {
	Name     string
	Mode     int64
	Size     int64
	ModTime  time.Time
	Typeflag byte
	Linkname string
	Magic    string
	Version  string
}

func (h *Header) IsDir() bool     { return h.Typeflag == TypeDir }
func (h *Header) IsSymlink() bool { return h.Typeflag == TypeSymlink }
func (h *Header) IsRegular() bool { return h.Typeflag == TypeReg || h.Typeflag == TypeRegA }

// FileInfo returns a fs.FileInfo describing the entry.
func (h *Header) FileInfo() fs.FileInfo { return headerInfo{h} }

// DecodeHeader decodes the header record at the start of b.
func DecodeHeader(b []byte) (*Header, error) {
	if len(b) < headerSize {
		return nil, ErrTruncated
	}
	return decodeBlock((*block)(b[:headerSize]))
}

func decodeBlock(b *block) (*Header, error) {
	size, err := parseOctal(b.size())
	if err != nil {
		return nil, ErrMalformedHeader
	}
	// mode and mtime play no part in traversal, a corrupted value is reported
	// as zero rather than hiding the entry.
	mode, _ := parseOctal(b.mode())
	mtime, _ := parseOctal(b.modTime())
	return &Header{
		Name:     parseString(b.name()),
		Mode:     mode,
		Size:     size,
		ModTime:  time.Unix(mtime, 0),
		Typeflag: b.typeflag(),
		Linkname: parseString(b.linkname()),
		Magic:    string(b.magic()),
		Version:  string(b.version()),
	}, nil
}

// Checksum computes the checksum of the header record at the start of b, as
// the unsigned sum of its bytes with the checksum field counted as spaces.
// b must hold at least one full record.
func Checksum(b []byte) int64 {
	var sum int64
	for i, c := range b[:headerSize] {
		if 148 <= i && i < 156 {
			c = ' '
		}
		sum += int64(c)
	}
	return sum
}

// verify applies the format checks of a single header record.
func (b *block) verify() error {
	if string(b.magic()) != magicUSTAR {
		return ErrBadMagic
	}
	if string(b.version()) != versionUSTAR {
		return ErrBadVersion
	}
	stored, err := parseOctal(b.chksum())
	if err != nil || stored != Checksum(b[:]) {
		return ErrBadChecksum
	}
	return nil
}

// isEnd reports whether window is the end-of-archive marker: two consecutive
// zero blocks.
func isEnd(window []byte) bool {
	return len(window) == endSize && isZero(window)
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// parseString returns the bytes of a NUL padded field up to the first NUL.
// A field that uses all of its bytes has no terminator.
func parseString(b []byte) string {
	return string(cstring(b))
}

func cstring(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// parseOctal decodes an octal number surrounded by NUL or space fill.
func parseOctal(b []byte) (int64, error) {
	b = bytes.Trim(b, " \x00")
	if len(b) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(b), 8, 63)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

type headerInfo struct{ header *Header }

func (info headerInfo) Name() string       { return path.Base(info.header.Name) }
func (info headerInfo) Size() int64        { return info.header.Size }
func (info headerInfo) ModTime() time.Time { return info.header.ModTime }
func (info headerInfo) IsDir() bool        { return info.header.IsDir() }
func (info headerInfo) Sys() any           { return info.header }

func (info headerInfo) Mode() fs.FileMode {
	mode := fs.FileMode(info.header.Mode).Perm()
	switch info.header.Typeflag {
	case TypeDir:
		mode |= fs.ModeDir
	case TypeSymlink:
		mode |= fs.ModeSymlink
	case TypeChar:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case TypeBlock:
		mode |= fs.ModeDevice
	case TypeFifo:
		mode |= fs.ModeNamedPipe
	}
	return mode
}
