package ustartest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"testing"
)

// Writer writes ustar archives entry by entry, failing the test on error.
type Writer struct {
	t      testing.TB
	buffer bytes.Buffer
	writer *tar.Writer
}

func NewWriter(t testing.TB) *Writer {
	w := &Writer{t: t}
	w.writer = tar.NewWriter(&w.buffer)
	return w
}

func (w *Writer) Dir(name string) *Writer {
	w.t.Helper()
	w.header(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name,
		Mode:     0755,
	})
	return w
}

func (w *Writer) File(name, content string) *Writer {
	w.t.Helper()
	w.header(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0644,
		Size:     int64(len(content)),
	})
	if _, err := io.WriteString(w.writer, content); err != nil {
		w.t.Fatal(err)
	}
	return w
}

func (w *Writer) Symlink(name, link string) *Writer {
	w.t.Helper()
	w.header(&tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     name,
		Linkname: link,
		Mode:     0777,
	})
	return w
}

func (w *Writer) Link(name, link string) *Writer {
	w.t.Helper()
	w.header(&tar.Header{
		Typeflag: tar.TypeLink,
		Name:     name,
		Linkname: link,
		Mode:     0644,
	})
	return w
}

func (w *Writer) Block(name string) *Writer {
	w.t.Helper()
	w.header(&tar.Header{
		Typeflag: tar.TypeBlock,
		Name:     name,
		Mode:     0644,
	})
	return w
}

func (w *Writer) header(h *tar.Header) {
	w.t.Helper()
	h.Format = tar.FormatUSTAR
	if err := w.writer.WriteHeader(h); err != nil {
		w.t.Fatal(err)
	}
}

// Bytes terminates the archive and returns its content.
func (w *Writer) Bytes() []byte {
	w.t.Helper()
	if err := w.writer.Close(); err != nil {
		w.t.Fatal(err)
	}
	return w.buffer.Bytes()
}

// Patch overwrites the bytes of the header record starting at offset with b,
// from position pos of the record, and updates its checksum.
func Patch(archive []byte, offset int64, pos int, b []byte) {
	record := archive[offset : offset+512]
	copy(record[pos:], b)
	Rechecksum(record)
}

// Rechecksum recomputes the checksum field of the header record held in b.
func Rechecksum(b []byte) {
	var sum int64
	for i, c := range b[:512] {
		if 148 <= i && i < 156 {
			c = ' '
		}
		sum += int64(c)
	}
	copy(b[148:156], fmt.Sprintf("%06o\x00 ", sum))
}
