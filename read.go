package ustar

import (
	"io"
	"io/fs"
)

// ReadFile copies the content of the regular file named name, starting at
// offset, into dest. Symbolic links are followed.
//
// It returns the number of bytes written to dest and the number of bytes of
// the file that remain past them; zero means the end of the file was reached,
// a positive value that the read may be continued at offset+n.
//
// ErrWrongType is returned when name resolves to an entry that is not a
// regular file, ErrOffsetOutOfRange when offset lies past the end of the file.
func (a *Archive) ReadFile(name string, offset int64, dest []byte) (n int, remaining int64, err error) {
	n, remaining, err = a.readFile(name, offset, dest)
	if err != nil {
		err = &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return n, remaining, err
}

func (a *Archive) readFile(name string, offset int64, dest []byte) (int, int64, error) {
	f, err := a.resolveFile(name)
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 || offset > f.Size {
		return 0, 0, ErrOffsetOutOfRange
	}

	avail := f.Size - offset
	if int64(len(dest)) > avail {
		dest = dest[:avail]
	}
	n, err := a.data.ReadAt(dest, f.DataOffset()+offset)
	if n < len(dest) {
		if err == nil || err == io.EOF {
			err = ErrTruncated
		}
		return n, avail - int64(n), err
	}
	return n, avail - int64(n), nil
}

// Open returns a reader of the content of the regular file named name.
// Symbolic links are followed.
func (a *Archive) Open(name string) (*io.SectionReader, error) {
	f, err := a.resolveFile(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if f.Size > a.size-f.DataOffset() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrTruncated}
	}
	return io.NewSectionReader(a.data, f.DataOffset(), f.Size), nil
}

func (a *Archive) resolveFile(name string) (*Entry, error) {
	f, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	if !f.IsRegular() {
		return nil, ErrWrongType
	}
	return f, nil
}
