package ustar

import (
	"errors"
	"io/fs"
	"strings"
)

// Entry is a header found in an archive, along with the offset of its record.
type Entry struct {
	Header
	Offset int64
}

// DataOffset returns the offset of the first byte of the entry payload.
func (e *Entry) DataOffset() int64 {
	return e.Offset + headerSize
}

// Locate returns the first entry of the archive named exactly name. Names are
// not normalized: "dir/" and "dir" are different entries.
func (a *Archive) Locate(name string) (*Entry, error) {
	e, err := a.locate(name)
	if err != nil {
		return nil, &fs.PathError{Op: "locate", Path: name, Err: err}
	}
	return e, nil
}

// Resolve is like Locate but follows symbolic links until it reaches an entry
// of another type. Link targets are paths of the archive; a target with no
// trailing slash also matches a directory entry spelled with one.
//
// ErrSymlinkCycle is returned when the chain of links comes back to an entry
// it already went through.
func (a *Archive) Resolve(name string) (*Entry, error) {
	e, err := a.resolve(name)
	if err != nil {
		return nil, &fs.PathError{Op: "resolve", Path: name, Err: err}
	}
	return e, nil
}

// Exists reports whether the archive has an entry named name.
func (a *Archive) Exists(name string) (bool, error) {
	return a.is("exists", name, func(*Header) bool { return true })
}

// IsDir reports whether the entry named name is a directory. Symbolic links
// are not followed.
func (a *Archive) IsDir(name string) (bool, error) {
	return a.is("isdir", name, (*Header).IsDir)
}

// IsFile reports whether the entry named name is a regular file. Symbolic
// links are not followed.
func (a *Archive) IsFile(name string) (bool, error) {
	return a.is("isfile", name, (*Header).IsRegular)
}

// IsSymlink reports whether the entry named name is a symbolic link.
func (a *Archive) IsSymlink(name string) (bool, error) {
	return a.is("issymlink", name, (*Header).IsSymlink)
}

func (a *Archive) is(op, name string, match func(*Header) bool) (bool, error) {
	e, err := a.locate(name)
	switch {
	case err == nil:
		return match(&e.Header), nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, &fs.PathError{Op: op, Path: name, Err: err}
	}
}

func (a *Archive) locate(name string) (*Entry, error) {
	if a.cache != nil {
		if v, ok := a.cache.Get(name); ok {
			e := *v.(*Entry)
			return &e, nil
		}
	}

	var found *Entry
	err := a.walk(func(offset int64, b *block) error {
		if string(cstring(b.name())) != name {
			return nil
		}
		h, err := decodeBlock(b)
		if err != nil {
			return &HeaderError{Offset: offset, Name: name, Err: err}
		}
		found = &Entry{Header: *h, Offset: offset}
		return fs.SkipAll
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}

	if a.cache != nil {
		e := *found
		a.cache.Add(name, &e)
	}
	return found, nil
}

func (a *Archive) resolve(name string) (*Entry, error) {
	e, err := a.locate(name)
	if err != nil {
		return nil, err
	}
	// Links may form a cycle. Entries are remembered by offset since a name
	// may appear more than once in an archive.
	var visited map[int64]struct{}
	for e.IsSymlink() {
		if visited == nil {
			visited = make(map[int64]struct{})
		}
		if _, ok := visited[e.Offset]; ok {
			return nil, ErrSymlinkCycle
		}
		visited[e.Offset] = struct{}{}

		if e, err = a.locateTarget(e.Linkname); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (a *Archive) locateTarget(target string) (*Entry, error) {
	e, err := a.locate(target)
	if errors.Is(err, ErrNotFound) && target != "" && !strings.HasSuffix(target, "/") {
		e, err = a.locate(target + "/")
	}
	return e, err
}
