package ustar

import (
	"bytes"
	"io/fs"
	"strings"
)

// List returns the names of the entries found immediately below the directory
// named name, in the order they appear in the archive. Sub-directories are
// listed but not descended into.
//
// Symbolic links are followed; the returned names are those of the entries
// below the directory the links lead to.
func (a *Archive) List(name string) ([]string, error) {
	children, err := a.list(name)
	if err != nil {
		return nil, &fs.PathError{Op: "list", Path: name, Err: err}
	}
	return children, nil
}

func (a *Archive) list(name string) ([]string, error) {
	dir, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	if !dir.IsDir() {
		return nil, ErrWrongType
	}

	prefix := dir.Name
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	children := []string{}
	err = a.walk(func(offset int64, b *block) error {
		if isChild(prefix, cstring(b.name())) {
			children = append(children, parseString(b.name()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// isChild reports whether name is exactly one path segment below the
// directory prefix, which ends with a slash. The segment may itself end with
// a slash when it names a sub-directory.
func isChild(prefix string, name []byte) bool {
	if len(name) <= len(prefix) || string(name[:len(prefix)]) != prefix {
		return false
	}
	rest := name[len(prefix):]
	i := bytes.IndexByte(rest, '/')
	return i < 0 || i == len(rest)-1 && i > 0
}
