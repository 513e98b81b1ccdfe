package ustar

import (
	"io/fs"
	"path"
)

type symlink struct{ header *Header }

// open is never reached through the file system, which follows links before
// opening the entry they lead to.
func (ln symlink) open(fileSystem *fileSystem) (fs.File, error) {
	return nil, fs.ErrInvalid
}

func (ln symlink) stat() fs.FileInfo {
	return ln.header.FileInfo()
}

// target returns the name of the entry the link points to. Absolute targets
// are taken relative to the root of the archive.
func (ln symlink) target() string {
	if path.IsAbs(ln.header.Linkname) {
		return path.Clean(ln.header.Linkname[1:])
	}
	return path.Join(path.Dir(ln.header.Name), ln.header.Linkname)
}
