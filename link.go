package ustar

import "io/fs"

// link is a hard link, it shares the content of the file it names.
type link struct {
	target *file
	header *Header
}

func (ln *link) open(fileSystem *fileSystem) (fs.File, error) {
	if ln.target == nil {
		return nil, fs.ErrNotExist
	}
	return ln.target.openFile(fileSystem, ln.header), nil
}

func (ln *link) stat() fs.FileInfo {
	return ln.header.FileInfo()
}
