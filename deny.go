package ustar

import "io/fs"

// deny is an entry of a type that cannot be opened: devices and named pipes.
type deny struct{ header *Header }

func (d deny) open(fileSystem *fileSystem) (fs.File, error) {
	return nil, fs.ErrPermission
}

func (d deny) stat() fs.FileInfo {
	return d.header.FileInfo()
}
