package ustar

import (
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/stealthrocket/fslink"
)

const (
	maxFollowSymlink = 40
)

// OpenFS returns a file system exposing the content of the archive of size
// bytes read from data. It is a shorthand for New followed by FS.
func OpenFS(data io.ReaderAt, size int64) (fs.FS, error) {
	a, err := New(data, size)
	if err != nil {
		return nil, err
	}
	return a.FS()
}

// FS indexes the entries of the archive in a single pass and returns a file
// system serving them.
//
// Unlike the queries of Archive, the file system follows the conventions of
// io/fs: names are cleaned, parent directories that have no entry of their
// own are created implicitly, and symbolic links are resolved relative to the
// directory holding them. Entries that are neither files, directories nor
// links can be listed but fail to open with fs.ErrPermission.
func (a *Archive) FS() (fs.FS, error) {
	modTime := time.Now()
	links := []*link{}
	files := map[string]fileEntry{
		".": &dir{name: ".", mode: 0755, modTime: modTime}, // root
	}

	err := a.walk(func(offset int64, b *block) error {
		header, err := decodeBlock(b)
		if err != nil {
			return &HeaderError{Offset: offset, Name: parseString(b.name()), Err: err}
		}
		name, ok := cleanName(header.Name)
		if !ok {
			return nil // don't allow overriding the root
		}
		header.Name = name

		var entry fileEntry

		switch header.Typeflag {
		case TypeReg, TypeRegA:
			entry = &file{header: header, offset: offset + headerSize}

		case TypeDir:
			d, _ := files[name].(*dir)
			if d == nil {
				d = &dir{name: name}
			}
			d.mode = fs.FileMode(header.Mode).Perm()
			d.modTime = header.ModTime
			entry = d

		case TypeLink:
			ln := &link{header: header}
			entry = ln
			links = append(links, ln)

		case TypeSymlink:
			entry = symlink{header}

		default:
			entry = deny{header}
		}

		if err := makePath(files, name, modTime); err != nil {
			return &fs.PathError{Op: "open", Path: name, Err: err}
		}
		files[name] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ln := range links {
		if target, ok := cleanName(ln.header.Linkname); ok {
			ln.target, _ = files[target].(*file)
		}
	}

	return &fileSystem{data: a.data, files: files}, nil
}

// cleanName ensures that no path will reference parent directories above the
// root. It returns false for names of the root itself.
func cleanName(name string) (string, bool) {
	name = path.Join("/", name)
	if name == "/" {
		return "", false
	}
	return name[1:], true // strip leading "/"
}

type fileSystem struct {
	data  io.ReaderAt
	files map[string]fileEntry
}

type fileEntry interface {
	open(*fileSystem) (fs.File, error)
	stat() fs.FileInfo
}

func (f *fileSystem) Open(name string) (fs.File, error) {
	entry, err := f.follow(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return entry.open(f)
}

func (f *fileSystem) Stat(name string) (fs.FileInfo, error) {
	entry, err := f.follow(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return entry.stat(), nil
}

func (f *fileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := f.readDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return entries, nil
}

func (f *fileSystem) ReadLink(name string) (string, error) {
	link, err := f.readLink(name)
	if err != nil {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: err}
	}
	return link, nil
}

func (f *fileSystem) lookup(name string) (fileEntry, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	entry, ok := f.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return entry, nil
}

func (f *fileSystem) follow(name string) (fileEntry, error) {
	for i := 0; i < maxFollowSymlink; i++ {
		entry, err := f.lookup(name)
		if err != nil {
			return nil, err
		}
		s, ok := entry.(symlink)
		if !ok {
			return entry, nil
		}
		name = s.target()
	}
	return nil, ErrSymlinkCycle
}

func (f *fileSystem) readDir(name string) ([]fs.DirEntry, error) {
	entry, err := f.follow(name)
	if err != nil {
		return nil, err
	}
	d, ok := entry.(*dir)
	if !ok {
		return nil, fs.ErrPermission
	}
	return d.readDir(f)
}

func (f *fileSystem) readLink(name string) (string, error) {
	entry, err := f.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := entry.(symlink)
	if !ok {
		return "", fs.ErrInvalid
	}
	return s.header.Linkname, nil
}

func makePath(files map[string]fileEntry, name string, modTime time.Time) error {
	var d *dir

	dirname := path.Dir(name)
	switch f := files[dirname].(type) {
	case nil:
		if err := makePath(files, dirname, modTime); err != nil {
			return err
		}
		d = &dir{name: dirname, mode: 0755, modTime: modTime}
		files[dirname] = d
	case *dir:
		d = f
	default:
		return fs.ErrPermission
	}

	if d.entries == nil {
		d.entries = make(map[string]struct{})
	}
	d.entries[name] = struct{}{}
	return nil
}

var (
	_ fs.ReadDirFS      = (*fileSystem)(nil)
	_ fs.StatFS         = (*fileSystem)(nil)
	_ fslink.ReadLinkFS = (*fileSystem)(nil)
)
