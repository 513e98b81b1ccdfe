// Package ustartest builds ustar archives for tests.
package ustartest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/stealthrocket/fsinfo"
	"github.com/stealthrocket/fslink"
)

// Archive writes the content of fsys to tarball using the ustar format.
//
// Directory names are written with a trailing slash. Files sharing an inode
// with a file written earlier are written as hard links to it. If the file
// system contains symbolic links, it must implement fslink.ReadLinkFS.
func Archive(tarball *tar.Writer, fsys fs.FS) error {
	links := make(map[uint64]string)
	buffer := make([]byte, 32*1024)

	return fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		mode := info.Mode()

		h := tar.Header{
			Name:    path,
			Mode:    int64(mode.Perm()),
			ModTime: info.ModTime().Truncate(time.Second),
			Format:  tar.FormatUSTAR,
		}

		switch mode.Type() {
		case 0: // regular
			h.Typeflag = tar.TypeReg

		case fs.ModeDir:
			h.Typeflag = tar.TypeDir
			h.Name += "/"

		case fs.ModeSymlink:
			s, err := fslink.ReadLink(fsys, path)
			if err != nil {
				return err
			}
			h.Typeflag = tar.TypeSymlink
			h.Linkname = s

		default:
			return nil // ignore unsupported file types
		}

		if h.Typeflag == tar.TypeReg {
			if nlink := fsinfo.Nlink(info); nlink > 1 {
				if ino := fsinfo.Ino(info); ino != 0 {
					if link, ok := links[ino]; ok {
						h.Typeflag = tar.TypeLink
						h.Linkname = link
					} else {
						links[ino] = path
					}
				}
			}
		}

		if h.Typeflag == tar.TypeReg {
			h.Size = info.Size()
		}

		if err := tarball.WriteHeader(&h); err != nil {
			return &fs.PathError{Op: "write", Path: path, Err: err}
		}

		if h.Typeflag == tar.TypeReg {
			file, err := fsys.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			n, err := io.CopyBuffer(tarball, file, buffer)
			if err != nil {
				return err
			}
			if size := info.Size(); size != n {
				err := fmt.Errorf("file size and number of bytes written mismatch: size=%d written=%d", size, n)
				return &fs.PathError{Op: "write", Path: path, Err: err}
			}
		}

		return nil
	})
}

// Build returns the bytes of a ustar archive holding the content of fsys.
func Build(fsys fs.FS) ([]byte, error) {
	buffer := new(bytes.Buffer)
	writer := tar.NewWriter(buffer)
	if err := Archive(writer, fsys); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
