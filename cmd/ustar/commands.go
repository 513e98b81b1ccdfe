package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/stealthrocket/ustar"
	"github.com/stealthrocket/ustar/internal/source"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

type config struct {
	mmap      bool
	cacheSize int
	logLevel  string
}

// withArchive opens the archive at name for the duration of fn.
func withArchive(cfg *config, name string, fn func(*ustar.Archive) error) error {
	src, err := source.Open(name, cfg.mmap)
	if err != nil {
		return err
	}
	defer src.Close()

	var options []ustar.Option
	if cfg.cacheSize > 0 {
		options = append(options, ustar.WithLookupCache(cfg.cacheSize))
	}
	archive, err := ustar.New(src, src.Size(), options...)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"archive": name,
		"size":    src.Size(),
		"mmap":    cfg.mmap,
	}).Debug("opened archive")
	return fn(archive)
}

func checkCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate archives and print the number of entries they hold",
		ArgsUsage: "<archive>...",
		Action: func(c *cli.Context) error {
			names := c.Args().Slice()
			if len(names) == 0 {
				return errors.New("missing archive")
			}

			counts := make([]int, len(names))
			failed := make([]error, len(names))

			g := new(errgroup.Group)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, name := range names {
				i, name := i, name
				g.Go(func() error {
					// An invalid archive is reported and does not stop the
					// others from being checked; only I/O failures do.
					return withArchive(cfg, name, func(a *ustar.Archive) error {
						counts[i], failed[i] = a.Validate()
						return nil
					})
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			invalid := 0
			for i, name := range names {
				if failed[i] != nil {
					invalid++
					logrus.WithField("archive", name).WithError(failed[i]).Error("invalid archive")
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s: %d entries\n", name, counts[i])
			}
			if invalid > 0 {
				return cli.Exit(fmt.Sprintf("%d invalid archive(s)", invalid), 1)
			}
			return nil
		},
	}
}

func listCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the entries immediately below a directory",
		ArgsUsage: "<archive> <directory>",
		Action: func(c *cli.Context) error {
			name, path, err := archiveAndPath(c)
			if err != nil {
				return err
			}
			return withArchive(cfg, name, func(a *ustar.Archive) error {
				children, err := a.List(path)
				if err != nil {
					return err
				}
				for _, child := range children {
					fmt.Fprintln(c.App.Writer, child)
				}
				return nil
			})
		},
	}
}

func catCommand(cfg *config) *cli.Command {
	var offset int64

	return &cli.Command{
		Name:      "cat",
		Usage:     "Write the content of a file to standard output",
		ArgsUsage: "<archive> <file>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "offset",
				Usage:       "Offset in the file to start reading from",
				Destination: &offset,
			},
		},
		Action: func(c *cli.Context) error {
			name, path, err := archiveAndPath(c)
			if err != nil {
				return err
			}
			return withArchive(cfg, name, func(a *ustar.Archive) error {
				return copyFile(c.App.Writer, a, path, offset)
			})
		},
	}
}

// copyFile writes the content of the file at path to w, starting at offset,
// reading it in chunks of a fixed size.
func copyFile(w io.Writer, a *ustar.Archive, path string, offset int64) error {
	buffer := make([]byte, 32*1024)
	for {
		n, remaining, err := a.ReadFile(path, offset, buffer)
		if err != nil {
			return err
		}
		if _, err := w.Write(buffer[:n]); err != nil {
			return err
		}
		if remaining == 0 {
			return nil
		}
		offset += int64(n)
	}
}

func statCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "Print the type of an entry, without following symbolic links",
		ArgsUsage: "<archive> <entry>",
		Action: func(c *cli.Context) error {
			name, path, err := archiveAndPath(c)
			if err != nil {
				return err
			}
			return withArchive(cfg, name, func(a *ustar.Archive) error {
				e, err := a.Locate(path)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, describe(e))
				return nil
			})
		},
	}
}

func describe(e *ustar.Entry) string {
	switch {
	case e.IsDir():
		return fmt.Sprintf("%s: directory", e.Name)
	case e.IsRegular():
		return fmt.Sprintf("%s: regular file, %d bytes", e.Name, e.Size)
	case e.IsSymlink():
		return fmt.Sprintf("%s: symbolic link to %s", e.Name, e.Linkname)
	default:
		return fmt.Sprintf("%s: type %q", e.Name, e.Typeflag)
	}
}

func existsCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Exit with a non-zero status if the archive has no entry with the given name",
		ArgsUsage: "<archive> <entry>",
		Action: func(c *cli.Context) error {
			name, path, err := archiveAndPath(c)
			if err != nil {
				return err
			}
			return withArchive(cfg, name, func(a *ustar.Archive) error {
				ok, err := a.Exists(path)
				if err != nil {
					return err
				}
				if !ok {
					return cli.Exit("", 1)
				}
				return nil
			})
		},
	}
}

func archiveAndPath(c *cli.Context) (string, string, error) {
	if c.NArg() != 2 {
		return "", "", fmt.Errorf("expected 2 arguments, got %d", c.NArg())
	}
	return c.Args().Get(0), c.Args().Get(1), nil
}
