package utils

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
)

// TempSuffix is appended to a file name while its replacement is being written.
const TempSuffix = ".tmp"

// Indicates if the given path exists or not (works for both files and directories)
func PathExists(fsys fs.FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// ReplaceFile writes a complete new version of path under a temporary name and
// renames it over the original. The original is left untouched unless every
// write, the flush and the fsync of the temporary file succeeded.
func ReplaceFile(fsys fs.FileSystem, path string, write func(w io.Writer) error) (err error) {
	tmpPath := path + TempSuffix

	f, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	closed := false
	defer func() {
		if err != nil {
			if !closed {
				f.Close()
			}
			fsys.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(f)
	if err = write(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	closed = true
	if err = f.Close(); err != nil {
		return err
	}

	if err = fsys.Rename(tmpPath, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	syncDir(fsys, filepath.Dir(path))

	return nil
}

func syncDir(fsys fs.FileSystem, dir string) {
	d, err := fsys.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// IsNotExist reports whether err says a file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
