// Package fs abstracts the file system operations used by the storage layer so
// tests can inject faults.
//
// Production code uses fs.Default (LocalFS). Tests wrap it with FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("sales.dat.tmp", fs.Fault{FailAfterBytes: 0})
package fs

import (
	"io"
	"io/fs"
	"os"
)

// ErrNotExist is re-exported so callers do not need to import io/fs as well.
var ErrNotExist = fs.ErrNotExist

// File represents an open file.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
}

// LocalFS implements FileSystem using the os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Default is the local file system.
var Default FileSystem = LocalFS{}
