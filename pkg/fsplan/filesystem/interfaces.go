package filesystem

import (
	"io/fs"
)

// ReadFS is an alias for fs.FS, representing a read-only file system.
type ReadFS = fs.FS

// WriteFS defines the interface for write operations on a file system.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Mkdir(path string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	Symlink(target, linkname string) error
	Readlink(name string) (string, error)
	Rename(oldpath, newpath string) error
	Chmod(name string, mode fs.FileMode) error
}

// FileSystem combines the read and write surfaces the operations need.
//
// Stat follows symlinks; Lstat does not. Symlink stores the target string
// verbatim, so relative targets survive a round-trip through Readlink.
type FileSystem interface {
	ReadFS
	WriteFS
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// Exists reports whether anything (file, directory, or symlink) occupies name.
func Exists(fsys FileSystem, name string) bool {
	_, err := fsys.Lstat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory (following symlinks).
func IsDir(fsys FileSystem, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// IsSymlink reports whether name exists and is a symbolic link.
func IsSymlink(fsys FileSystem, name string) bool {
	info, err := fsys.Lstat(name)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}
