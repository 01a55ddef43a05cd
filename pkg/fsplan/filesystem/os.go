package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements FileSystem using the OS filesystem, rooted at a directory.
type OSFileSystem struct {
	root string
}

// NewOSFileSystem creates a new OS-based filesystem rooted at the given path.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

func (osfs *OSFileSystem) join(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(osfs.root, name), nil
}

// Open implements fs.FS.
func (osfs *OSFileSystem) Open(name string) (fs.File, error) {
	fullPath, err := osfs.join("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Stat implements FileSystem, following symlinks.
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	fullPath, err := osfs.join("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(fullPath)
}

// Lstat implements FileSystem without following symlinks.
func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	fullPath, err := osfs.join("lstat", name)
	if err != nil {
		return nil, err
	}
	return os.Lstat(fullPath)
}

// ReadFile implements FileSystem.
func (osfs *OSFileSystem) ReadFile(name string) ([]byte, error) {
	fullPath, err := osfs.join("readfile", name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// ReadDir implements FileSystem.
func (osfs *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	fullPath, err := osfs.join("readdir", name)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(fullPath)
}

// WriteFile implements WriteFS.
func (osfs *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	fullPath, err := osfs.join("writefile", name)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, perm)
}

// Mkdir implements WriteFS.
func (osfs *OSFileSystem) Mkdir(path string, perm fs.FileMode) error {
	fullPath, err := osfs.join("mkdir", path)
	if err != nil {
		return err
	}
	return os.Mkdir(fullPath, perm)
}

// MkdirAll implements WriteFS.
func (osfs *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	fullPath, err := osfs.join("mkdirall", path)
	if err != nil {
		return err
	}
	return os.MkdirAll(fullPath, perm)
}

// Remove implements WriteFS. Removing a symlink removes the link itself,
// never its referent; removing a non-empty directory fails.
func (osfs *OSFileSystem) Remove(name string) error {
	fullPath, err := osfs.join("remove", name)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// Symlink implements WriteFS. The target string is stored verbatim, so
// relative targets stay relative to the link's directory.
func (osfs *OSFileSystem) Symlink(target, linkname string) error {
	fullPath, err := osfs.join("symlink", linkname)
	if err != nil {
		return err
	}
	return os.Symlink(target, fullPath)
}

// Readlink implements WriteFS, returning the stored target string verbatim.
func (osfs *OSFileSystem) Readlink(name string) (string, error) {
	fullPath, err := osfs.join("readlink", name)
	if err != nil {
		return "", err
	}
	return os.Readlink(fullPath)
}

// Rename implements WriteFS.
func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	oldFullPath, err := osfs.join("rename", oldpath)
	if err != nil {
		return err
	}
	newFullPath, err := osfs.join("rename", newpath)
	if err != nil {
		return err
	}
	return os.Rename(oldFullPath, newFullPath)
}

// Chmod implements WriteFS.
func (osfs *OSFileSystem) Chmod(name string, mode fs.FileMode) error {
	fullPath, err := osfs.join("chmod", name)
	if err != nil {
		return err
	}
	return os.Chmod(fullPath, mode)
}
