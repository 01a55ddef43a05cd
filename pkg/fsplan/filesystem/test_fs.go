package filesystem

import (
	"io/fs"
	"path"
	"strings"
	"syscall"
	"testing/fstest"
	"time"
)

// TestFileSystem is an in-memory FileSystem built on testing/fstest's MapFS
// with the write side added. Symlink entries store their target string as
// data with fs.ModeSymlink set; Stat follows links, Lstat does not. Unlike
// MapFS alone, Remove refuses non-empty directories and Symlink permits
// dangling targets, matching the OS behavior the operations rely on.
type TestFileSystem struct {
	fstest.MapFS
}

// NewTestFileSystem creates a new empty in-memory filesystem.
func NewTestFileSystem() *TestFileSystem {
	return &TestFileSystem{
		MapFS: make(fstest.MapFS),
	}
}

const maxLinkHops = 8

// resolve follows symlink entries until a non-link path is reached.
func (tfs *TestFileSystem) resolve(name string) (string, error) {
	for i := 0; i < maxLinkHops; i++ {
		file, ok := tfs.MapFS[name]
		if !ok || file.Mode&fs.ModeSymlink == 0 {
			return name, nil
		}
		name = path.Clean(path.Join(path.Dir(name), string(file.Data)))
	}
	return "", &fs.PathError{Op: "stat", Path: name, Err: syscall.ELOOP}
}

// Open implements fs.FS, following symlinks like the OS does.
func (tfs *TestFileSystem) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	resolved, err := tfs.resolve(name)
	if err != nil {
		return nil, err
	}
	return tfs.MapFS.Open(resolved)
}

// ReadFile implements FileSystem.
func (tfs *TestFileSystem) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	resolved, err := tfs.resolve(name)
	if err != nil {
		return nil, err
	}
	file, ok := tfs.MapFS[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	if file.Mode.IsDir() {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: syscall.EISDIR}
	}
	data := make([]byte, len(file.Data))
	copy(data, file.Data)
	return data, nil
}

// ReadDir implements FileSystem.
func (tfs *TestFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	resolved, err := tfs.resolve(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(tfs.MapFS, resolved)
}

// Stat implements FileSystem, following symlinks.
func (tfs *TestFileSystem) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	resolved, err := tfs.resolve(name)
	if err != nil {
		return nil, err
	}
	return tfs.Lstat(resolved)
}

// Lstat implements FileSystem without following symlinks.
func (tfs *TestFileSystem) Lstat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrInvalid}
	}
	if file, ok := tfs.MapFS[name]; ok {
		return &memFileInfo{name: path.Base(name), file: file}, nil
	}
	// MapFS synthesizes parent directories from child entries.
	if name == "." || tfs.hasChildren(name) {
		return &memFileInfo{
			name: path.Base(name),
			file: &fstest.MapFile{Mode: fs.ModeDir | 0755},
		}, nil
	}
	return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrNotExist}
}

// WriteFile implements WriteFS.
func (tfs *TestFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	if existing, ok := tfs.MapFS[name]; ok && existing.Mode.IsDir() {
		return &fs.PathError{Op: "writefile", Path: name, Err: syscall.EISDIR}
	}
	tfs.MapFS[name] = &fstest.MapFile{
		Data:    data,
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

// Mkdir implements WriteFS. The parent must already exist.
func (tfs *TestFileSystem) Mkdir(name string, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrInvalid}
	}
	if Exists(tfs, name) {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if parent := path.Dir(name); parent != "." && !IsDir(tfs, parent) {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrNotExist}
	}
	tfs.MapFS[name] = &fstest.MapFile{Mode: perm | fs.ModeDir}
	return nil
}

// MkdirAll implements WriteFS.
func (tfs *TestFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "mkdirall", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return nil
	}
	if existing, ok := tfs.MapFS[name]; ok && !existing.Mode.IsDir() {
		return &fs.PathError{Op: "mkdirall", Path: name, Err: syscall.ENOTDIR}
	}
	parts := strings.Split(name, "/")
	for i := range parts {
		dir := strings.Join(parts[:i+1], "/")
		if _, ok := tfs.MapFS[dir]; !ok {
			tfs.MapFS[dir] = &fstest.MapFile{Mode: perm | fs.ModeDir}
		}
	}
	return nil
}

// Remove implements WriteFS. Symlinks are removed as links; non-empty
// directories are refused.
func (tfs *TestFileSystem) Remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}
	file, ok := tfs.MapFS[name]
	if !ok {
		if tfs.hasChildren(name) {
			return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
		}
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if file.Mode.IsDir() && tfs.hasChildren(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
	}
	delete(tfs.MapFS, name)
	return nil
}

// Symlink implements WriteFS. Dangling targets are allowed; the target
// string is stored verbatim.
func (tfs *TestFileSystem) Symlink(target, linkname string) error {
	if !fs.ValidPath(linkname) {
		return &fs.PathError{Op: "symlink", Path: linkname, Err: fs.ErrInvalid}
	}
	if Exists(tfs, linkname) {
		return &fs.PathError{Op: "symlink", Path: linkname, Err: fs.ErrExist}
	}
	tfs.MapFS[linkname] = &fstest.MapFile{
		Data: []byte(target),
		Mode: fs.ModeSymlink | 0777,
	}
	return nil
}

// Readlink implements WriteFS, returning the stored target string verbatim.
func (tfs *TestFileSystem) Readlink(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	file, ok := tfs.MapFS[name]
	if !ok {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrNotExist}
	}
	if file.Mode&fs.ModeSymlink == 0 {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
	}
	return string(file.Data), nil
}

// Rename implements WriteFS. Renaming a directory carries its children.
func (tfs *TestFileSystem) Rename(oldpath, newpath string) error {
	if !fs.ValidPath(oldpath) || !fs.ValidPath(newpath) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrInvalid}
	}
	file, ok := tfs.MapFS[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if _, ok := tfs.MapFS[newpath]; ok {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrExist}
	}
	tfs.MapFS[newpath] = file
	delete(tfs.MapFS, oldpath)
	if file.Mode.IsDir() {
		prefix := oldpath + "/"
		for p, child := range tfs.MapFS {
			if strings.HasPrefix(p, prefix) {
				tfs.MapFS[newpath+"/"+p[len(prefix):]] = child
				delete(tfs.MapFS, p)
			}
		}
	}
	return nil
}

// Chmod implements WriteFS, replacing the permission bits only.
func (tfs *TestFileSystem) Chmod(name string, mode fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "chmod", Path: name, Err: fs.ErrInvalid}
	}
	resolved, err := tfs.resolve(name)
	if err != nil {
		return err
	}
	file, ok := tfs.MapFS[resolved]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: name, Err: fs.ErrNotExist}
	}
	file.Mode = file.Mode&^fs.ModePerm | mode&fs.ModePerm
	return nil
}

// hasChildren reports whether any entry lives under name.
func (tfs *TestFileSystem) hasChildren(name string) bool {
	prefix := name + "/"
	for p := range tfs.MapFS {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// memFileInfo adapts a MapFile entry to fs.FileInfo without link resolution.
type memFileInfo struct {
	name string
	file *fstest.MapFile
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return int64(len(i.file.Data)) }
func (i *memFileInfo) Mode() fs.FileMode  { return i.file.Mode }
func (i *memFileInfo) ModTime() time.Time { return i.file.ModTime }
func (i *memFileInfo) IsDir() bool        { return i.file.Mode.IsDir() }
func (i *memFileInfo) Sys() interface{}   { return nil }
