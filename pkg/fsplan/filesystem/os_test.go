package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	t.Run("paths are rooted", func(t *testing.T) {
		root := t.TempDir()
		osfs := NewOSFileSystem(root)

		if err := osfs.WriteFile("file.txt", []byte("content"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "file.txt")); err != nil {
			t.Errorf("file not created under root: %v", err)
		}
		data, err := osfs.ReadFile("file.txt")
		if err != nil || string(data) != "content" {
			t.Errorf("ReadFile = %q, %v", data, err)
		}
	})

	t.Run("rejects paths outside the root", func(t *testing.T) {
		osfs := NewOSFileSystem(t.TempDir())
		if _, err := osfs.Stat("../outside"); err == nil {
			t.Error("expected error for path escaping the root")
		}
		if err := osfs.WriteFile("/abs/path", []byte("x"), 0o644); err == nil {
			t.Error("expected error for absolute path")
		}
	})

	t.Run("mkdir and readdir", func(t *testing.T) {
		osfs := NewOSFileSystem(t.TempDir())
		if err := osfs.MkdirAll("a/b", 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := osfs.WriteFile("a/b/one.txt", []byte("1"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		entries, err := osfs.ReadDir("a/b")
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "one.txt" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})

	t.Run("symlink target stays verbatim", func(t *testing.T) {
		osfs := NewOSFileSystem(t.TempDir())
		if err := osfs.MkdirAll("sub", 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := osfs.WriteFile("target.txt", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := osfs.Symlink("../target.txt", "sub/link"); err != nil {
			t.Fatalf("Symlink failed: %v", err)
		}
		target, err := osfs.Readlink("sub/link")
		if err != nil {
			t.Fatalf("Readlink failed: %v", err)
		}
		if target != "../target.txt" {
			t.Errorf("target = %q, want %q", target, "../target.txt")
		}

		info, err := osfs.Lstat("sub/link")
		if err != nil {
			t.Fatalf("Lstat failed: %v", err)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			t.Errorf("Lstat mode = %v, want symlink", info.Mode())
		}
		if data, err := osfs.ReadFile("sub/link"); err != nil || string(data) != "x" {
			t.Errorf("read through relative link = %q, %v", data, err)
		}
	})

	t.Run("rename and remove", func(t *testing.T) {
		osfs := NewOSFileSystem(t.TempDir())
		if err := osfs.WriteFile("old.txt", []byte("data"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := osfs.Rename("old.txt", "new.txt"); err != nil {
			t.Fatalf("Rename failed: %v", err)
		}
		if Exists(osfs, "old.txt") || !Exists(osfs, "new.txt") {
			t.Error("rename did not move the file")
		}
		if err := osfs.Remove("new.txt"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if Exists(osfs, "new.txt") {
			t.Error("file still present after Remove")
		}
	})

	t.Run("remove refuses non-empty directory", func(t *testing.T) {
		osfs := NewOSFileSystem(t.TempDir())
		if err := osfs.MkdirAll("dir", 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := osfs.WriteFile("dir/file.txt", []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := osfs.Remove("dir"); err == nil {
			t.Error("expected error removing non-empty directory")
		}
	})
}
