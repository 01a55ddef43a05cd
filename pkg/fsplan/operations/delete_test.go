package operations

import (
	"errors"
	"testing"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

func TestDeleteMissingPath(t *testing.T) {
	fsys := newFS(t, nil)
	op := NewDelete("missing.txt", DeleteOptions{})
	if err := op.Validate(fsys); err != nil {
		t.Fatalf("Validate of a missing path should succeed, got %v", err)
	}
	if err := op.Execute(fsys); err != nil {
		t.Fatalf("Execute of a missing path should be a no-op, got %v", err)
	}
	if op.Performed() {
		t.Error("a tolerant no-op must not count as performed")
	}
	if err := op.Undo(fsys); err != nil {
		t.Errorf("Undo after a no-op delete should succeed, got %v", err)
	}
	if filesystem.Exists(fsys, "missing.txt") {
		t.Error("undo after a no-op delete must not create anything")
	}
}

func TestDeleteFile(t *testing.T) {
	t.Run("removes and restores", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"file.txt": "precious"})
		op := NewDelete("file.txt", DeleteOptions{})
		if err := op.Validate(fsys); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if filesystem.Exists(fsys, "file.txt") {
			t.Fatal("file still present after delete")
		}
		if !op.Performed() {
			t.Error("Performed should be true")
		}

		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		data, err := fsys.ReadFile("file.txt")
		if err != nil || string(data) != "precious" {
			t.Errorf("restored content = %q, %v", data, err)
		}
		if len(op.Warnings()) != 0 {
			t.Errorf("unexpected warnings: %v", op.Warnings())
		}
	})

	t.Run("undo refuses an occupied path", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"file.txt": "original"})
		op := NewDelete("file.txt", DeleteOptions{})
		if err := op.Validate(fsys); err != nil {
			t.Fatal(err)
		}
		if err := op.Execute(fsys); err != nil {
			t.Fatal(err)
		}
		if err := fsys.WriteFile("file.txt", []byte("newcomer"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := op.Undo(fsys)
		var uerr *UndoError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UndoError, got %v", err)
		}
		data, _ := fsys.ReadFile("file.txt")
		if string(data) != "newcomer" {
			t.Error("occupant must survive the refused undo")
		}
	})

	t.Run("undo refuses without validation state", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"file.txt": "unrecorded"})
		op := NewDelete("file.txt", DeleteOptions{})
		// Execute without Validate: nothing was captured for restoration.
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := op.Undo(fsys); err == nil {
			t.Error("expected error undoing without recorded content")
		}
	})
}

func TestDeleteDirectory(t *testing.T) {
	t.Run("empty directory removed and restored empty", func(t *testing.T) {
		fsys := newFS(t, nil)
		if err := fsys.Mkdir("dir", 0o755); err != nil {
			t.Fatal(err)
		}
		op := NewDelete("dir", DeleteOptions{})
		if err := op.Validate(fsys); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		if !filesystem.IsDir(fsys, "dir") {
			t.Error("directory not restored")
		}
		entries, err := fsys.ReadDir("dir")
		if err != nil || len(entries) != 0 {
			t.Errorf("restored directory should be empty: %v, %v", entries, err)
		}
	})

	t.Run("non-empty directory fails validation without recursive", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"dir/file.txt": "x"})
		op := NewDelete("dir", DeleteOptions{})
		err := op.Validate(fsys)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("recursive passes validation but execution still fails", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"dir/file.txt": "x"})
		op := NewDelete("dir", DeleteOptions{Recursive: true})
		if err := op.Validate(fsys); err != nil {
			t.Fatalf("Validate with recursive should succeed, got %v", err)
		}
		err := op.Execute(fsys)
		var eerr *ExecutionError
		if !errors.As(err, &eerr) {
			t.Fatalf("expected ExecutionError removing a non-empty directory, got %v", err)
		}
		if !filesystem.Exists(fsys, "dir/file.txt") {
			t.Error("content must survive the failed delete")
		}
	})
}

func TestDeleteSymlink(t *testing.T) {
	fsys := newFS(t, map[string]string{"target.txt": "referent"})
	if err := fsys.Symlink("target.txt", "link"); err != nil {
		t.Fatal(err)
	}

	op := NewDelete("link", DeleteOptions{})
	if err := op.Validate(fsys); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if err := op.Execute(fsys); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if filesystem.Exists(fsys, "link") {
		t.Error("link still present after delete")
	}
	if !filesystem.Exists(fsys, "target.txt") {
		t.Error("deleting a link must never touch its referent")
	}

	if err := op.Undo(fsys); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	target, err := fsys.Readlink("link")
	if err != nil || target != "target.txt" {
		t.Errorf("restored link target = %q, %v", target, err)
	}
}
