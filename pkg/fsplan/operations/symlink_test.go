package operations

import (
	"errors"
	"testing"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

func TestSymlinkValidate(t *testing.T) {
	t.Run("dangling target is fine", func(t *testing.T) {
		fsys := newFS(t, nil)
		op := NewSymlink("not/yet/created", "link", SymlinkOptions{})
		if err := op.Validate(fsys); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("occupied link path without overwrite", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"link": "a file"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		err := op.Validate(fsys)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("directory at link path even with overwrite", func(t *testing.T) {
		fsys := newFS(t, nil)
		if err := fsys.MkdirAll("link", 0o755); err != nil {
			t.Fatal(err)
		}
		op := NewSymlink("target.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Validate(fsys); err == nil {
			t.Error("expected error for directory at link path")
		}
	})

	t.Run("missing parent without create_parents", func(t *testing.T) {
		fsys := newFS(t, nil)
		op := NewSymlink("target.txt", "deep/link", SymlinkOptions{})
		if err := op.Validate(fsys); err == nil {
			t.Error("expected error for missing parent")
		}
	})
}

func TestSymlinkExecute(t *testing.T) {
	t.Run("creates the link verbatim", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"target.txt": "referent"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		target, err := fsys.Readlink("link")
		if err != nil || target != "target.txt" {
			t.Errorf("link target = %q, %v", target, err)
		}
		if !op.Performed() {
			t.Error("Performed should be true")
		}
	})

	t.Run("overwrite replaces a file", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"link": "old content", "target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !filesystem.IsSymlink(fsys, "link") {
			t.Error("link path should now be a symlink")
		}
	})

	t.Run("overwrite replaces a link", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"old.txt": "a", "new.txt": "b"})
		if err := fsys.Symlink("old.txt", "link"); err != nil {
			t.Fatal(err)
		}
		op := NewSymlink("new.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		target, err := fsys.Readlink("link")
		if err != nil || target != "new.txt" {
			t.Errorf("link target = %q, %v", target, err)
		}
	})

	t.Run("creates parents when requested", func(t *testing.T) {
		fsys := newFS(t, nil)
		op := NewSymlink("target.txt", "a/b/link", SymlinkOptions{CreateParents: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !filesystem.IsSymlink(fsys, "a/b/link") {
			t.Error("link not created under new parents")
		}
	})
}

func TestSymlinkUndo(t *testing.T) {
	t.Run("removes the created link", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		if filesystem.Exists(fsys, "link") {
			t.Error("link still present after undo")
		}
		if !filesystem.Exists(fsys, "target.txt") {
			t.Error("undo must not touch the referent")
		}
	})

	t.Run("restores an overwritten file", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"link": "old content", "target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		data, err := fsys.ReadFile("link")
		if err != nil || string(data) != "old content" {
			t.Errorf("restored content = %q, %v", data, err)
		}
		if filesystem.IsSymlink(fsys, "link") {
			t.Error("restored path should be a regular file")
		}
	})

	t.Run("restores an overwritten link", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"old.txt": "a", "new.txt": "b"})
		if err := fsys.Symlink("old.txt", "link"); err != nil {
			t.Fatal(err)
		}
		op := NewSymlink("new.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		target, err := fsys.Readlink("link")
		if err != nil || target != "old.txt" {
			t.Errorf("restored link target = %q, %v", target, err)
		}
	})

	t.Run("link already gone is a no-op when nothing was replaced", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := fsys.Remove("link"); err != nil {
			t.Fatal(err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Errorf("Undo of an already-removed link should succeed, got %v", err)
		}
	})

	t.Run("link already gone still restores what was replaced", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"link": "old content", "target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{Overwrite: true})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := fsys.Remove("link"); err != nil {
			t.Fatal(err)
		}
		if err := op.Undo(fsys); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		data, err := fsys.ReadFile("link")
		if err != nil || string(data) != "old content" {
			t.Errorf("restored content = %q, %v", data, err)
		}
	})

	t.Run("refuses a non-link occupant", func(t *testing.T) {
		fsys := newFS(t, map[string]string{"target.txt": "x"})
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		if err := op.Execute(fsys); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if err := fsys.Remove("link"); err != nil {
			t.Fatal(err)
		}
		if err := fsys.WriteFile("link", []byte("newcomer"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := op.Undo(fsys)
		var uerr *UndoError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UndoError, got %v", err)
		}
	})

	t.Run("never executed is a no-op", func(t *testing.T) {
		fsys := newFS(t, nil)
		op := NewSymlink("target.txt", "link", SymlinkOptions{})
		if err := op.Undo(fsys); err != nil {
			t.Errorf("Undo before Execute should be a no-op, got %v", err)
		}
	})
}
