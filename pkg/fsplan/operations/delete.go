package operations

import (
	"io/fs"

	"github.com/fsplan/fsplan/pkg/fsplan/checksum"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// DeleteOptions control a Delete operation.
type DeleteOptions struct {
	// Recursive accepts non-empty directories at validation time. Recursive
	// content deletion itself is not implemented: execution uses a bare
	// Remove and still fails on a non-empty directory. The flag is honored
	// at validation only, a known gap carried over deliberately.
	Recursive bool
}

// itemKind is the item type probed at validation time. Execute relies on
// the stored kind rather than re-probing.
type itemKind int

const (
	kindUnknown itemKind = iota
	kindFile
	kindDir
	kindSymlink
)

func (k itemKind) String() string {
	switch k {
	case kindFile:
		return "file"
	case kindDir:
		return "directory"
	case kindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Delete removes a file, empty directory, or symlink at Target. Deleting a
// path that does not exist is a successful no-op; deleting a symlink removes
// only the link, never its referent.
type Delete struct {
	base
	opts DeleteOptions

	kind             itemKind
	originalContent  []byte          // file content captured for restoration
	originalChecksum checksum.Digest // unset when the file was unreadable
	originalMode     fs.FileMode
	linkTarget       string // symlink target captured for restoration
	linkTargetKnown  bool
	deleted          bool // this instance actually removed something
}

// NewDelete creates a delete operation.
func NewDelete(target string, opts DeleteOptions) *Delete {
	return &Delete{
		base: base{desc: Desc{Type: TypeDelete, Target: target}},
		opts: opts,
	}
}

// Validate probes and stores the item's type and captures the state needed
// for a later Undo: file content and checksum, or the symlink's target
// string. An unreadable file leaves the checksum unset, which blocks Undo
// later; an unreadable link target does the same. A missing path validates
// fine, since deleting it is a no-op.
func (op *Delete) Validate(fsys filesystem.FileSystem) error {
	info, err := fsys.Lstat(op.desc.Target)
	if err != nil {
		return nil
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		op.kind = kindSymlink
		if target, err := fsys.Readlink(op.desc.Target); err == nil {
			op.linkTarget = target
			op.linkTargetKnown = true
		}
	case info.IsDir():
		op.kind = kindDir
		op.originalMode = info.Mode().Perm()
		entries, err := fsys.ReadDir(op.desc.Target)
		if err == nil && len(entries) > 0 && !op.opts.Recursive {
			return &ValidationError{Op: op.desc, Reason: "directory is not empty (recursive not set)"}
		}
	default:
		op.kind = kindFile
		op.originalMode = info.Mode().Perm()
		content, err := fsys.ReadFile(op.desc.Target)
		if err != nil {
			// Unreadable: keep empty content and no checksum. Undo will
			// refuse for lack of a comparison basis.
			op.originalContent = []byte{}
		} else {
			op.originalContent = content
			op.originalChecksum = checksum.Sum(content)
		}
	}
	return nil
}

// Execute removes the item. A missing path is a successful no-op with
// nothing recorded as deleted.
func (op *Delete) Execute(fsys filesystem.FileSystem) error {
	info, err := fsys.Lstat(op.desc.Target)
	if err != nil {
		// Nothing to delete: tolerant success, nothing actually performed.
		return nil
	}
	if op.kind == kindUnknown {
		// Validate was never run; derive the kind, but restoration state
		// stays unrecorded so Undo will refuse.
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			op.kind = kindSymlink
		case info.IsDir():
			op.kind = kindDir
		default:
			op.kind = kindFile
		}
	}
	if err := fsys.Remove(op.desc.Target); err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to delete " + op.kind.String(), Cause: err}
	}
	op.deleted = true
	op.performed = true
	return nil
}

// Undo restores the deleted item. It is a no-op when this instance never
// actually deleted anything, and refuses to clobber whatever now occupies
// the original path. Files are restored from the captured content; a drift
// between the restored bytes and the recorded checksum is only warned
// about, since the write itself succeeded. Directories come back empty.
// Symlinks are recreated from the recorded target string.
func (op *Delete) Undo(fsys filesystem.FileSystem) error {
	if !op.deleted {
		return nil
	}
	if filesystem.Exists(fsys, op.desc.Target) {
		return &UndoError{Op: op.desc, Reason: "path is now occupied; refusing to overwrite"}
	}
	switch op.kind {
	case kindFile:
		if op.originalChecksum == "" {
			return &UndoError{Op: op.desc, Reason: "no checksum recorded for the deleted file"}
		}
		mode := op.originalMode
		if mode == 0 {
			mode = 0o644
		}
		if err := fsys.WriteFile(op.desc.Target, op.originalContent, mode); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to restore file", Cause: err}
		}
		if restored, err := checksum.Calculate(fsys, op.desc.Target); err != nil || restored != op.originalChecksum {
			op.warnf("restored content of %s does not match the recorded checksum", op.desc.Target)
		}
		return nil
	case kindDir:
		mode := op.originalMode
		if mode == 0 {
			mode = 0o755
		}
		if err := fsys.Mkdir(op.desc.Target, mode); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to recreate directory", Cause: err}
		}
		return nil
	case kindSymlink:
		if !op.linkTargetKnown {
			return &UndoError{Op: op.desc, Reason: "symlink target was never recorded"}
		}
		if err := fsys.Symlink(op.linkTarget, op.desc.Target); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to recreate symlink", Cause: err}
		}
		return nil
	default:
		return &UndoError{Op: op.desc, Reason: "item type was never determined"}
	}
}
