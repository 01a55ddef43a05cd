package operations

import (
	"io/fs"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// SymlinkOptions control a Symlink operation. Both flags default to false.
type SymlinkOptions struct {
	// Overwrite allows replacing an existing file or symlink at the link
	// path. The replaced item is recorded and restored by Undo. Existing
	// directories are never overwritten.
	Overwrite bool
	// CreateParents creates missing parent directories of the link path.
	CreateParents bool
}

// Symlink creates a symbolic link at Target pointing to the LinkTarget
// string, which is stored verbatim (relative targets stay relative).
type Symlink struct {
	base
	opts SymlinkOptions

	created bool // the link was actually created by this instance

	replacedKind       itemKind // what Overwrite replaced, if anything
	replacedContent    []byte
	replacedMode       fs.FileMode
	replacedLinkTarget string
}

// NewSymlink creates a symlink operation; argument order follows
// os.Symlink: the target string first, then the link path.
func NewSymlink(linkTarget, linkPath string, opts SymlinkOptions) *Symlink {
	return &Symlink{
		base: base{desc: Desc{Type: TypeSymlink, Source: linkTarget, Target: linkPath}},
		opts: opts,
	}
}

// LinkTarget returns the target string the link will point to.
func (op *Symlink) LinkTarget() string { return op.desc.Source }

// Validate fails when the link path is occupied and overwrite is not set,
// when it is occupied by a directory (never overwritten), or when its
// parent is missing. Dangling targets are fine: the target may not exist
// yet or may be created by a later operation.
func (op *Symlink) Validate(fsys filesystem.FileSystem) error {
	if info, err := fsys.Lstat(op.desc.Target); err == nil {
		if info.IsDir() {
			return &ValidationError{Op: op.desc, Reason: "link path is a directory"}
		}
		if !op.opts.Overwrite {
			return &ValidationError{Op: op.desc, Reason: "link path already exists and overwrite is not set"}
		}
	}
	if parentMissing(fsys, op.desc.Target) && !op.opts.CreateParents {
		return &ValidationError{Op: op.desc, Reason: "parent directory of link path does not exist"}
	}
	return nil
}

// Execute creates the link. When overwriting, the existing file's content
// or the existing link's target is recorded first so Undo can restore it,
// then the occupant is removed before the new link is created.
func (op *Symlink) Execute(fsys filesystem.FileSystem) error {
	if op.opts.CreateParents {
		if parent := parentDir(op.desc.Target); parent != "." {
			if err := fsys.MkdirAll(parent, 0o755); err != nil {
				return &ExecutionError{Op: op.desc, Reason: "failed to create parent directory", Cause: err}
			}
		}
	}

	if info, err := fsys.Lstat(op.desc.Target); err == nil {
		if info.IsDir() {
			return &ExecutionError{Op: op.desc, Reason: "link path is a directory"}
		}
		if !op.opts.Overwrite {
			return &ExecutionError{Op: op.desc, Reason: "link path already exists and overwrite is not set"}
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := fsys.Readlink(op.desc.Target)
			if err != nil {
				return &ExecutionError{Op: op.desc, Reason: "cannot record existing link for restoration", Cause: err}
			}
			op.replacedKind = kindSymlink
			op.replacedLinkTarget = target
		} else {
			content, err := fsys.ReadFile(op.desc.Target)
			if err != nil {
				return &ExecutionError{Op: op.desc, Reason: "cannot record existing file for restoration", Cause: err}
			}
			op.replacedKind = kindFile
			op.replacedContent = content
			op.replacedMode = info.Mode().Perm()
		}
		if err := fsys.Remove(op.desc.Target); err != nil {
			return &ExecutionError{Op: op.desc, Reason: "failed to remove existing item", Cause: err}
		}
	}

	if err := fsys.Symlink(op.desc.Source, op.desc.Target); err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to create symlink", Cause: err}
	}
	op.created = true
	op.performed = true
	return nil
}

// Undo removes the created link and restores whatever Execute overwrote. A
// link that is already gone is a tolerant no-op when nothing was
// overwritten; when something was, restoration still proceeds. A non-link
// occupant at the path fails the undo rather than being clobbered.
func (op *Symlink) Undo(fsys filesystem.FileSystem) error {
	if !op.created {
		return nil
	}
	if info, err := fsys.Lstat(op.desc.Target); err == nil {
		if info.Mode()&fs.ModeSymlink == 0 {
			return &UndoError{Op: op.desc, Reason: "path is no longer a symlink; refusing to overwrite"}
		}
		if err := fsys.Remove(op.desc.Target); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to remove symlink", Cause: err}
		}
	} else if op.replacedKind == kindUnknown {
		return nil
	}

	switch op.replacedKind {
	case kindFile:
		mode := op.replacedMode
		if mode == 0 {
			mode = 0o644
		}
		if err := fsys.WriteFile(op.desc.Target, op.replacedContent, mode); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to restore overwritten file", Cause: err}
		}
	case kindSymlink:
		if err := fsys.Symlink(op.replacedLinkTarget, op.desc.Target); err != nil {
			return &UndoError{Op: op.desc, Reason: "failed to restore overwritten symlink", Cause: err}
		}
	}
	return nil
}
