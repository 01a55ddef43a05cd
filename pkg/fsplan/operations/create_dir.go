package operations

import (
	"io/fs"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// CreateDirectoryOptions control a CreateDirectory operation. Unlike the
// file-side operations, parent creation defaults to on here, mirroring
// mkdir -p; NoParents turns it off and makes missing ancestors a
// validation failure.
type CreateDirectoryOptions struct {
	// Exclusive fails when the directory already exists. Without it an
	// existing directory is a successful no-op.
	Exclusive bool
	// Mode, when non-zero, is the permission mode for created directories
	// (default 0755).
	Mode fs.FileMode
	// NoParents disables the default creation of missing ancestors.
	NoParents bool
}

// CreateDirectory ensures a directory exists at Target.
type CreateDirectory struct {
	base
	opts CreateDirectoryOptions

	created bool // this instance actually created the directory
}

// NewCreateDirectory creates a directory-creation operation.
func NewCreateDirectory(target string, opts CreateDirectoryOptions) *CreateDirectory {
	return &CreateDirectory{
		base: base{desc: Desc{Type: TypeCreateDirectory, Target: target}},
		opts: opts,
	}
}

// Validate fails when the path is occupied by a non-directory, when
// Exclusive is set and the directory exists, or when NoParents is set and
// an ancestor is missing.
func (op *CreateDirectory) Validate(fsys filesystem.FileSystem) error {
	if info, err := fsys.Lstat(op.desc.Target); err == nil {
		if !info.IsDir() {
			return &ValidationError{Op: op.desc, Reason: "path exists and is not a directory"}
		}
		if op.opts.Exclusive {
			return &ValidationError{Op: op.desc, Reason: "directory already exists (exclusive)"}
		}
		return nil
	}
	if op.opts.NoParents && parentMissing(fsys, op.desc.Target) {
		return &ValidationError{Op: op.desc, Reason: "parent directory does not exist"}
	}
	return nil
}

// Execute creates the directory. An already-existing directory is a
// successful no-op unless Exclusive is set.
func (op *CreateDirectory) Execute(fsys filesystem.FileSystem) error {
	if info, err := fsys.Lstat(op.desc.Target); err == nil {
		if !info.IsDir() {
			return &ExecutionError{Op: op.desc, Reason: "path exists and is not a directory"}
		}
		if op.opts.Exclusive {
			return &ExecutionError{Op: op.desc, Reason: "directory already exists (exclusive)"}
		}
		return nil
	}
	mode := op.opts.Mode
	if mode == 0 {
		mode = 0o755
	}
	var err error
	if op.opts.NoParents {
		err = fsys.Mkdir(op.desc.Target, mode)
	} else {
		err = fsys.MkdirAll(op.desc.Target, mode)
	}
	if err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to create directory", Cause: err}
	}
	op.created = true
	op.performed = true
	return nil
}

// Undo removes the directory. It is strict rather than tolerant, mirroring
// rmdir's natural precondition: the directory must still exist, still be a
// directory, and be empty. Tolerance here could mask unexpected content
// loss.
func (op *CreateDirectory) Undo(fsys filesystem.FileSystem) error {
	info, err := fsys.Lstat(op.desc.Target)
	if err != nil {
		return &UndoError{Op: op.desc, Reason: "directory does not exist", Cause: err}
	}
	if !info.IsDir() {
		return &UndoError{Op: op.desc, Reason: "path is not a directory"}
	}
	entries, err := fsys.ReadDir(op.desc.Target)
	if err != nil {
		return &UndoError{Op: op.desc, Reason: "cannot read directory", Cause: err}
	}
	if len(entries) > 0 {
		return &UndoError{Op: op.desc, Reason: "directory is not empty"}
	}
	if err := fsys.Remove(op.desc.Target); err != nil {
		return &UndoError{Op: op.desc, Reason: "failed to remove directory", Cause: err}
	}
	return nil
}
