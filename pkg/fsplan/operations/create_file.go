package operations

import (
	"io/fs"

	"github.com/fsplan/fsplan/pkg/fsplan/checksum"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// CreateFileOptions control a CreateFile operation. Creation is always
// exclusive; there is deliberately no overwrite flag.
type CreateFileOptions struct {
	// CreateParents creates missing parent directories of the target.
	CreateParents bool
	// Mode, when non-zero, is applied to the created file. A failure to set
	// it is reported as a warning, not an error.
	Mode fs.FileMode
}

// CreateFile writes new content at Target. It never overwrites.
type CreateFile struct {
	base
	content []byte
	opts    CreateFileOptions

	contentChecksum checksum.Digest // written content, recorded by Execute
}

// NewCreateFile creates a file-creation operation.
func NewCreateFile(target string, content []byte, opts CreateFileOptions) *CreateFile {
	return &CreateFile{
		base:    base{desc: Desc{Type: TypeCreateFile, Target: target}},
		content: content,
		opts:    opts,
	}
}

// Validate fails if the target already exists or its parent is missing.
func (op *CreateFile) Validate(fsys filesystem.FileSystem) error {
	if filesystem.Exists(fsys, op.desc.Target) {
		return &ValidationError{Op: op.desc, Reason: "target already exists"}
	}
	if parentMissing(fsys, op.desc.Target) && !op.opts.CreateParents {
		return &ValidationError{Op: op.desc, Reason: "parent directory of target does not exist"}
	}
	return nil
}

// Execute writes the content and records its digest.
func (op *CreateFile) Execute(fsys filesystem.FileSystem) error {
	if op.opts.CreateParents {
		if parent := parentDir(op.desc.Target); parent != "." {
			if err := fsys.MkdirAll(parent, 0o755); err != nil {
				return &ExecutionError{Op: op.desc, Reason: "failed to create parent directory", Cause: err}
			}
		}
	}
	if err := fsys.WriteFile(op.desc.Target, op.content, 0o644); err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to write file", Cause: err}
	}
	if op.opts.Mode != 0 {
		if err := fsys.Chmod(op.desc.Target, op.opts.Mode); err != nil {
			op.warnf("could not set mode %v on %s: %v", op.opts.Mode, op.desc.Target, err)
		}
	}
	op.contentChecksum = checksum.Sum(op.content)
	op.performed = true
	return nil
}

// Undo removes the created file. A target deleted by someone else is a
// tolerant no-op; a target modified since creation is refused so the edit
// is not destroyed.
func (op *CreateFile) Undo(fsys filesystem.FileSystem) error {
	if !filesystem.Exists(fsys, op.desc.Target) {
		return nil
	}
	if op.contentChecksum == "" {
		return &UndoError{Op: op.desc, Reason: "no checksum recorded for the created file"}
	}
	current, err := checksum.Calculate(fsys, op.desc.Target)
	if err != nil {
		return &UndoError{Op: op.desc, Reason: "cannot checksum file", Cause: err}
	}
	if current != op.contentChecksum {
		return &UndoError{Op: op.desc, Reason: "file was modified after creation; refusing to delete"}
	}
	if err := fsys.Remove(op.desc.Target); err != nil {
		return &UndoError{Op: op.desc, Reason: "failed to remove file", Cause: err}
	}
	return nil
}

// VerifyOutput re-checks the created file against the digest recorded by
// Execute.
func (op *CreateFile) VerifyOutput(fsys filesystem.FileSystem) error {
	if op.contentChecksum == "" {
		return nil
	}
	stored := op.contentChecksum
	return checksum.EnsureMatch(fsys, op.desc.Target, &stored)
}
