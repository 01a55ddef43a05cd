package operations

import (
	"io/fs"

	"github.com/fsplan/fsplan/pkg/fsplan/checksum"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// CopyOptions control a Copy operation. All flags default to false,
// mirroring cp's conservative defaults.
type CopyOptions struct {
	// Overwrite allows replacing an existing regular file at the target.
	Overwrite bool
	// CreateParents creates missing parent directories of the target.
	CreateParents bool
	// PreserveAttributes carries the source's permission bits to the target.
	PreserveAttributes bool
}

// Copy duplicates a regular file's bytes from Source to Target.
type Copy struct {
	base
	opts CopyOptions

	sourceChecksum checksum.Digest // source content at planning time
	targetChecksum checksum.Digest // written target, recorded by Execute
}

// NewCopy creates a copy operation. The source checksum is recorded on the
// first Validate, or earlier via RecordSourceChecksum at planning time.
func NewCopy(source, target string, opts CopyOptions) *Copy {
	return &Copy{
		base: base{desc: Desc{Type: TypeCopy, Source: source, Target: target}},
		opts: opts,
	}
}

// RecordSourceChecksum records the source's current digest so later
// validation can detect changes made after planning.
func (op *Copy) RecordSourceChecksum(fsys filesystem.FileSystem) error {
	return checksum.EnsureMatch(fsys, op.desc.Source, &op.sourceChecksum)
}

// Validate checks the copy's preconditions without touching the filesystem.
func (op *Copy) Validate(fsys filesystem.FileSystem) error {
	info, err := fsys.Stat(op.desc.Source)
	if err != nil {
		return &ValidationError{Op: op.desc, Reason: "source does not exist or is not readable", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return &ValidationError{Op: op.desc, Reason: "source is not a regular file"}
	}
	if err := checksum.EnsureMatch(fsys, op.desc.Source, &op.sourceChecksum); err != nil {
		return &ValidationError{Op: op.desc, Reason: "source changed since the operation was planned", Cause: err}
	}
	if filesystem.Exists(fsys, op.desc.Target) {
		if filesystem.IsDir(fsys, op.desc.Target) {
			return &ValidationError{Op: op.desc, Reason: "target is a directory"}
		}
		if !op.opts.Overwrite {
			return &ValidationError{Op: op.desc, Reason: "target already exists and overwrite is not set"}
		}
	}
	if parentMissing(fsys, op.desc.Target) && !op.opts.CreateParents {
		return &ValidationError{Op: op.desc, Reason: "parent directory of target does not exist"}
	}
	return nil
}

// Execute copies the source bytes to the target and records the written
// target's digest. If that digest cannot be computed, the just-written
// target is removed so no unverifiable partial copy is left behind.
func (op *Copy) Execute(fsys filesystem.FileSystem) error {
	if op.opts.CreateParents {
		if parent := parentDir(op.desc.Target); parent != "." {
			if err := fsys.MkdirAll(parent, 0o755); err != nil {
				return &ExecutionError{Op: op.desc, Reason: "failed to create parent directory", Cause: err}
			}
		}
	}

	data, err := fsys.ReadFile(op.desc.Source)
	if err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to read source", Cause: err}
	}

	mode := fs.FileMode(0o644)
	if op.opts.PreserveAttributes {
		if info, err := fsys.Stat(op.desc.Source); err == nil {
			mode = info.Mode().Perm()
		}
	}
	if err := fsys.WriteFile(op.desc.Target, data, mode); err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to write target", Cause: err}
	}
	if op.opts.PreserveAttributes {
		if err := fsys.Chmod(op.desc.Target, mode); err != nil {
			op.warnf("could not preserve mode on %s: %v", op.desc.Target, err)
		}
	}

	digest, err := checksum.Calculate(fsys, op.desc.Target)
	if err != nil {
		_ = fsys.Remove(op.desc.Target)
		return &ExecutionError{Op: op.desc, Reason: "failed to checksum written target; partial copy removed", Cause: err}
	}
	op.targetChecksum = digest
	op.performed = true
	return nil
}

// Undo removes the copied target. It succeeds as a no-op if the target is
// already gone, and refuses to delete a target that was modified after the
// copy or whose checksum was never recorded.
func (op *Copy) Undo(fsys filesystem.FileSystem) error {
	if !filesystem.Exists(fsys, op.desc.Target) {
		return nil
	}
	if op.targetChecksum == "" {
		return &UndoError{Op: op.desc, Reason: "no checksum recorded for the copied target"}
	}
	current, err := checksum.Calculate(fsys, op.desc.Target)
	if err != nil {
		return &UndoError{Op: op.desc, Reason: "cannot checksum target", Cause: err}
	}
	if current != op.targetChecksum {
		return &UndoError{Op: op.desc, Reason: "target was modified after the copy; refusing to delete"}
	}
	if err := fsys.Remove(op.desc.Target); err != nil {
		return &UndoError{Op: op.desc, Reason: "failed to remove target", Cause: err}
	}
	return nil
}

// VerifyOutput re-checks the written target against the digest recorded by
// Execute.
func (op *Copy) VerifyOutput(fsys filesystem.FileSystem) error {
	if op.targetChecksum == "" {
		return nil
	}
	stored := op.targetChecksum
	return checksum.EnsureMatch(fsys, op.desc.Target, &stored)
}
