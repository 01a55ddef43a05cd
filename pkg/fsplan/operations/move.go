package operations

import (
	"io/fs"
	"path"

	"github.com/fsplan/fsplan/pkg/fsplan/checksum"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// MoveOptions control a Move operation. Both flags default to false.
type MoveOptions struct {
	// Overwrite allows replacing an existing item at the effective target.
	// Whatever is replaced is permanently lost: Undo moves the item back
	// but does not resurrect the overwritten occupant.
	Overwrite bool
	// CreateParents creates missing parent directories of the effective
	// target.
	CreateParents bool
}

// Move relocates a file, directory, or symlink from Source to Target. When
// Target is an existing directory and Source is a file or symlink, the
// effective target becomes Target/basename(Source); otherwise the effective
// target is Target verbatim.
type Move struct {
	base
	opts MoveOptions

	effectiveTarget string
	sourceChecksum  checksum.Digest // pre-move file content
	movedChecksum   checksum.Digest // post-move, recorded by Execute
	linkTarget      string          // symlink target string, recorded at validate
	linkTargetKnown bool
	movedIsLink     bool
	overwrote       bool // an occupant of the effective target was replaced
}

// NewMove creates a move operation.
func NewMove(source, target string, opts MoveOptions) *Move {
	return &Move{
		base: base{desc: Desc{Type: TypeMove, Source: source, Target: target}},
		opts: opts,
	}
}

// RecordSourceChecksum records the source file's current digest so the
// post-move content check has a planning-time baseline.
func (op *Move) RecordSourceChecksum(fsys filesystem.FileSystem) error {
	return checksum.EnsureMatch(fsys, op.desc.Source, &op.sourceChecksum)
}

// EffectiveTarget returns the resolved destination path. It is only
// meaningful after Validate or Execute has run.
func (op *Move) EffectiveTarget() string {
	if op.effectiveTarget == "" {
		return op.desc.Target
	}
	return op.effectiveTarget
}

// resolveTarget applies the move-into-directory redirection.
func (op *Move) resolveTarget(fsys filesystem.FileSystem) string {
	if filesystem.IsDir(fsys, op.desc.Target) {
		if info, err := fsys.Lstat(op.desc.Source); err == nil && !info.IsDir() {
			return path.Join(op.desc.Target, path.Base(op.desc.Source))
		}
	}
	return op.desc.Target
}

// Validate checks the move's preconditions: a source distinct from the
// effective target, an accessible source, and an existing parent for the
// effective target (unless CreateParents is set).
func (op *Move) Validate(fsys filesystem.FileSystem) error {
	eff := op.resolveTarget(fsys)
	op.effectiveTarget = eff
	if op.desc.Source == eff {
		return &ValidationError{Op: op.desc, Reason: "source and target are the same path"}
	}
	info, err := fsys.Lstat(op.desc.Source)
	if err != nil {
		return &ValidationError{Op: op.desc, Reason: "source does not exist or is not accessible", Cause: err}
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		op.movedIsLink = true
		if target, err := fsys.Readlink(op.desc.Source); err == nil {
			op.linkTarget = target
			op.linkTargetKnown = true
		}
	case info.Mode().IsRegular():
		if err := checksum.EnsureMatch(fsys, op.desc.Source, &op.sourceChecksum); err != nil {
			return &ValidationError{Op: op.desc, Reason: "source changed since the operation was planned", Cause: err}
		}
	}
	if parentMissing(fsys, eff) && !op.opts.CreateParents {
		return &ValidationError{Op: op.desc, Reason: "parent directory of target does not exist"}
	}
	return nil
}

// Execute performs the move. The source's existence is re-checked since it
// may have vanished after validation. Overwrite rules apply to the
// effective target: directory-onto-file and file-onto-directory are errors,
// and replacing an occupant requires Overwrite. For plain files the moved
// content is checksummed and a drift from the pre-move digest is warned
// about, not failed; symlinks move as links with their target string
// untouched.
func (op *Move) Execute(fsys filesystem.FileSystem) error {
	info, err := fsys.Lstat(op.desc.Source)
	if err != nil {
		return &ExecutionError{Op: op.desc, Reason: "source no longer exists", Cause: err}
	}
	isLink := info.Mode()&fs.ModeSymlink != 0
	isRegular := info.Mode().IsRegular()
	op.movedIsLink = isLink

	eff := op.resolveTarget(fsys)
	op.effectiveTarget = eff
	if op.desc.Source == eff {
		return &ExecutionError{Op: op.desc, Reason: "source and target are the same path"}
	}

	if op.opts.CreateParents {
		if parent := parentDir(eff); parent != "." {
			if err := fsys.MkdirAll(parent, 0o755); err != nil {
				return &ExecutionError{Op: op.desc, Reason: "failed to create parent directory", Cause: err}
			}
		}
	}

	if occupant, err := fsys.Lstat(eff); err == nil {
		srcIsDir := info.IsDir()
		dstIsDir := occupant.IsDir()
		if srcIsDir && !dstIsDir {
			return &ExecutionError{Op: op.desc, Reason: "cannot move a directory onto a file"}
		}
		if !srcIsDir && dstIsDir {
			return &ExecutionError{Op: op.desc, Reason: "cannot move a file onto a directory"}
		}
		if !op.opts.Overwrite {
			return &ExecutionError{Op: op.desc, Reason: "target already exists and overwrite is not set"}
		}
		if err := fsys.Remove(eff); err != nil {
			return &ExecutionError{Op: op.desc, Reason: "failed to replace existing target", Cause: err}
		}
		op.overwrote = true
	}

	if isRegular && op.sourceChecksum == "" {
		if digest, err := checksum.Calculate(fsys, op.desc.Source); err == nil {
			op.sourceChecksum = digest
		}
	}

	if err := fsys.Rename(op.desc.Source, eff); err != nil {
		return &ExecutionError{Op: op.desc, Reason: "failed to move", Cause: err}
	}

	if isRegular {
		digest, err := checksum.Calculate(fsys, eff)
		if err != nil {
			op.warnf("could not checksum %s after the move: %v", eff, err)
		} else {
			op.movedChecksum = digest
			if op.sourceChecksum != "" && digest != op.sourceChecksum {
				op.warnf("content of %s changed during the move", eff)
			}
		}
	}
	op.performed = true
	return nil
}

// Undo moves the item back to the source path. It fails when nothing is at
// the effective target anymore or when something unrelated now occupies the
// original source. An item that was overwritten during Execute is not
// restored; its loss is warned about, since requesting overwrite accepted
// that loss.
func (op *Move) Undo(fsys filesystem.FileSystem) error {
	if !op.performed {
		return nil
	}
	eff := op.EffectiveTarget()
	if !filesystem.Exists(fsys, eff) {
		return &UndoError{Op: op.desc, Reason: "nothing at the target to move back"}
	}
	if filesystem.Exists(fsys, op.desc.Source) {
		return &UndoError{Op: op.desc, Reason: "original source path is now occupied; refusing to overwrite"}
	}
	if op.movedIsLink && op.linkTargetKnown {
		if current, err := fsys.Readlink(eff); err == nil && current != op.linkTarget {
			op.warnf("symlink target of %s changed after the move", eff)
		}
	}
	if err := fsys.Rename(eff, op.desc.Source); err != nil {
		return &UndoError{Op: op.desc, Reason: "failed to move back", Cause: err}
	}
	if op.overwrote {
		op.warnf("item overwritten at %s during the move is permanently lost", eff)
	}
	return nil
}

// VerifyOutput re-checks the moved file against the digest recorded by
// Execute.
func (op *Move) VerifyOutput(fsys filesystem.FileSystem) error {
	if op.movedChecksum == "" {
		return nil
	}
	stored := op.movedChecksum
	return checksum.EnsureMatch(fsys, op.EffectiveTarget(), &stored)
}
