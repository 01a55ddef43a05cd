// Package operations implements the planned filesystem mutations: a closed
// set of six operation kinds sharing the validate/execute/undo contract.
//
// An operation is immutable after construction except for the checksum and
// bookkeeping state it records on itself during Validate, Execute, and Undo.
// Errors are always returned as values; nothing here panics on filesystem
// failures.
//
// Undo follows the tolerant-success principle: when the filesystem already
// matches the undo's desired outcome, undo succeeds as a no-op even if this
// operation instance did not cause that state. Undo still fails when the
// state needed to reverse safely was never recorded, when recorded state no
// longer matches current content, or when reversing would overwrite an
// unrelated item.
package operations

import (
	"fmt"
	"path"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// Type identifies one of the six operation kinds.
type Type string

const (
	TypeCopy            Type = "copy"
	TypeCreateFile      Type = "create_file"
	TypeCreateDirectory Type = "create_directory"
	TypeDelete          Type = "delete"
	TypeMove            Type = "move"
	TypeSymlink         Type = "symlink"
)

// Desc describes an operation's kind and the paths it touches. Source is
// empty for single-path operations; for symlinks it holds the link target
// string.
type Desc struct {
	Type   Type
	Source string
	Target string
}

func (d Desc) String() string {
	if d.Source != "" {
		return fmt.Sprintf("%s %s -> %s", d.Type, d.Source, d.Target)
	}
	return fmt.Sprintf("%s %s", d.Type, d.Target)
}

// Operation is the shared contract over the six kinds.
//
// Validate inspects the filesystem without modifying it and records
// planning-time state (checksums, original content) the operation needs
// later. Execute performs the mutation at most once meaningfully. Undo
// reverses a successful Execute, subject to the tolerant-success principle.
type Operation interface {
	Describe() Desc
	Validate(fsys filesystem.FileSystem) error
	Execute(fsys filesystem.FileSystem) error
	Undo(fsys filesystem.FileSystem) error

	// Performed reports whether Execute actually mutated the filesystem,
	// distinguishing a real mutation from a tolerant no-op.
	Performed() bool

	// Warnings returns the non-fatal findings accumulated so far (mode-set
	// failures, checksum drift that is warned about rather than failed).
	Warnings() []string
}

// OutputVerifier is implemented by operations that record a digest of their
// output and can re-verify it after execution.
type OutputVerifier interface {
	VerifyOutput(fsys filesystem.FileSystem) error
}

// base carries the state shared by all operation kinds.
type base struct {
	desc      Desc
	performed bool
	warnings  []string
}

func (b *base) Describe() Desc     { return b.desc }
func (b *base) Performed() bool    { return b.performed }
func (b *base) Warnings() []string { return b.warnings }

func (b *base) warnf(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// parentDir returns the parent directory of a slash-separated path, or "."
// when the path has none.
func parentDir(p string) string {
	return path.Dir(p)
}

// parentMissing reports whether the parent directory of p does not exist.
func parentMissing(fsys filesystem.FileSystem, p string) bool {
	parent := parentDir(p)
	if parent == "." {
		return false
	}
	return !filesystem.IsDir(fsys, parent)
}
