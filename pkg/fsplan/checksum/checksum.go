// Package checksum computes content digests used to detect whether a file
// changed between planning and undo time. Digests are SHA-256 over the file's
// bytes and are used purely for change detection, never for identity or
// security.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

// Digest is a SHA-256 hex digest of a file's byte content at a point in
// time. Two digests compare equal iff the underlying content was
// byte-identical. The zero value means "not recorded".
type Digest string

// Sum returns the digest of in-memory content.
func Sum(data []byte) Digest {
	h := sha256.Sum256(data)
	return Digest(hex.EncodeToString(h[:]))
}

// Calculate streams the file at path through SHA-256 and returns its digest.
// It fails if path does not exist, cannot be read, or is a directory.
func Calculate(fsys filesystem.FileSystem, path string) (Digest, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot checksum %s: is a directory", path)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksumming: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to calculate checksum for %s: %w", path, err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// EnsureMatch compares the current digest of path against *stored. If no
// digest was stored yet, the current one is recorded and the check succeeds
// (first observation). If one was stored, a differing current digest fails
// with a descriptive mismatch error. This single routine underlies both
// "did the source change before I act on it" and "did my output change
// before I undo it" checks.
func EnsureMatch(fsys filesystem.FileSystem, path string, stored *Digest) error {
	current, err := Calculate(fsys, path)
	if err != nil {
		return err
	}
	if *stored == "" {
		*stored = current
		return nil
	}
	if current != *stored {
		return fmt.Errorf("checksum mismatch for %s: recorded %.12s..., current %.12s...",
			path, string(*stored), string(current))
	}
	return nil
}
