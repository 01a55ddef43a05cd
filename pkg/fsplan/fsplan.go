// Package fsplan separates planning from execution for filesystem
// mutations. Callers build an ordered queue of intended operations (copy,
// move, create file, create directory, delete, symlink) without touching
// disk, then execute the queue under an execution policy: straight-through,
// validate-all-first, best-effort, or transactional with best-effort
// rollback. A dry-run mode only validates.
//
// The design assumes a single sequential actor: nothing here defends
// against concurrent modification of the filesystem by other processes.
// Rollback is best-effort, not ACID.
package fsplan

import (
	"context"

	"github.com/fsplan/fsplan/pkg/fsplan/execution"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

// Run queues the given operations and processes them under opts. It is
// sugar for the queue-then-process sequence.
func Run(ctx context.Context, fsys filesystem.FileSystem, opts execution.Options, ops ...operations.Operation) *execution.Result {
	queue := execution.NewQueue()
	queue.Enqueue(ops...)
	return execution.New(opts).Process(ctx, queue, fsys)
}
