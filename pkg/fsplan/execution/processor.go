// Package execution provides the operation queue and the processor that
// runs queued operations under an execution policy: straight-through,
// validate-all-first, best-effort, or transactional with rollback, plus a
// dry-run mode that only validates.
package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

// Options select the execution policy for a run. The flags compose, with
// two exceptions: Transactional wins over BestEffort when both are set
// (the combination is otherwise undefined), and DryRun ignores everything
// but validation.
type Options struct {
	// ValidateFirst validates every operation before executing any; the
	// first validation failure aborts the run with nothing executed.
	ValidateFirst bool
	// BestEffort skips failed operations and continues instead of
	// stopping the run.
	BestEffort bool
	// Transactional undoes every executed operation, in reverse order, as
	// soon as one execution fails.
	Transactional bool
	// VerifyChecksums re-verifies each operation's recorded output digest
	// after it executes. Failures are warnings and never halt the run.
	VerifyChecksums bool
	// DryRun validates the whole queue without executing anything.
	DryRun bool
}

// Processor consumes a queue snapshot and runs it under the configured
// policy, tracking executed operations and collected errors. Runs are
// strictly sequential: one operation at a time, in queue order, with
// rollback in reverse. A Processor is not safe for concurrent use.
type Processor struct {
	opts   Options
	logger zerolog.Logger

	executed []operations.Operation
	errors   []Error
}

// New creates a processor with a no-op logger.
func New(opts Options) *Processor {
	return NewWithLogger(opts, zerolog.Nop())
}

// NewWithLogger creates a processor that traces its run to the given
// logger. The processor's contracts never depend on log output.
func NewWithLogger(opts Options, logger zerolog.Logger) *Processor {
	return &Processor{opts: opts, logger: logger}
}

// Executed returns the operations that completed Execute successfully
// during the last run, in execution order. The undo order of a rollback is
// the reverse of this.
func (p *Processor) Executed() []operations.Operation {
	out := make([]operations.Operation, len(p.executed))
	copy(out, p.executed)
	return out
}

// Errors returns the last run's ordered error log.
func (p *Processor) Errors() []Error {
	out := make([]Error, len(p.errors))
	copy(out, p.errors)
	return out
}

// Process runs the queued operations against fsys. The queue itself is
// never consumed; the run works on a snapshot. The context is checked
// between operations only — an operation's own validate/execute/undo body
// is never interrupted.
func (p *Processor) Process(ctx context.Context, queue *Queue, fsys filesystem.FileSystem) *Result {
	p.executed = nil
	p.errors = nil

	r := &run{
		p:     p,
		fsys:  fsys,
		ops:   queue.Operations(),
		start: time.Now(),
		result: &Result{
			Success: true,
		},
	}
	r.statuses = make([]OperationResult, len(r.ops))
	r.warned = make([]int, len(r.ops))
	for i, op := range r.ops {
		r.statuses[i] = OperationResult{Index: i, Op: op.Describe(), Status: StatusPending}
	}

	p.logger.Info().
		Int("operation_count", len(r.ops)).
		Bool("validate_first", p.opts.ValidateFirst).
		Bool("best_effort", p.opts.BestEffort).
		Bool("transactional", p.opts.Transactional).
		Bool("dry_run", p.opts.DryRun).
		Msg("starting run")
	r.result.logf("processing %d operations", len(r.ops))

	if p.opts.DryRun {
		return r.dryRun()
	}
	return r.execute(ctx)
}

// run is the state of one Process call.
type run struct {
	p           *Processor
	fsys        filesystem.FileSystem
	ops         []operations.Operation
	result      *Result
	statuses    []OperationResult
	executedIdx []int // queue indices of p.executed, in execution order
	warned      []int // warnings already drained per operation
	start       time.Time
}

func (r *run) dryRun() *Result {
	for i, op := range r.ops {
		if err := op.Validate(r.fsys); err != nil {
			r.record(i, PhaseValidation, SeverityError, err)
			r.statuses[i].Status = StatusValidationFailed
			r.statuses[i].Err = err
			r.result.Success = false
			continue
		}
		r.result.logf("dry-run: %s is valid", op.Describe())
	}
	return r.finish()
}

func (r *run) execute(ctx context.Context) *Result {
	// Transactional wins when combined with best-effort; the combination
	// is otherwise undefined.
	transactional := r.p.opts.Transactional
	bestEffort := r.p.opts.BestEffort && !transactional

	if r.p.opts.ValidateFirst {
		for i, op := range r.ops {
			if err := op.Validate(r.fsys); err != nil {
				r.record(i, PhaseValidation, SeverityError, err)
				r.statuses[i].Status = StatusValidationFailed
				r.statuses[i].Err = err
				r.result.Success = false
				r.result.logf("aborting: validation failed before any execution")
				return r.finish()
			}
		}
		r.result.logf("all %d operations validated", len(r.ops))
	}

	for i, op := range r.ops {
		if err := ctx.Err(); err != nil {
			r.record(i, PhaseExecution, SeverityError, fmt.Errorf("run canceled: %w", err))
			r.result.Success = false
			if transactional {
				r.rollback()
			}
			return r.finish()
		}

		if !r.p.opts.ValidateFirst {
			if err := op.Validate(r.fsys); err != nil {
				r.record(i, PhaseValidation, SeverityError, err)
				r.statuses[i].Status = StatusValidationFailed
				r.statuses[i].Err = err
				if bestEffort {
					r.result.logf("skipping %s", op.Describe())
					continue
				}
				r.result.Success = false
				return r.finish()
			}
		}

		if err := op.Execute(r.fsys); err != nil {
			r.record(i, PhaseExecution, SeverityError, err)
			r.statuses[i].Status = StatusExecutionFailed
			r.statuses[i].Err = err
			r.drainWarnings(i, op)
			if transactional {
				r.result.Success = false
				r.rollback()
				return r.finish()
			}
			if bestEffort {
				r.result.logf("continuing past failed %s", op.Describe())
				continue
			}
			r.result.Success = false
			return r.finish()
		}

		r.p.executed = append(r.p.executed, op)
		r.executedIdx = append(r.executedIdx, i)
		r.result.ExecutedCount++
		r.statuses[i].Status = StatusCompleted
		r.result.logf("executed %s", op.Describe())
		r.drainWarnings(i, op)

		if r.p.opts.VerifyChecksums {
			if v, ok := op.(operations.OutputVerifier); ok {
				if err := v.VerifyOutput(r.fsys); err != nil {
					r.record(i, PhaseExecution, SeverityWarning, err)
				}
			}
		}
	}
	return r.finish()
}

// rollback unwinds the executed operations in reverse order. An undo
// failure is recorded but never stops the unwind: every executed operation
// gets its undo attempt.
func (r *run) rollback() {
	r.result.logf("rolling back %d executed operations", len(r.p.executed))
	for j := len(r.p.executed) - 1; j >= 0; j-- {
		op := r.p.executed[j]
		i := r.executedIdx[j]
		if err := op.Undo(r.fsys); err != nil {
			r.record(i, PhaseRollback, SeverityError, err)
			r.statuses[i].Status = StatusRollbackFailed
		} else {
			r.result.RollbackCount++
			r.statuses[i].Status = StatusRolledBack
			r.result.logf("rolled back %s", op.Describe())
		}
		r.drainWarnings(i, op)
	}
}

func (r *run) record(i int, phase Phase, severity Severity, err error) {
	e := Error{Index: i, Op: r.ops[i].Describe(), Phase: phase, Severity: severity, Err: err}
	r.p.errors = append(r.p.errors, e)
	r.result.Errors = append(r.result.Errors, e)
	r.result.logf("%s", e.Error())

	evt := r.p.logger.Warn()
	if severity == SeverityError {
		evt = r.p.logger.Error()
	}
	evt.Int("operation_index", i).
		Str("op", r.ops[i].Describe().String()).
		Str("phase", string(phase)).
		Err(err).
		Msg("operation error")
}

// drainWarnings copies an operation's newly accumulated warnings into the
// run log.
func (r *run) drainWarnings(i int, op operations.Operation) {
	warnings := op.Warnings()
	for _, w := range warnings[r.warned[i]:] {
		r.result.logf("warning: %s", w)
		r.p.logger.Warn().Str("op", op.Describe().String()).Msg(w)
	}
	r.warned[i] = len(warnings)
}

func (r *run) finish() *Result {
	r.result.Operations = r.statuses
	r.result.Duration = time.Since(r.start)
	r.p.logger.Info().
		Bool("success", r.result.Success).
		Int("executed", r.result.ExecutedCount).
		Int("rolled_back", r.result.RollbackCount).
		Int("errors", len(r.result.Errors)).
		Dur("duration", r.result.Duration).
		Msg("run finished")
	return r.result
}
