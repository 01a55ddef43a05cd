package execution

import (
	"fmt"
	"time"

	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

// Phase is the stage in which a processor-recorded error occurred.
type Phase string

const (
	PhaseValidation Phase = "validation"
	PhaseExecution  Phase = "execution"
	PhaseRollback   Phase = "rollback"
)

// Severity distinguishes hard failures from findings that never halt a run.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error is one entry in a run's ordered error log.
type Error struct {
	// Index is the operation's position in the processed snapshot.
	Index    int
	Op       operations.Desc
	Phase    Phase
	Severity Severity
	Err      error
}

func (e Error) Error() string {
	return fmt.Sprintf("[%s] operation %d (%s): %v", e.Phase, e.Index, e.Op, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// OperationStatus is the terminal state an operation reached in a run.
type OperationStatus string

const (
	// StatusPending means the run stopped before reaching the operation.
	StatusPending OperationStatus = "pending"
	// StatusCompleted means Execute succeeded.
	StatusCompleted OperationStatus = "completed"
	// StatusValidationFailed means Validate failed and Execute never ran.
	StatusValidationFailed OperationStatus = "validation_failed"
	// StatusExecutionFailed means Execute failed.
	StatusExecutionFailed OperationStatus = "execution_failed"
	// StatusSkipped means a best-effort run skipped the operation.
	StatusSkipped OperationStatus = "skipped"
	// StatusRolledBack means a transactional run undid the operation.
	StatusRolledBack OperationStatus = "rolled_back"
	// StatusRollbackFailed means the undo attempt itself failed.
	StatusRollbackFailed OperationStatus = "rollback_failed"
)

// OperationResult records the outcome of a single operation in a run.
type OperationResult struct {
	Index  int
	Op     operations.Desc
	Status OperationStatus
	Err    error
}

// Result aggregates the outcome of one Processor.Process call.
type Result struct {
	// Success is the run's overall outcome under the active policy's rule.
	Success bool
	// Errors is the ordered error log, tagged by phase and severity.
	// Nothing is ever silently dropped.
	Errors []Error
	// Operations holds the per-operation outcomes in queue order.
	Operations []OperationResult
	// ExecutedCount is the number of operations whose Execute succeeded.
	ExecutedCount int
	// RollbackCount is the number of operations successfully undone.
	RollbackCount int
	// Log is a human-readable trace of what happened, in order.
	Log []string
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

func (r *Result) logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}
