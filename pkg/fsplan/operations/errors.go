package operations

import "fmt"

// ValidationError reports a precondition that was not met before execution.
type ValidationError struct {
	Op     Desc
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error for %s: %s: %v", e.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// ExecutionError reports a failure while performing the mutation itself.
type ExecutionError struct {
	Op     Desc
	Reason string
	Cause  error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution error for %s: %s: %v", e.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("execution error for %s: %s", e.Op, e.Reason)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// UndoError reports that a reversal could not be performed safely: recorded
// state is missing, current content no longer matches it, or an unrelated
// item occupies the restoration path.
type UndoError struct {
	Op     Desc
	Reason string
	Cause  error
}

func (e *UndoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("undo error for %s: %s: %v", e.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("undo error for %s: %s", e.Op, e.Reason)
}

func (e *UndoError) Unwrap() error { return e.Cause }
