package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/opgraph/internal/operation"
)

var (
	ErrTimeout   = errors.New("operation timed out")
	ErrSkipped   = errors.New("operation skipped")
	ErrCancelled = errors.New("run cancelled")
)

// TimeoutError reports an invocation that exceeded its budget. The
// invocation itself may still be running; its result is discarded.
type TimeoutError struct {
	Op      *operation.Operation
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// SkippedError explains why an operation never started. Cause is the
// failed upstream operation, or nil when the whole run was halted.
type SkippedError struct {
	Op     *operation.Operation
	Cause  *operation.Operation
	Halted bool
}

func (e *SkippedError) Error() string {
	if e.Cause != nil && !e.Halted {
		return fmt.Sprintf("operation %s skipped due to upstream failure of %s", e.Op, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("operation %s skipped: run halted after failure of %s", e.Op, e.Cause)
	}
	return fmt.Sprintf("operation %s skipped: run halted", e.Op)
}

func (e *SkippedError) Unwrap() error { return ErrSkipped }

// CancelledError marks an operation the run never started because its
// context ended.
type CancelledError struct {
	Op    *operation.Operation
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("operation %s not started: %v", e.Op, e.Cause)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Cause} }
