// Package nodestore defines the interface for storing and retrieving the
// mutable, per-run execution state of operations.
//
// # Why Node Store Exists
//
// The store keeps what a run produces (status, resolved inputs, outputs,
// errors) apart from the graph, which only describes structure. The graph
// can therefore be reused for many runs, and a run's state can be read
// while other operations are still writing theirs.
//
// # Lifecycle and Usage
//
// A store is:
//  1. **Created** once per run and discarded with the run's result
//  2. **Written** by the executor as operations start, finish, fail or are skipped
//  3. **Read** by the builder to resolve linked inputs from upstream outputs
//  4. **Read** by the workflow to assemble the result set
//
// # State Transitions
//
//	Pending → Running → Completed (with output) OR Failed (with error)
//	Pending → Skipped (upstream failure or halted run)
//	Pending → Cancelled (run cancelled before the operation started)
package nodestore

import (
	"context"
	"errors"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// ErrOutputWritten is returned when an operation's output slot is written
// a second time within one run.
var ErrOutputWritten = errors.New("output already written")

// Status is the per-run state of one operation.
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusSkipped
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	return s >= StatusCompleted
}

// Store manages the mutable state of one run.
//
// Implementations MUST be safe for concurrent use: independent operations
// execute in parallel and write their state while the builder reads the
// outputs of finished ones.
type Store interface {
	// SetStatus records a lifecycle transition.
	SetStatus(ctx context.Context, id operation.ID, status Status) error

	// GetStatus returns StatusPending for operations never touched.
	GetStatus(ctx context.Context, id operation.ID) (Status, error)

	// SetInputs records the inputs an operation was invoked with.
	SetInputs(ctx context.Context, id operation.ID, inputs operation.Values) error

	// GetInputs returns nil if the operation never resolved its inputs.
	GetInputs(ctx context.Context, id operation.ID) (operation.Values, error)

	// SetOutput records an operation's outputs. Each slot is written at most
	// once per run; a second write fails with ErrOutputWritten.
	SetOutput(ctx context.Context, id operation.ID, outputs operation.Values) error

	// GetOutput reports false if the operation has produced nothing.
	GetOutput(ctx context.Context, id operation.ID) (operation.Values, bool, error)

	// SetError records why an operation failed, was skipped or cancelled.
	SetError(ctx context.Context, id operation.ID, opErr error) error

	// GetError returns nil if no error was recorded.
	GetError(ctx context.Context, id operation.ID) (error, error)
}
