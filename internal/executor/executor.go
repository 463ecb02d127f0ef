// Package executor defines how a prepared run is carried out. The
// in-process implementation lives in package localexecutor.
package executor

import (
	"context"
	"time"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// FailurePolicy decides what happens to the rest of a run after an
// operation fails. Dependents of a failed operation are never invoked under
// any policy.
type FailurePolicy int

const (
	// HaltOnFailure starts no further operations once one has failed.
	// Operations already in flight run to completion.
	HaltOnFailure FailurePolicy = iota
	// ContinueIndependent keeps running every operation that does not
	// depend on a failed one.
	ContinueIndependent
)

func (p FailurePolicy) String() string {
	if p == ContinueIndependent {
		return "continue-independent"
	}
	return "halt-on-failure"
}

// Config tunes one run.
type Config struct {
	// Workers bounds how many operations are invoked at once. Values below
	// one mean one, which executes the run order strictly sequentially.
	Workers int
	// Timeout bounds each invocation. Zero disables it.
	Timeout time.Duration
	Policy  FailurePolicy
}

// Failure is the failure record of one operation.
type Failure struct {
	Operation *operation.Operation
	Err       error
}

// Report summarises what the executor did. Per-operation state lives in the
// run's nodestore.
type Report struct {
	// Executed lists operations in the order they were started.
	Executed []*operation.Operation
	// Failures holds exactly one record per failed operation, in run order.
	Failures []Failure
	// Halted is set when the failure policy stopped the run early.
	Halted bool
	// Cancelled is set when the context ended before every operation started.
	Cancelled bool
}

// Executor carries out one prepared run.
type Executor interface {
	Execute(ctx context.Context) *Report
}
