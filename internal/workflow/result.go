package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/intent"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
)

// Status is the outcome of a whole run.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Failure is the failure record of one operation.
type Failure = executor.Failure

// RunError aggregates the failures of a run.
type RunError struct {
	Failures []Failure
}

func (e *RunError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Operation.String()
	}
	return fmt.Sprintf("execution failed for %s: %v", strings.Join(names, ", "), e.Failures[0].Err)
}

func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

type entry struct {
	status  nodestore.Status
	inputs  operation.Values
	outputs operation.Values
	err     error
}

// Result is everything one run produced.
type Result struct {
	Status Status
	// Order is the planned run order.
	Order []*operation.Operation
	// Executed lists operations in the order they were started.
	Executed []*operation.Operation
	// Failures holds one record per failed operation, in run order.
	Failures []Failure
	// Intents are materialized from completed operations in Executed order.
	Intents []intent.Intent
	// Halted is set when the failure policy stopped the run early.
	Halted bool
	Err    error

	entries map[*operation.Operation]entry
}

// Succeeded reports whether every operation completed.
func (r *Result) Succeeded() bool { return r.Status == StatusSucceeded }

// Outputs returns the outputs of op, or false if it produced none.
func (r *Result) Outputs(op *operation.Operation) (operation.Values, bool) {
	e, ok := r.entries[op]
	if !ok || e.outputs == nil {
		return nil, false
	}
	return e.outputs.Clone(), true
}

// Output returns a single named output of op.
func (r *Result) Output(op *operation.Operation, name string) (any, bool) {
	e, ok := r.entries[op]
	if !ok {
		return nil, false
	}
	v, ok := e.outputs[name]
	return v, ok
}

// Inputs returns the resolved inputs op was invoked with.
func (r *Result) Inputs(op *operation.Operation) (operation.Values, bool) {
	e, ok := r.entries[op]
	if !ok || e.inputs == nil {
		return nil, false
	}
	return e.inputs.Clone(), true
}

// OperationStatus returns the final state of op. Operations that were not
// part of the run report StatusPending.
func (r *Result) OperationStatus(op *operation.Operation) nodestore.Status {
	return r.entries[op].status
}

// OperationError returns why op did not complete, including skip and
// cancellation reasons.
func (r *Result) OperationError(op *operation.Operation) error {
	return r.entries[op].err
}

// Failure returns the failure recorded for op, if it failed.
func (r *Result) Failure(op *operation.Operation) (error, bool) {
	for _, f := range r.Failures {
		if f.Operation == op {
			return f.Err, true
		}
	}
	return nil, false
}

// rejected is the result of a run that failed before any invocation.
func rejected(err error) *Result {
	return &Result{Status: StatusFailed, Err: err, entries: map[*operation.Operation]entry{}}
}

func assemble(ctx context.Context, order []*operation.Operation, store nodestore.Store, report *executor.Report) *Result {
	logger := ctxlog.FromContext(ctx)
	res := &Result{
		Order:    order,
		Executed: report.Executed,
		Failures: report.Failures,
		Halted:   report.Halted,
		entries:  make(map[*operation.Operation]entry, len(order)),
	}

	// The run context may already be cancelled; the store reads must still
	// succeed.
	readCtx := context.WithoutCancel(ctx)
	for _, op := range order {
		var e entry
		var errs []error
		var err error
		e.status, err = store.GetStatus(readCtx, op.ID())
		errs = append(errs, err)
		e.inputs, err = store.GetInputs(readCtx, op.ID())
		errs = append(errs, err)
		e.outputs, _, err = store.GetOutput(readCtx, op.ID())
		errs = append(errs, err)
		e.err, err = store.GetError(readCtx, op.ID())
		errs = append(errs, err)
		if err := errors.Join(errs...); err != nil {
			logger.Error("Failed to read run state.", "operation", op.String(), "error", err)
		}
		res.entries[op] = e
	}

	for _, op := range res.Executed {
		e := res.entries[op]
		if e.status != nodestore.StatusCompleted {
			continue
		}
		src := intent.Source{OperationID: string(op.ID()), Operation: op.String()}
		for _, t := range op.Intents() {
			if in, ok := intent.Materialize(t, src, e.outputs); ok {
				res.Intents = append(res.Intents, in)
			}
		}
	}

	switch {
	case report.Cancelled:
		res.Status = StatusCancelled
		res.Err = fmt.Errorf("run cancelled: %w", context.Cause(ctx))
		if len(res.Failures) > 0 {
			res.Err = errors.Join(res.Err, &RunError{Failures: res.Failures})
		}
	case len(res.Failures) > 0:
		res.Status = StatusFailed
		res.Err = &RunError{Failures: res.Failures}
	default:
		res.Status = StatusSucceeded
	}
	return res
}
