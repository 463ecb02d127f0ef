// Package localexecutor provides the in-process implementation of the
// executor.Executor interface.
//
// A single dispatcher goroutine owns the scheduler. It pulls ready
// operations in run order, builds each task immediately before starting it,
// and hands it to a goroutine, keeping at most Workers invocations in
// flight. Finished invocations report back over a channel; the dispatcher
// alone writes results into the store and releases dependents, so every
// output slot has exactly one writer.
package localexecutor

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/specialistvlad/opgraph/internal/builder"
	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/scheduler"
	"github.com/specialistvlad/opgraph/internal/task"
)

// Executor implements executor.Executor for local execution.
type Executor struct {
	sched   *scheduler.Scheduler
	builder *builder.Builder
	store   nodestore.Store
	cfg     executor.Config
	total   int
}

var _ executor.Executor = (*Executor)(nil)

// New creates a local executor for one run of total operations.
func New(sch *scheduler.Scheduler, b *builder.Builder, store nodestore.Store, total int, cfg executor.Config) *Executor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Executor{sched: sch, builder: b, store: store, cfg: cfg, total: total}
}

// outcome is what a worker reports for one invocation.
type outcome struct {
	op      *operation.Operation
	outputs operation.Values
	err     error
}

// Execute runs until every operation has finished, been skipped, or been
// left unstarted because of cancellation or a halt.
func (e *Executor) Execute(ctx context.Context) *executor.Report {
	logger := ctxlog.FromContext(ctx)
	report := &executor.Report{}

	results := make(chan outcome, e.total)
	var wg sync.WaitGroup
	inflight := 0
	var haltCause *operation.Operation

	logger.Debug("Dispatcher started.", "operations", e.total, "workers", e.cfg.Workers, "policy", e.cfg.Policy.String())

	for {
		for haltCause == nil && inflight < e.cfg.Workers && ctx.Err() == nil {
			op, ok := e.sched.Next()
			if !ok {
				break
			}

			t, err := e.builder.Build(ctx, op)
			if err != nil {
				if e.fail(ctx, report, op, err) {
					haltCause = op
				}
				continue
			}

			e.start(ctx, t)
			report.Executed = append(report.Executed, op)
			inflight++
			wg.Add(1)
			go func(t *task.Task) {
				defer wg.Done()
				results <- e.invoke(ctx, t)
			}(t)
		}

		if inflight == 0 {
			break
		}

		res := <-results
		inflight--
		if e.finish(ctx, report, res) {
			if haltCause == nil {
				haltCause = res.op
			}
		}
	}
	wg.Wait()

	switch {
	case ctx.Err() != nil:
		for _, op := range e.sched.Drain() {
			logger.Warn("Context ended, operation not started.", "operation", op.String())
			e.setState(ctx, op, nodestore.StatusCancelled, &executor.CancelledError{Op: op, Cause: context.Cause(ctx)})
			report.Cancelled = true
		}
	case haltCause != nil:
		for _, op := range e.sched.Drain() {
			logger.Warn("Run halted, skipping operation.", "operation", op.String(), "cause", haltCause.String())
			e.setState(ctx, op, nodestore.StatusSkipped, &executor.SkippedError{Op: op, Cause: haltCause, Halted: true})
		}
		report.Halted = true
	}

	slices.SortStableFunc(report.Failures, func(a, b executor.Failure) int {
		return e.sched.Position(a.Operation) - e.sched.Position(b.Operation)
	})
	logger.Debug("Dispatcher finished.", "executed", len(report.Executed), "failures", len(report.Failures))
	return report
}

func (e *Executor) start(ctx context.Context, t *task.Task) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting operation.", "operation", t.Operation.String())
	if err := e.store.SetInputs(ctx, t.Operation.ID(), t.Inputs); err != nil {
		logger.Error("Failed to record inputs.", "operation", t.Operation.String(), "error", err)
	}
	if err := e.store.SetStatus(ctx, t.Operation.ID(), nodestore.StatusRunning); err != nil {
		logger.Error("Failed to record status.", "operation", t.Operation.String(), "error", err)
	}
}

// finish records one outcome and reports whether the run must halt.
func (e *Executor) finish(ctx context.Context, report *executor.Report, res outcome) bool {
	logger := ctxlog.FromContext(ctx).With("operation", res.op.String())

	if res.err == nil {
		if err := e.store.SetOutput(ctx, res.op.ID(), res.outputs); err != nil {
			return e.fail(ctx, report, res.op, err)
		}
		e.setState(ctx, res.op, nodestore.StatusCompleted, nil)
		e.sched.Done(res.op)
		logger.Debug("Operation completed.")
		return false
	}

	if ctx.Err() != nil && errors.Is(res.err, ctx.Err()) {
		logger.Warn("Operation stopped by cancellation.", "error", res.err)
		e.setState(ctx, res.op, nodestore.StatusCancelled, res.err)
		for _, dep := range e.sched.Skip(res.op) {
			e.setState(ctx, dep, nodestore.StatusCancelled, &executor.CancelledError{Op: dep, Cause: context.Cause(ctx)})
		}
		report.Cancelled = true
		return false
	}

	return e.fail(ctx, report, res.op, res.err)
}

// fail records a failure, skips everything downstream, and reports whether
// the run must halt.
func (e *Executor) fail(ctx context.Context, report *executor.Report, op *operation.Operation, err error) bool {
	logger := ctxlog.FromContext(ctx)
	logger.Error("Operation failed.", "operation", op.String(), "error", err)

	e.setState(ctx, op, nodestore.StatusFailed, err)
	report.Failures = append(report.Failures, executor.Failure{Operation: op, Err: err})

	for _, dep := range e.sched.Skip(op) {
		logger.Warn("Skipping dependent operation due to upstream failure.", "operation", dep.String(), "dependency", op.String())
		e.setState(ctx, dep, nodestore.StatusSkipped, &executor.SkippedError{Op: dep, Cause: op})
	}

	return e.cfg.Policy == executor.HaltOnFailure || errors.Is(err, operation.ErrContractViolation)
}

func (e *Executor) setState(ctx context.Context, op *operation.Operation, status nodestore.Status, opErr error) {
	logger := ctxlog.FromContext(ctx)
	if opErr != nil {
		if err := e.store.SetError(ctx, op.ID(), opErr); err != nil {
			logger.Error("Failed to record error.", "operation", op.String(), "error", err)
		}
	}
	if err := e.store.SetStatus(ctx, op.ID(), status); err != nil {
		logger.Error("Failed to record status.", "operation", op.String(), "error", err)
	}
}
