package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/opgraph/internal/builder"
	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/operation"
)

const (
	HaltOnFailure       = executor.HaltOnFailure
	ContinueIndependent = executor.ContinueIndependent
)

// RunOption tunes a single run.
type RunOption func(*executor.Config)

// WithWorkers bounds how many operations run at once. The default of one
// executes the run order strictly sequentially.
func WithWorkers(n int) RunOption {
	return func(c *executor.Config) { c.Workers = n }
}

// WithTimeout bounds every invocation. Zero means no limit.
func WithTimeout(d time.Duration) RunOption {
	return func(c *executor.Config) { c.Timeout = d }
}

// WithFailurePolicy selects what happens to unstarted operations once one
// has failed.
func WithFailurePolicy(p executor.FailurePolicy) RunOption {
	return func(c *executor.Config) { c.Policy = p }
}

// Run executes the workflow once. The returned Result is never nil; the
// error is the same as Result.Err.
func (w *Workflow) Run(ctx context.Context, opts ...RunOption) (*Result, error) {
	cfg := executor.Config{Workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, logger := ctxlog.With(ctx, "workflow", w.name)

	g := w.Graph.Clone()
	order, err := preflight(g)
	if err != nil {
		logger.Error("Workflow rejected before execution.", "error", err)
		return rejected(err), err
	}
	logger.Debug("Pre-flight checks passed.", "operations", len(order))

	sess, err := w.factory.NewSession(ctx, g, order, cfg)
	if err != nil {
		err = fmt.Errorf("creating session: %w", err)
		return rejected(err), err
	}
	defer func() {
		if cerr := sess.Close(ctx); cerr != nil {
			logger.Error("Failed to close session.", "error", cerr)
		}
	}()

	logger.Info("Starting run.", "operations", len(order), "workers", cfg.Workers, "policy", cfg.Policy.String())
	report := sess.GetExecutor().Execute(ctx)

	res := assemble(ctx, order, sess.GetStore(), report)
	logger.Info("Run finished.", "status", res.Status.String(), "executed", len(res.Executed), "failures", len(res.Failures), "intents", len(res.Intents))
	return res, res.Err
}

// preflight computes the run order and proves every input resolvable
// without invoking anything.
func preflight(g *graph.Graph) ([]*operation.Operation, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	// Check reads structure only, so no store is needed.
	check := builder.New(g, nil)
	for _, op := range order {
		if err := check.Check(op); err != nil {
			return nil, err
		}
	}
	return order, nil
}
