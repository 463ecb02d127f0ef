// Package localsession provides the in-process implementation of the
// session.Session and session.SessionFactory interfaces.
package localsession

import (
	"context"
	"fmt"

	"github.com/specialistvlad/opgraph/internal/builder"
	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/inmemorystore"
	"github.com/specialistvlad/opgraph/internal/localexecutor"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/scheduler"
	"github.com/specialistvlad/opgraph/internal/session"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession wires a fresh store, builder, scheduler and executor for one
// run of g in the given order.
func (f *SessionFactory) NewSession(
	ctx context.Context,
	g *graph.Graph,
	order []*operation.Operation,
	cfg executor.Config,
) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Creating local session.", "operations", len(order), "workers", cfg.Workers)

	store := inmemorystore.New()
	sched, err := scheduler.New(g, order)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	exec := localexecutor.New(sched, builder.New(g, store), store, len(order), cfg)

	return &Session{executor: exec, store: store}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	executor executor.Executor
	store    nodestore.Store
}

// GetExecutor returns the executor wired by the factory.
func (s *Session) GetExecutor() executor.Executor {
	return s.executor
}

// GetStore returns the run's in-memory state.
func (s *Session) GetStore() nodestore.Store {
	return s.store
}

// Close is a no-op; in-memory state is released with the session.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Local session closed.")
	return nil
}
