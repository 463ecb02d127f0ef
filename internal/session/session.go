// Package session defines the core interfaces for creating and managing one
// execution run. It abstracts away the details of where the run's state
// lives and how its operations are dispatched.
package session

import (
	"context"

	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
)

// SessionFactory creates an execution Session for a validated graph and its
// run order.
type SessionFactory interface {
	NewSession(
		ctx context.Context,
		g *graph.Graph,
		order []*operation.Operation,
		cfg executor.Config,
	) (Session, error)
}

// Session represents a single execution run and manages its lifecycle.
type Session interface {
	GetExecutor() executor.Executor
	// GetStore exposes the run's state once the executor has finished.
	GetStore() nodestore.Store
	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}
