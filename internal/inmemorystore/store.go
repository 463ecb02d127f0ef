// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// # Concurrency Model
//
// Each kind of state lives in its own sync.Map keyed by operation ID.
// The key space is known up front and every operation writes only its own
// keys, which is the access pattern sync.Map is built for. Output slots use
// LoadOrStore so that a slot is written exactly once.
package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
)

// Store is an in-memory implementation of nodestore.Store.
type Store struct {
	states  sync.Map // operation.ID -> nodestore.Status
	inputs  sync.Map // operation.ID -> operation.Values
	outputs sync.Map // operation.ID -> operation.Values
	errors  sync.Map // operation.ID -> error
}

// New creates a new, empty store.
func New() *Store {
	return &Store{}
}

var _ nodestore.Store = (*Store)(nil)

// SetStatus updates the status of one operation.
func (s *Store) SetStatus(ctx context.Context, id operation.ID, status nodestore.Status) error {
	s.states.Store(id, status)
	return nil
}

// GetStatus returns nodestore.StatusPending if no status was set.
func (s *Store) GetStatus(ctx context.Context, id operation.ID) (nodestore.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return nodestore.StatusPending, nil
	}
	return status.(nodestore.Status), nil
}

// SetInputs stores a copy of the resolved inputs.
func (s *Store) SetInputs(ctx context.Context, id operation.ID, inputs operation.Values) error {
	s.inputs.Store(id, inputs.Clone())
	return nil
}

// GetInputs returns a copy of the resolved inputs.
func (s *Store) GetInputs(ctx context.Context, id operation.ID) (operation.Values, error) {
	v, ok := s.inputs.Load(id)
	if !ok {
		return nil, nil
	}
	return v.(operation.Values).Clone(), nil
}

// SetOutput stores the outputs of one operation exactly once.
func (s *Store) SetOutput(ctx context.Context, id operation.ID, outputs operation.Values) error {
	if _, loaded := s.outputs.LoadOrStore(id, outputs.Clone()); loaded {
		return fmt.Errorf("operation %s: %w", id, nodestore.ErrOutputWritten)
	}
	return nil
}

// GetOutput returns a copy of the recorded outputs.
func (s *Store) GetOutput(ctx context.Context, id operation.ID) (operation.Values, bool, error) {
	v, ok := s.outputs.Load(id)
	if !ok {
		return nil, false, nil
	}
	return v.(operation.Values).Clone(), true, nil
}

// SetError records the error of one operation.
func (s *Store) SetError(ctx context.Context, id operation.ID, opErr error) error {
	s.errors.Store(id, opErr)
	return nil
}

// GetError returns the recorded error, if any.
func (s *Store) GetError(ctx context.Context, id operation.ID) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}
