package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// ErrUnknownType is returned when a name has no registered type.
var ErrUnknownType = errors.New("unknown operation type")

// Module is the interface that all built-in modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps type names to operation types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*operation.Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]*operation.Type)}
}

// Register adds t under its descriptor name. Registering a name twice is a
// programming error and panics.
func (r *Registry) Register(t *operation.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name()]; exists {
		panic(fmt.Sprintf("operation type with name '%s' already registered", t.Name()))
	}
	r.types[t.Name()] = t
}

// RegisterModules lets every module register its types.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*operation.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
