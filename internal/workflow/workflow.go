package workflow

import (
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/localsession"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/session"
)

// Workflow is a runnable graph.
type Workflow struct {
	*graph.Graph
	name    string
	factory session.SessionFactory
}

// New creates an empty workflow that runs in-process.
func New(name string) *Workflow {
	return &Workflow{
		Graph:   graph.New(),
		name:    name,
		factory: &localsession.SessionFactory{},
	}
}

// Name returns the name given to New.
func (w *Workflow) Name() string { return w.name }

// ParameterSchema returns the parameters declared by a member operation.
func (w *Workflow) ParameterSchema(op *operation.Operation) ([]operation.ParameterSpec, error) {
	if !w.Contains(op) {
		return nil, &graph.UnknownOperationError{Op: op}
	}
	return op.ParameterSchema(), nil
}

// ParameterValue returns the current value of one parameter.
func (w *Workflow) ParameterValue(op *operation.Operation, name string) (any, error) {
	if !w.Contains(op) {
		return nil, &graph.UnknownOperationError{Op: op}
	}
	return op.Parameter(name)
}

// SetParameterValue changes a parameter. A run that is already executing
// sees the new value only if the operation has not resolved its inputs yet.
func (w *Workflow) SetParameterValue(op *operation.Operation, name string, value any) error {
	if !w.Contains(op) {
		return &graph.UnknownOperationError{Op: op}
	}
	return op.SetParameter(name, value)
}
