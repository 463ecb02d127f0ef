package operation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/opgraph/internal/intent"
)

// ID is the identity of one operation instance.
type ID string

// NewID returns a fresh random identity.
func NewID() ID {
	return ID(uuid.NewString())
}

// Operation is one instance of a Type. Two instances of the same type are
// distinct graph nodes and never share filled values or parameters.
type Operation struct {
	id    ID
	label string
	typ   *Type

	mu     sync.RWMutex
	filled Values
	params Values
}

// Option configures an instance at construction.
type Option func(*Operation)

// WithLabel sets a human-readable instance name, e.g. "square_a".
func WithLabel(label string) Option {
	return func(o *Operation) { o.label = label }
}

// WithID pins the identity, used when restoring a stored workflow.
func WithID(id ID) Option {
	return func(o *Operation) {
		if id != "" {
			o.id = id
		}
	}
}

// New creates an independent instance of t. Parameters start at their
// declared defaults.
func (t *Type) New(opts ...Option) *Operation {
	o := &Operation{
		id:     NewID(),
		typ:    t,
		filled: make(Values),
		params: make(Values, len(t.desc.Parameters)),
	}
	for _, p := range t.desc.Parameters {
		o.params[p.Name] = p.Default
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Operation) ID() ID { return o.id }
func (o *Operation) Label() string { return o.label }
func (o *Operation) Name() string { return o.typ.desc.Name }
func (o *Operation) Type() *Type { return o.typ }
func (o *Operation) Outputs() []string { return slices.Clone(o.typ.desc.Outputs) }

// Inputs returns the declared inputs in order.
func (o *Operation) Inputs() []InputSpec { return slices.Clone(o.typ.desc.Inputs) }

// Intents returns the intent templates declared by the operation type.
func (o *Operation) Intents() []intent.Template { return o.typ.desc.Intents }

// String identifies the instance in logs and errors.
func (o *Operation) String() string {
	if o == nil {
		return "<nil>"
	}
	if o.label != "" {
		return fmt.Sprintf("%s[%s]", o.typ.desc.Name, o.label)
	}
	short := string(o.id)
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s[%s]", o.typ.desc.Name, short)
}

// Input looks up a declared input.
func (o *Operation) Input(name string) (InputSpec, bool) {
	i, ok := o.typ.inputs[name]
	if !ok {
		return InputSpec{}, false
	}
	return o.typ.desc.Inputs[i], true
}

// HasOutput reports whether name is a declared output.
func (o *Operation) HasOutput(name string) bool {
	_, ok := o.typ.outputs[name]
	return ok
}

// Fill pins an input value. A filled value overrides both links and the
// declared default.
func (o *Operation) Fill(name string, value any) error {
	if _, ok := o.typ.inputs[name]; !ok {
		return &UnknownPortError{Op: o, Port: name, Direction: DirInput}
	}
	o.mu.Lock()
	o.filled[name] = value
	o.mu.Unlock()
	return nil
}

// Unfill removes a pinned value and reports whether one was set.
func (o *Operation) Unfill(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.filled[name]
	delete(o.filled, name)
	return ok
}

// FilledValue returns the pinned value for an input, if any.
func (o *Operation) FilledValue(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.filled[name]
	return v, ok
}

// FilledValues returns a copy of all pinned values.
func (o *Operation) FilledValues() Values {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.filled.Clone()
}

// ParameterSchema returns the declared parameters.
func (o *Operation) ParameterSchema() []ParameterSpec {
	return slices.Clone(o.typ.desc.Parameters)
}

// Parameter returns the current value of a parameter.
func (o *Operation) Parameter(name string) (any, error) {
	if _, ok := o.typ.params[name]; !ok {
		return nil, &UnknownParameterError{Op: o, Name: name}
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.params[name], nil
}

// SetParameter stores a parameter value. It is visible to the next
// invocation whose inputs are resolved after the write.
func (o *Operation) SetParameter(name string, value any) error {
	if _, ok := o.typ.params[name]; !ok {
		return &UnknownParameterError{Op: o, Name: name}
	}
	o.mu.Lock()
	o.params[name] = value
	o.mu.Unlock()
	return nil
}

// Parameters returns a copy of all parameter values.
func (o *Operation) Parameters() Values {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.params.Clone()
}

// Snapshot copies filled values and parameters under one lock so a run
// never observes half of a concurrent external update.
func (o *Operation) Snapshot() (filled, params Values) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.filled.Clone(), o.params.Clone()
}

// Invoke runs the computation against fully resolved inputs.
func (o *Operation) Invoke(ctx context.Context, inputs, params Values) (out Values, err error) {
	for _, in := range o.typ.desc.Inputs {
		if _, ok := inputs[in.Name]; !ok {
			return nil, &UnresolvedInputError{Op: o, Input: in.Name}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &InvocationError{Op: o, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	results, err := o.typ.fn(ctx, inputs.Clone(), params.Clone())
	if err != nil {
		return nil, &InvocationError{Op: o, Err: err}
	}

	declared := o.typ.desc.Outputs
	if len(results) != len(declared) {
		return nil, &ContractViolationError{Op: o, Declared: slices.Clone(declared), Got: len(results)}
	}

	out = make(Values, len(declared))
	for i, name := range declared {
		out[name] = results[i]
	}
	return out, nil
}
