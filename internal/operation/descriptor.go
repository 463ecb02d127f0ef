package operation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/opgraph/internal/intent"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidDescriptor is returned by Define for malformed descriptors.
var ErrInvalidDescriptor = errors.New("invalid operation descriptor")

// InputSpec declares one named input.
type InputSpec struct {
	Name string
	// Type is informational for the engine; adapters use it to convert
	// externally supplied values. cty.DynamicPseudoType means "any".
	Type       cty.Type
	Default    any
	HasDefault bool
}

// In declares a required input.
func In(name string, ty cty.Type) InputSpec {
	return InputSpec{Name: name, Type: ty}
}

// InDefault declares an input that falls back to def when neither a filled
// value nor a link supplies it.
func InDefault(name string, ty cty.Type, def any) InputSpec {
	return InputSpec{Name: name, Type: ty, Default: def, HasDefault: true}
}

// ParameterSpec declares one externally editable setting. Constraints are
// stored and served verbatim; the engine never interprets them.
type ParameterSpec struct {
	Name        string
	Type        cty.Type
	Default     any
	Constraints map[string]any
}

// Descriptor is the static description of an operation type.
type Descriptor struct {
	Name        string
	Version     string
	DisplayName string
	Inputs      []InputSpec
	Outputs     []string
	Intents     []intent.Template
	Parameters  []ParameterSpec
}

// Func computes an operation's results. The returned slice is positional
// against Descriptor.Outputs. inputs and params are private copies.
type Func func(ctx context.Context, inputs, params Values) ([]any, error)

// Type pairs a validated Descriptor with its Func. It holds no per-instance
// state and may be shared freely.
type Type struct {
	desc    Descriptor
	fn      Func
	inputs  map[string]int
	outputs map[string]int
	params  map[string]int
}

// Define validates desc and returns the operation type.
func Define(desc Descriptor, fn Func) (*Type, error) {
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDescriptor)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s: func is required", ErrInvalidDescriptor, desc.Name)
	}

	desc.Inputs = slices.Clone(desc.Inputs)
	desc.Outputs = slices.Clone(desc.Outputs)
	desc.Intents = slices.Clone(desc.Intents)
	desc.Parameters = slices.Clone(desc.Parameters)

	t := &Type{
		desc:    desc,
		fn:      fn,
		inputs:  make(map[string]int, len(desc.Inputs)),
		outputs: make(map[string]int, len(desc.Outputs)),
		params:  make(map[string]int, len(desc.Parameters)),
	}
	for i, in := range desc.Inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: %s: input %d has no name", ErrInvalidDescriptor, desc.Name, i)
		}
		if _, dup := t.inputs[in.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate input %q", ErrInvalidDescriptor, desc.Name, in.Name)
		}
		if in.Type == cty.NilType {
			t.desc.Inputs[i].Type = cty.DynamicPseudoType
		}
		t.inputs[in.Name] = i
	}
	for i, out := range desc.Outputs {
		if out == "" {
			return nil, fmt.Errorf("%w: %s: output %d has no name", ErrInvalidDescriptor, desc.Name, i)
		}
		if _, dup := t.outputs[out]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate output %q", ErrInvalidDescriptor, desc.Name, out)
		}
		t.outputs[out] = i
	}
	for i, p := range desc.Parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: %s: parameter %d has no name", ErrInvalidDescriptor, desc.Name, i)
		}
		if _, dup := t.params[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate parameter %q", ErrInvalidDescriptor, desc.Name, p.Name)
		}
		t.params[p.Name] = i
	}
	for _, tmpl := range desc.Intents {
		outputs := make(map[string]bool, len(tmpl.Bindings))
		roles := make(map[string]bool, len(tmpl.Bindings))
		for _, b := range tmpl.Bindings {
			if _, ok := t.outputs[b.Output]; !ok {
				return nil, fmt.Errorf("%w: %s: intent %q binds undeclared output %q", ErrInvalidDescriptor, desc.Name, tmpl.Name, b.Output)
			}
			if outputs[b.Output] {
				return nil, fmt.Errorf("%w: %s: intent %q binds output %q twice", ErrInvalidDescriptor, desc.Name, tmpl.Name, b.Output)
			}
			// Materialize keys values by role, so a shared role would drop one.
			if roles[b.Role] {
				return nil, fmt.Errorf("%w: %s: intent %q binds role %q twice", ErrInvalidDescriptor, desc.Name, tmpl.Name, b.Role)
			}
			outputs[b.Output] = true
			roles[b.Role] = true
		}
	}
	return t, nil
}

// MustDefine is Define for package-level declarations; it panics on error.
func MustDefine(desc Descriptor, fn Func) *Type {
	t, err := Define(desc, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the logical type name.
func (t *Type) Name() string { return t.desc.Name }

// Descriptor returns the type's descriptor. Callers must not modify it.
func (t *Type) Descriptor() Descriptor { return t.desc }
