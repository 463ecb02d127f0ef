// Package arith provides small numeric operations. They are mostly useful
// for composing and testing workflows.
package arith

import (
	"context"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// unary wraps a float64 function of one input.
func unary(input string, fn func(float64) []any) operation.Func {
	return func(_ context.Context, in, _ operation.Values) ([]any, error) {
		n, err := in.Float(input)
		if err != nil {
			return nil, err
		}
		return fn(n), nil
	}
}

func num(name string) operation.InputSpec { return operation.In(name, cty.Number) }

var (
	Square = operation.MustDefine(operation.Descriptor{
		Name:    "square",
		Inputs:  []operation.InputSpec{num("n")},
		Outputs: []string{"square"},
	}, unary("n", func(n float64) []any { return []any{n * n} }))

	Sum = operation.MustDefine(operation.Descriptor{
		Name:    "sum",
		Inputs:  []operation.InputSpec{num("n1"), num("n2")},
		Outputs: []string{"sum"},
	}, func(_ context.Context, in, _ operation.Values) ([]any, error) {
		a, err := in.Float("n1")
		if err != nil {
			return nil, err
		}
		b, err := in.Float("n2")
		if err != nil {
			return nil, err
		}
		return []any{a + b}, nil
	})

	Negative = operation.MustDefine(operation.Descriptor{
		Name:    "negative",
		Inputs:  []operation.InputSpec{num("num")},
		Outputs: []string{"negative"},
	}, unary("num", func(n float64) []any { return []any{-n} }))

	DoubleAndTriple = operation.MustDefine(operation.Descriptor{
		Name:        "double_and_triple",
		DisplayName: "Double and triple",
		Inputs:      []operation.InputSpec{num("n")},
		Outputs:     []string{"double", "triple"},
	}, unary("n", func(n float64) []any { return []any{2 * n, 3 * n} }))

	// Increment, Decrement and Power share the port name n so they chain
	// with Graph.AutoConnect.
	Increment = operation.MustDefine(operation.Descriptor{
		Name:    "increment",
		Inputs:  []operation.InputSpec{num("n")},
		Outputs: []string{"n"},
	}, unary("n", func(n float64) []any { return []any{n + 1} }))

	Decrement = operation.MustDefine(operation.Descriptor{
		Name:    "decrement",
		Inputs:  []operation.InputSpec{num("n")},
		Outputs: []string{"n"},
	}, unary("n", func(n float64) []any { return []any{n - 1} }))

	Power = operation.MustDefine(operation.Descriptor{
		Name:    "power",
		Inputs:  []operation.InputSpec{num("n")},
		Outputs: []string{"n"},
	}, unary("n", func(n float64) []any { return []any{n * n} }))
)

// Register registers every arithmetic type.
func (m *Module) Register(r *registry.Registry) {
	for _, t := range []*operation.Type{Square, Sum, Negative, DoubleAndTriple, Increment, Decrement, Power} {
		r.Register(t)
	}
}
