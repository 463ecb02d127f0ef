// Package toggle provides an operation whose only behaviour is driven by a
// parameter. It is the smallest example of the parameter API.
package toggle

import (
	"context"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Toggle outputs the current value of its test parameter.
var Toggle = operation.MustDefine(operation.Descriptor{
	Name:       "toggle",
	Outputs:    []string{"value"},
	Parameters: []operation.ParameterSpec{{Name: "test", Type: cty.Bool, Default: false}},
}, func(_ context.Context, _, params operation.Values) ([]any, error) {
	v, err := params.Bool("test")
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
})

// Register registers the toggle type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Toggle)
}
