package testutil

import (
	"context"
	"errors"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// FailModule registers a "fail" type whose invocation always returns an
// error carrying its message input.
type FailModule struct{}

// Register registers the fail type.
func (FailModule) Register(r *registry.Registry) {
	r.Register(operation.MustDefine(operation.Descriptor{
		Name: "fail",
		Inputs: []operation.InputSpec{
			operation.InDefault("message", cty.String, "failed on purpose"),
			operation.InDefault("after", cty.DynamicPseudoType, nil),
		},
		Outputs: []string{"id"},
	}, func(_ context.Context, in, _ operation.Values) ([]any, error) {
		msg, _ := in["message"].(string)
		return nil, errors.New(msg)
	}))
}
