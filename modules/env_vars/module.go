package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars outputs the process environment, optionally restricted to the
// variables whose names start with the prefix parameter.
var EnvVars = operation.MustDefine(operation.Descriptor{
	Name:       "env_vars",
	Outputs:    []string{"all"},
	Parameters: []operation.ParameterSpec{{Name: "prefix", Type: cty.String, Default: ""}},
}, func(_ context.Context, _, params operation.Values) ([]any, error) {
	prefix, _ := params["prefix"].(string)
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if ok && strings.HasPrefix(key, prefix) {
			envMap[key] = value
		}
	}
	return []any{envMap}, nil
})

// Register registers the env_vars type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(EnvVars)
}
