package print

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Nil means stdout.
	Out io.Writer
}

// New returns the print type writing to out.
func New(out io.Writer) *operation.Type {
	return operation.MustDefine(operation.Descriptor{
		Name:    "print",
		Inputs:  []operation.InputSpec{operation.In("value", cty.DynamicPseudoType)},
		Outputs: []string{"value"},
	}, func(ctx context.Context, in, _ operation.Values) ([]any, error) {
		ctxlog.FromContext(ctx).Info("Printing input")
		v := in["value"]
		if err := write(out, v); err != nil {
			return nil, err
		}
		return []any{v}, nil
	})
}

func write(out io.Writer, v any) error {
	var err error
	switch val := v.(type) {
	case nil:
		_, err = fmt.Fprintln(out, "      (null)")
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(val)) {
			if _, err = fmt.Fprintf(out, "      %s = %v\n", k, val[k]); err != nil {
				break
			}
		}
	default:
		_, err = fmt.Fprintf(out, "      %v\n", val)
	}
	return err
}

// Register registers the print type.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.Register(New(out))
}
