package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks that every declared default, for inputs and parameters
// alike, is representable as its declared type. A mismatch here would only
// surface at run time inside an operation, so it is reported at startup.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, name := range r.Names() {
		t, _ := r.Lookup(name)
		desc := t.Descriptor()
		for _, in := range desc.Inputs {
			if !in.HasDefault {
				continue
			}
			if err := checkDefault(in.Type, in.Default); err != nil {
				errs = append(errs, fmt.Errorf("type %q: input %q: %w", name, in.Name, err))
			}
		}
		for _, p := range desc.Parameters {
			if err := checkDefault(p.Type, p.Default); err != nil {
				errs = append(errs, fmt.Errorf("type %q: parameter %q: %w", name, p.Name, err))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	logger.Debug("Registry validation passed.", "types", r.Len())
	return nil
}

func checkDefault(ty cty.Type, v any) error {
	if ty == cty.NilType || ty == cty.DynamicPseudoType || v == nil {
		return nil
	}
	if _, err := gocty.ToCtyValue(v, ty); err != nil {
		return fmt.Errorf("default %v does not fit %s: %w", v, ty.FriendlyName(), err)
	}
	return nil
}
