package config

import (
	"context"

	"github.com/specialistvlad/opgraph/internal/workflow"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific workflow loader.
type Loader interface {
	// Load reads every workflow file found under paths and assembles them
	// into one workflow.
	Load(ctx context.Context, paths ...string) (*workflow.Workflow, error)
}

// Converter bridges externally written values and the native Go values
// operations receive.
type Converter interface {
	// ParseValue reads a value written in the source format (for example on
	// the command line) and converts it to ty.
	ParseValue(raw string, ty cty.Type) (any, error)

	// ToCtyValue converts a native Go value into its cty equivalent.
	ToCtyValue(v any) (cty.Value, error)
}
