package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/opgraph/internal/config"
	"github.com/specialistvlad/opgraph/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface.
type Converter struct{}

var _ config.Converter = (*Converter)(nil)

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	return ctyconv.FromNative(v)
}

// ParseValue reads raw as an HCL literal expression such as `3`, `true` or
// `[1, 2]`. Text that is not a valid literal is taken as a plain string, so
// `-set greet.name=world` needs no quoting.
func (c *Converter) ParseValue(raw string, ty cty.Type) (any, error) {
	val := cty.StringVal(raw)
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "value", hcl.InitialPos)
	if !diags.HasErrors() && len(expr.Variables()) == 0 {
		if v, diags := expr.Value(nil); !diags.HasErrors() {
			val = v
		}
	}
	return ctyconv.Convert(val, ty)
}
