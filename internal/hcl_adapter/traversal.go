package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/opgraph/internal/portref"
)

// refFromExpr reads a bare `label.port` traversal.
func refFromExpr(expr hcl.Expression) (portref.Ref, error) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return portref.Ref{}, fmt.Errorf("expected a reference of the form label.port: %w", diags)
	}
	if len(traversal) != 2 {
		return portref.Ref{}, fmt.Errorf("expected a reference of the form label.port, got %d segments", len(traversal))
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return portref.Ref{}, fmt.Errorf("expected a reference of the form label.port")
	}
	return portref.Parse(traversal.RootName() + "." + attr.Name)
}
