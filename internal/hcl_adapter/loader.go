package hcl_adapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/opgraph/internal/config"
	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/ctyconv"
	"github.com/specialistvlad/opgraph/internal/fsutil"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/specialistvlad/opgraph/internal/workflow"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	registry  *registry.Registry
	converter *Converter
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader resolving operation types in reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{registry: reg, converter: NewConverter()}
}

// fileRoot is a struct used to decode all top-level blocks from any file.
type fileRoot struct {
	Name       *string           `hcl:"name,optional"`
	Operations []*operationBlock `hcl:"operation,block"`
	Links      []*linkBlock      `hcl:"link,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// operationBlock is `operation "type" "label" { ... }`. Attributes in the
// body fill inputs; an attribute referencing `other.output` links instead.
type operationBlock struct {
	Type       string       `hcl:"type,label"`
	Label      string       `hcl:"label,label"`
	Parameters *paramsBlock `hcl:"parameters,block"`
	Body       hcl.Body     `hcl:",remain"`
}

type paramsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// linkBlock is `link { from = a.out  to = b.in }`.
type linkBlock struct {
	From hcl.Expression `hcl:"from"`
	To   hcl.Expression `hcl:"to"`
}

// Load parses every .hcl file under paths, in the order found, into one
// workflow. Operations may link across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*workflow.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	roots := make([]*fileRoot, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		root, err := decodeRoot(hclFile, file)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return l.build(ctx, roots)
}

// Parse builds a workflow from a single in-memory source.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*workflow.Workflow, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	root, err := decodeRoot(hclFile, filename)
	if err != nil {
		return nil, err
	}
	return l.build(ctx, []*fileRoot{root})
}

func decodeRoot(f *hcl.File, filename string) (*fileRoot, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return &root, nil
}

func (l *Loader) build(ctx context.Context, roots []*fileRoot) (*workflow.Workflow, error) {
	logger := ctxlog.FromContext(ctx)

	name := "workflow"
	for _, root := range roots {
		if root.Name != nil {
			name = *root.Name
			break
		}
	}
	w := workflow.New(name)

	// Create every operation first so links may point forward or across
	// files.
	type declared struct {
		op    *operation.Operation
		block *operationBlock
	}
	var ops []declared
	for _, root := range roots {
		for _, b := range root.Operations {
			if _, exists := w.FindByLabel(b.Label); exists {
				return nil, fmt.Errorf("operation label %q is declared more than once", b.Label)
			}
			typ, err := l.registry.Lookup(b.Type)
			if err != nil {
				return nil, fmt.Errorf("operation %q: %w", b.Label, err)
			}
			op := typ.New(operation.WithLabel(b.Label))
			if err := w.AddOperation(op); err != nil {
				return nil, err
			}
			ops = append(ops, declared{op: op, block: b})
		}
	}

	for _, d := range ops {
		if err := l.applyInputs(w, d.op, d.block.Body); err != nil {
			return nil, fmt.Errorf("operation %q: %w", d.block.Label, err)
		}
		if d.block.Parameters != nil {
			if err := l.applyParameters(d.op, d.block.Parameters.Body); err != nil {
				return nil, fmt.Errorf("operation %q: %w", d.block.Label, err)
			}
		}
	}

	links := 0
	for _, root := range roots {
		for _, b := range root.Links {
			if err := addLink(w, b.From, b.To); err != nil {
				return nil, err
			}
			links++
		}
	}

	logger.Debug("HCL loading complete.", "workflow", name, "operations", w.Len(), "link_blocks", links, "links", len(w.Links()))
	return w, nil
}

// inSourceOrder returns attrs sorted by their position in the file.
func inSourceOrder(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *hcl.Attribute) int { return a.Range.Start.Byte - b.Range.Start.Byte })
	return out
}

// inputSchema accepts one optional attribute per declared input next to
// the parameters block, which gohcl has already decoded.
func inputSchema(op *operation.Operation) *hcl.BodySchema {
	inputs := op.Inputs()
	schema := &hcl.BodySchema{
		Attributes: make([]hcl.AttributeSchema, 0, len(inputs)),
		Blocks:     []hcl.BlockHeaderSchema{{Type: "parameters"}},
	}
	for _, in := range inputs {
		schema.Attributes = append(schema.Attributes, hcl.AttributeSchema{Name: in.Name})
	}
	return schema
}

func (l *Loader) applyInputs(w *workflow.Workflow, op *operation.Operation, body hcl.Body) error {
	content, diags := body.Content(inputSchema(op))
	if diags.HasErrors() {
		return diags
	}
	for _, attr := range inSourceOrder(content.Attributes) {
		spec, _ := op.Input(attr.Name)

		if len(attr.Expr.Variables()) > 0 {
			ref, err := refFromExpr(attr.Expr)
			if err != nil {
				return fmt.Errorf("input %q: %w", attr.Name, err)
			}
			src, err := ref.Resolve(w.Graph)
			if err != nil {
				return fmt.Errorf("input %q: %w", attr.Name, err)
			}
			if _, err := w.AddLink(src, ref.Port, op, attr.Name); err != nil {
				return err
			}
			continue
		}

		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("input %q: %w", attr.Name, diags)
		}
		native, err := ctyconv.Convert(val, spec.Type)
		if err != nil {
			return fmt.Errorf("input %q: %w", attr.Name, err)
		}
		if err := op.Fill(attr.Name, native); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) applyParameters(op *operation.Operation, body hcl.Body) error {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	schema := op.ParameterSchema()
	for _, attr := range inSourceOrder(attrs) {
		idx := slices.IndexFunc(schema, func(p operation.ParameterSpec) bool { return p.Name == attr.Name })
		if idx < 0 {
			return &operation.UnknownParameterError{Op: op, Name: attr.Name}
		}
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("parameter %q: %w", attr.Name, diags)
		}
		native, err := ctyconv.Convert(val, schema[idx].Type)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", attr.Name, err)
		}
		if err := op.SetParameter(attr.Name, native); err != nil {
			return err
		}
	}
	return nil
}

func addLink(w *workflow.Workflow, fromExpr, toExpr hcl.Expression) error {
	from, err := refFromExpr(fromExpr)
	if err != nil {
		return fmt.Errorf("link %s: from: %w", fromExpr.Range(), err)
	}
	to, err := refFromExpr(toExpr)
	if err != nil {
		return fmt.Errorf("link %s: to: %w", toExpr.Range(), err)
	}
	src, err := from.Resolve(w.Graph)
	if err != nil {
		return fmt.Errorf("link %s -> %s: %w", from, to, err)
	}
	dst, err := to.Resolve(w.Graph)
	if err != nil {
		return fmt.Errorf("link %s -> %s: %w", from, to, err)
	}
	if _, err := w.AddLink(src, from.Port, dst, to.Port); err != nil {
		return fmt.Errorf("link %s -> %s: %w", from, to, err)
	}
	return nil
}
