package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/task"
)

// Builder resolves tasks for one run.
type Builder struct {
	graph *graph.Graph
	store nodestore.Store
}

// New creates a builder reading links from g and upstream outputs from store.
func New(g *graph.Graph, store nodestore.Store) *Builder {
	return &Builder{graph: g, store: store}
}

// Check verifies, without reading any run state, that every input of op
// would resolve: it is filled, linked, or has a default.
func (b *Builder) Check(op *operation.Operation) error {
	filled := op.FilledValues()
	for _, in := range op.Inputs() {
		if _, ok := filled[in.Name]; ok {
			continue
		}
		if _, ok := b.graph.LinkTo(op, in.Name); ok {
			continue
		}
		if in.HasDefault {
			continue
		}
		return &operation.UnresolvedInputError{Op: op, Input: in.Name}
	}
	return nil
}

// Build resolves every input of op and snapshots its parameters.
func (b *Builder) Build(ctx context.Context, op *operation.Operation) (*task.Task, error) {
	logger := ctxlog.FromContext(ctx).With("operation", op.String())
	filled, params := op.Snapshot()

	t := &task.Task{
		Operation: op,
		Inputs:    make(operation.Values, len(op.Inputs())),
		Params:    params,
		Sources:   make(map[string]task.Source, len(op.Inputs())),
	}

	for _, in := range op.Inputs() {
		if v, ok := filled[in.Name]; ok {
			t.Inputs[in.Name] = v
			t.Sources[in.Name] = task.FromFilled
			continue
		}

		if link, ok := b.graph.LinkTo(op, in.Name); ok {
			v, found, err := b.linkedValue(ctx, link)
			if err != nil {
				return nil, err
			}
			if found {
				t.Inputs[in.Name] = v
				t.Sources[in.Name] = task.FromLink
				continue
			}
			logger.Debug("Linked source produced no value, falling back.", "input", in.Name, "link", link.String())
		}

		if in.HasDefault {
			t.Inputs[in.Name] = in.Default
			t.Sources[in.Name] = task.FromDefault
			continue
		}

		return nil, &operation.UnresolvedInputError{Op: op, Input: in.Name}
	}

	logger.Debug("Task built.", "inputs", len(t.Inputs))
	return t, nil
}

func (b *Builder) linkedValue(ctx context.Context, l graph.Link) (any, bool, error) {
	out, ok, err := b.store.GetOutput(ctx, l.Source.ID())
	if err != nil {
		return nil, false, fmt.Errorf("reading output of %s for link %s: %w", l.Source, l, err)
	}
	if !ok {
		return nil, false, nil
	}
	v, ok := out[l.SourceOutput]
	return v, ok, nil
}
