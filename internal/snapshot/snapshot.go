package snapshot

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/opgraph/internal/ctyconv"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/specialistvlad/opgraph/internal/workflow"
)

// Version is the snapshot format version written by Encode.
const Version = 1

// ErrUnsupportedVersion is returned when decoding a snapshot written by a
// newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Operation is one serialized operation instance.
type Operation struct {
	ID         string         `msgpack:"id"`
	Type       string         `msgpack:"type"`
	Label      string         `msgpack:"label,omitempty"`
	Filled     map[string]any `msgpack:"filled,omitempty"`
	Parameters map[string]any `msgpack:"parameters,omitempty"`
}

// Link is one serialized link, referring to operations by ID.
type Link struct {
	Source       string `msgpack:"source"`
	SourceOutput string `msgpack:"source_output"`
	Dest         string `msgpack:"dest"`
	DestInput    string `msgpack:"dest_input"`
}

// Snapshot is the serializable form of a workflow's structure.
type Snapshot struct {
	Version    int         `msgpack:"version"`
	Name       string      `msgpack:"name"`
	Operations []Operation `msgpack:"operations"`
	Links      []Link      `msgpack:"links"`
}

// Capture records w's current structure. Filled values and parameters are
// read under each operation's lock, one operation at a time, and normalized
// through their declared types.
func Capture(w *workflow.Workflow) (*Snapshot, error) {
	s := &Snapshot{Version: Version, Name: w.Name()}
	for _, op := range w.Operations() {
		filled, params := op.Snapshot()
		filled, err := normalizeFilled(op, filled)
		if err != nil {
			return nil, fmt.Errorf("capturing operation %s: %w", op, err)
		}
		params, err = normalizeParameters(op, params)
		if err != nil {
			return nil, fmt.Errorf("capturing operation %s: %w", op, err)
		}
		s.Operations = append(s.Operations, Operation{
			ID:         string(op.ID()),
			Type:       op.Name(),
			Label:      op.Label(),
			Filled:     nonEmpty(filled),
			Parameters: nonEmpty(params),
		})
	}
	for _, l := range w.Links() {
		s.Links = append(s.Links, Link{
			Source:       string(l.Source.ID()),
			SourceOutput: l.SourceOutput,
			Dest:         string(l.Dest.ID()),
			DestInput:    l.DestInput,
		})
	}
	return s, nil
}

func nonEmpty(v operation.Values) map[string]any {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Restore rebuilds a workflow from s, resolving operation types in reg.
// Operations keep their recorded identities.
func Restore(s *Snapshot, reg *registry.Registry) (*workflow.Workflow, error) {
	if s.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	w := workflow.New(s.Name)
	for _, rec := range s.Operations {
		typ, err := reg.Lookup(rec.Type)
		if err != nil {
			return nil, fmt.Errorf("restoring operation %s: %w", rec.ID, err)
		}
		op := typ.New(operation.WithID(operation.ID(rec.ID)), operation.WithLabel(rec.Label))
		filled, err := normalizeFilled(op, rec.Filled)
		if err != nil {
			return nil, fmt.Errorf("restoring operation %s: %w", op, err)
		}
		params, err := normalizeParameters(op, rec.Parameters)
		if err != nil {
			return nil, fmt.Errorf("restoring operation %s: %w", op, err)
		}
		for name, v := range filled {
			if err := op.Fill(name, v); err != nil {
				return nil, fmt.Errorf("restoring operation %s: %w", op, err)
			}
		}
		for name, v := range params {
			if err := op.SetParameter(name, v); err != nil {
				return nil, fmt.Errorf("restoring operation %s: %w", op, err)
			}
		}
		if err := w.AddOperation(op); err != nil {
			return nil, err
		}
	}
	for _, rec := range s.Links {
		src, ok := w.Operation(operation.ID(rec.Source))
		if !ok {
			return nil, fmt.Errorf("restoring link: source %s: %w", rec.Source, graph.ErrUnknownOperation)
		}
		dst, ok := w.Operation(operation.ID(rec.Dest))
		if !ok {
			return nil, fmt.Errorf("restoring link: destination %s: %w", rec.Dest, graph.ErrUnknownOperation)
		}
		if _, err := w.AddLink(src, rec.SourceOutput, dst, rec.DestInput); err != nil {
			return nil, fmt.Errorf("restoring link: %w", err)
		}
	}
	return w, nil
}

// normalizeFilled converts each filled value to the plain form of its
// input's declared type.
func normalizeFilled(op *operation.Operation, vals map[string]any) (operation.Values, error) {
	out := make(operation.Values, len(vals))
	for name, v := range vals {
		spec, ok := op.Input(name)
		if !ok {
			return nil, &operation.UnknownPortError{Op: op, Port: name, Direction: operation.DirInput}
		}
		n, err := ctyconv.Normalize(v, spec.Type)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

func normalizeParameters(op *operation.Operation, vals map[string]any) (operation.Values, error) {
	schema := op.ParameterSchema()
	out := make(operation.Values, len(vals))
	for name, v := range vals {
		idx := slices.IndexFunc(schema, func(p operation.ParameterSpec) bool { return p.Name == name })
		if idx < 0 {
			return nil, &operation.UnknownParameterError{Op: op, Name: name}
		}
		n, err := ctyconv.Normalize(v, schema[idx].Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
