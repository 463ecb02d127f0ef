package portref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/operation"
)

// segmentRegex matches a label or a port name.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Ref names one port of one labelled operation.
type Ref struct {
	Label string
	Port  string
}

func (r Ref) String() string { return r.Label + "." + r.Port }

// Parse reads `label.port`.
func Parse(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("port reference cannot be empty")
	}
	label, port, ok := strings.Cut(raw, ".")
	if !ok {
		return Ref{}, fmt.Errorf("port reference %q must have the form label.port", raw)
	}
	for _, seg := range []string{label, port} {
		if !segmentRegex.MatchString(seg) {
			return Ref{}, fmt.Errorf("invalid segment %q in port reference %q", seg, raw)
		}
	}
	return Ref{Label: label, Port: port}, nil
}

// Assignment is a Ref paired with a raw value.
type Assignment struct {
	Ref   Ref
	Value string
}

// ParseAssignment reads `label.port=value`. The value may be empty.
func ParseAssignment(raw string) (Assignment, error) {
	lhs, value, ok := strings.Cut(raw, "=")
	if !ok {
		return Assignment{}, fmt.Errorf("assignment %q must have the form label.port=value", raw)
	}
	ref, err := Parse(strings.TrimSpace(lhs))
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Ref: ref, Value: value}, nil
}

// Resolve finds the operation carrying r's label in g.
func (r Ref) Resolve(g *graph.Graph) (*operation.Operation, error) {
	op, ok := g.FindByLabel(r.Label)
	if !ok {
		return nil, fmt.Errorf("no operation labelled %q: %w", r.Label, graph.ErrUnknownOperation)
	}
	return op, nil
}
