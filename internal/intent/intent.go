// Package intent models renderable-result tags. A Template is declared once
// per operation type and binds some of its outputs to the roles a renderer
// expects; an Intent is the same declaration bound to the concrete values
// of one run. The engine never interprets a Kind.
package intent

import (
	"maps"
	"slices"
)

// Kind tags what a renderer should do with an intent. New kinds need no
// engine changes.
type Kind string

const (
	KindPlot  Kind = "plot"
	KindImage Kind = "image"
)

// Binding maps one output of the declaring operation to a renderer role.
type Binding struct {
	Output string
	Role   string
}

// Template is the declared form of an intent.
type Template struct {
	Kind     Kind
	Name     string
	Bindings []Binding
}

// New builds a template from an output->role map. Bindings are sorted by
// output name so the declaration is stable.
func New(kind Kind, name string, outputToRole map[string]string) Template {
	bindings := make([]Binding, 0, len(outputToRole))
	for _, out := range slices.Sorted(maps.Keys(outputToRole)) {
		bindings = append(bindings, Binding{Output: out, Role: outputToRole[out]})
	}
	return Template{Kind: kind, Name: name, Bindings: bindings}
}

// Plot declares a plot intent.
func Plot(name string, outputToRole map[string]string) Template {
	return New(KindPlot, name, outputToRole)
}

// Image declares an image intent.
func Image(name string, outputToRole map[string]string) Template {
	return New(KindImage, name, outputToRole)
}

// Outputs lists the output names the template reads, in binding order.
func (t Template) Outputs() []string {
	out := make([]string, len(t.Bindings))
	for i, b := range t.Bindings {
		out[i] = b.Output
	}
	return out
}

// Source identifies the operation instance an intent was materialized from.
type Source struct {
	OperationID string
	Operation   string
}

// Intent is a template bound to the values of one run.
type Intent struct {
	Kind   Kind
	Name   string
	Source Source
	// Values is keyed by role.
	Values map[string]any
}

// Materialize binds t against outputs. It reports false if any bound output
// is missing, in which case no intent is produced.
func Materialize(t Template, src Source, outputs map[string]any) (Intent, bool) {
	values := make(map[string]any, len(t.Bindings))
	for _, b := range t.Bindings {
		v, ok := outputs[b.Output]
		if !ok {
			return Intent{}, false
		}
		values[b.Role] = v
	}
	return Intent{Kind: t.Kind, Name: t.Name, Source: src, Values: values}, true
}
