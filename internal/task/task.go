// Package task defines the unit handed from the builder to the executor.
package task

import "github.com/specialistvlad/opgraph/internal/operation"

// Source records which rule supplied an input value.
type Source int

const (
	FromFilled Source = iota
	FromLink
	FromDefault
)

func (s Source) String() string {
	switch s {
	case FromFilled:
		return "filled"
	case FromLink:
		return "link"
	case FromDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Task represents an operation that is fully prepared for invocation.
// Inputs and Params are snapshots taken at build time; later external
// writes to the operation do not change them.
type Task struct {
	Operation *operation.Operation

	// Inputs contains one value for every declared input.
	Inputs operation.Values

	// Params is the parameter snapshot taken together with the filled values.
	Params operation.Values

	// Sources says where each input came from.
	Sources map[string]Source
}
