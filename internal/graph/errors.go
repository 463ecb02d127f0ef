package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/opgraph/internal/operation"
)

var (
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrDuplicateLink      = errors.New("duplicate link")
	ErrUnknownLink        = errors.New("unknown link")
	ErrCyclicGraph        = errors.New("cyclic graph")
)

// DuplicateOperationError is returned when an instance is added twice.
type DuplicateOperationError struct {
	Op *operation.Operation
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("operation %s is already in the graph", e.Op)
}

func (e *DuplicateOperationError) Unwrap() error { return ErrDuplicateOperation }

// UnknownOperationError is returned when an operation is not a member.
type UnknownOperationError struct {
	Op *operation.Operation
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("operation %s is not in the graph", e.Op)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }

// DuplicateLinkError is returned when a destination input is already fed.
type DuplicateLinkError struct {
	Link     Link
	Existing Link
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("link %s rejected: input already fed by %s", e.Link, e.Existing)
}

func (e *DuplicateLinkError) Unwrap() error { return ErrDuplicateLink }

// CyclicGraphError names the operations on a dependency cycle in path
// order; the first operation is repeated implicitly at the end.
type CyclicGraphError struct {
	Cycle []*operation.Operation
}

func (e *CyclicGraphError) Error() string {
	names := make([]string, 0, len(e.Cycle)+1)
	for _, op := range e.Cycle {
		names = append(names, op.String())
	}
	if len(e.Cycle) > 0 {
		names = append(names, e.Cycle[0].String())
	}
	return "cycle: " + strings.Join(names, " -> ")
}

func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }
