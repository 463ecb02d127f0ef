package operation

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPort       = errors.New("unknown port")
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrUnresolvedInput   = errors.New("unresolved input")
	ErrContractViolation = errors.New("operation contract violation")
)

// Direction says which side of an operation a port is on.
type Direction string

const (
	DirInput  Direction = "input"
	DirOutput Direction = "output"
)

// UnknownPortError reports a port name the operation does not declare.
type UnknownPortError struct {
	Op        *Operation
	Port      string
	Direction Direction
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("operation %s has no %s %q", e.Op, e.Direction, e.Port)
}

func (e *UnknownPortError) Unwrap() error { return ErrUnknownPort }

// UnknownParameterError reports a parameter name outside the schema.
type UnknownParameterError struct {
	Op   *Operation
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("operation %s has no parameter %q", e.Op, e.Name)
}

func (e *UnknownParameterError) Unwrap() error { return ErrUnknownParameter }

// UnresolvedInputError names an input that has no filled value, no link
// and no default.
type UnresolvedInputError struct {
	Op    *Operation
	Input string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("operation %s: input %q is unresolved", e.Op, e.Input)
}

func (e *UnresolvedInputError) Unwrap() error { return ErrUnresolvedInput }

// ContractViolationError reports a result count that does not match the
// declared outputs.
type ContractViolationError struct {
	Op       *Operation
	Declared []string
	Got      int
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("operation %s returned %d values, declared %d outputs %v", e.Op, e.Got, len(e.Declared), e.Declared)
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// InvocationError wraps a failure raised by an operation's own computation.
type InvocationError struct {
	Op  *Operation
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
