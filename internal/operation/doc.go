// Package operation defines the unit of work the engine composes.
//
// An operation type is described once by a static Descriptor (ordered
// inputs with declared cty types and optional defaults, ordered output
// names, intent templates and an optional parameter schema) and a Func that
// computes positional results. Define validates the pair and returns a
// Type; every call to Type.New yields an independent Operation instance
// with its own identity, filled values and parameter values.
//
// Instances are safe for concurrent use. Filled values and parameters are
// external-facing mutable state, so readers always receive copies, and
// Snapshot returns both under a single read lock.
package operation
