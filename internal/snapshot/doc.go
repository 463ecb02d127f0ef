// Package snapshot serializes the structure of a workflow: its operations
// with their identities, labels, filled values and parameter values, plus
// the links between them. Run results are not part of a snapshot.
//
// The encoding is MessagePack, optionally compressed with zstd. Filled
// values and parameters are normalized through their declared types on
// Capture and again on Restore: numbers become float64, sequences []any and
// maps or objects map[string]any. A value filled as int(3) or []float64
// therefore comes back as float64(3) or []any.
package snapshot
