// Package graph holds operation instances and the links between them.
//
// A Graph is purely structural: it validates ports on insertion, keeps
// operations and links in insertion order, answers predecessor and
// successor queries, detects cycles and computes a deterministic
// topological order. It has no execution semantics; see package workflow.
//
// Operations are identified by instance, never by type name. Removing an
// operation removes every link that touches it. Every destination input
// can be fed by at most one link; a second link to the same input is a
// DuplicateLinkError rather than a silent overwrite.
//
// All methods are safe for concurrent use.
package graph
