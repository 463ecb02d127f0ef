package graph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// Graph is a set of operation instances plus the links between them.
type Graph struct {
	mu      sync.RWMutex
	ops     []*operation.Operation
	byID    map[operation.ID]*operation.Operation
	links   []Link
	inbound map[port]Link
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:    make(map[operation.ID]*operation.Operation),
		inbound: make(map[port]Link),
	}
}

// AddOperation inserts op. Adding the same instance, or another instance
// carrying the same identity, fails with DuplicateOperationError.
func (g *Graph) AddOperation(op *operation.Operation) error {
	if op == nil {
		return fmt.Errorf("graph: nil operation")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byID[op.ID()]; exists {
		return &DuplicateOperationError{Op: op}
	}
	g.byID[op.ID()] = op
	g.ops = append(g.ops, op)
	return nil
}

// AddOperations inserts ops in order and stops at the first failure.
func (g *Graph) AddOperations(ops ...*operation.Operation) error {
	for _, op := range ops {
		if err := g.AddOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// RemoveOperation removes op and every link incident to it.
func (g *Graph) RemoveOperation(op *operation.Operation) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.containsLocked(op) {
		return &UnknownOperationError{Op: op}
	}
	delete(g.byID, op.ID())
	g.ops = slices.DeleteFunc(g.ops, func(o *operation.Operation) bool { return o == op })
	g.links = slices.DeleteFunc(g.links, func(l Link) bool {
		if l.Source == op || l.Dest == op {
			delete(g.inbound, l.destPort())
			return true
		}
		return false
	})
	return nil
}

// Contains reports whether this exact instance is a member.
func (g *Graph) Contains(op *operation.Operation) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.containsLocked(op)
}

func (g *Graph) containsLocked(op *operation.Operation) bool {
	if op == nil {
		return false
	}
	member, ok := g.byID[op.ID()]
	return ok && member == op
}

// Operation looks up a member by identity.
func (g *Graph) Operation(id operation.ID) (*operation.Operation, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	op, ok := g.byID[id]
	return op, ok
}

// FindByLabel returns the first member, in insertion order, with the given
// label.
func (g *Graph) FindByLabel(label string) (*operation.Operation, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, op := range g.ops {
		if op.Label() == label {
			return op, true
		}
	}
	return nil, false
}

// Operations returns the members in insertion order.
func (g *Graph) Operations() []*operation.Operation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.ops)
}

// Len returns the number of operations.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.ops)
}

// AddLink connects src.srcOut to dst.dstIn. Both operations must be
// members and both ports must be declared. On any error the graph is left
// unchanged.
func (g *Graph) AddLink(src *operation.Operation, srcOut string, dst *operation.Operation, dstIn string) (Link, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLinkLocked(Link{Source: src, SourceOutput: srcOut, Dest: dst, DestInput: dstIn})
}

func (g *Graph) addLinkLocked(l Link) (Link, error) {
	if !g.containsLocked(l.Source) {
		return Link{}, &UnknownOperationError{Op: l.Source}
	}
	if !g.containsLocked(l.Dest) {
		return Link{}, &UnknownOperationError{Op: l.Dest}
	}
	if !l.Source.HasOutput(l.SourceOutput) {
		return Link{}, &operation.UnknownPortError{Op: l.Source, Port: l.SourceOutput, Direction: operation.DirOutput}
	}
	if _, ok := l.Dest.Input(l.DestInput); !ok {
		return Link{}, &operation.UnknownPortError{Op: l.Dest, Port: l.DestInput, Direction: operation.DirInput}
	}
	if l.Source == l.Dest {
		return Link{}, &CyclicGraphError{Cycle: []*operation.Operation{l.Source}}
	}
	if existing, ok := g.inbound[l.destPort()]; ok {
		return Link{}, &DuplicateLinkError{Link: l, Existing: existing}
	}

	g.links = append(g.links, l)
	g.inbound[l.destPort()] = l
	return l, nil
}

// RemoveLink deletes l.
func (g *Graph) RemoveLink(l Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := slices.Index(g.links, l)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLink, l)
	}
	g.links = slices.Delete(g.links, idx, idx+1)
	delete(g.inbound, l.destPort())
	return nil
}

// Links returns every link in insertion order.
func (g *Graph) Links() []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.links)
}

// LinkTo returns the link feeding op's input, if any.
func (g *Graph) LinkTo(op *operation.Operation, input string) (Link, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if op == nil {
		return Link{}, false
	}
	l, ok := g.inbound[port{op: op.ID(), input: input}]
	return l, ok
}

// LinksTo returns the links whose destination is op.
func (g *Graph) LinksTo(op *operation.Operation) []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Link
	for _, l := range g.links {
		if l.Dest == op {
			out = append(out, l)
		}
	}
	return out
}

// LinksFrom returns the links whose source is op.
func (g *Graph) LinksFrom(op *operation.Operation) []Link {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Link
	for _, l := range g.links {
		if l.Source == op {
			out = append(out, l)
		}
	}
	return out
}

// Predecessors returns the distinct operations op reads from.
func (g *Graph) Predecessors(op *operation.Operation) ([]*operation.Operation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.containsLocked(op) {
		return nil, &UnknownOperationError{Op: op}
	}
	return g.predecessorsLocked(op), nil
}

// Successors returns the distinct operations that read from op.
func (g *Graph) Successors(op *operation.Operation) ([]*operation.Operation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.containsLocked(op) {
		return nil, &UnknownOperationError{Op: op}
	}
	var out []*operation.Operation
	for _, l := range g.links {
		if l.Source == op && !slices.Contains(out, l.Dest) {
			out = append(out, l.Dest)
		}
	}
	return out, nil
}

func (g *Graph) predecessorsLocked(op *operation.Operation) []*operation.Operation {
	var out []*operation.Operation
	for _, l := range g.links {
		if l.Dest == op && !slices.Contains(out, l.Source) {
			out = append(out, l.Source)
		}
	}
	return out
}

// AutoConnect links each operation to the next one in insertion order,
// feeding every output into the same-named input when that input is not
// already linked. It returns the links it created.
func (g *Graph) AutoConnect() []Link {
	g.mu.Lock()
	defer g.mu.Unlock()

	var created []Link
	for i := 1; i < len(g.ops); i++ {
		prev, cur := g.ops[i-1], g.ops[i]
		for _, out := range prev.Outputs() {
			if _, ok := cur.Input(out); !ok {
				continue
			}
			l, err := g.addLinkLocked(Link{Source: prev, SourceOutput: out, Dest: cur, DestInput: out})
			if err != nil {
				// Already fed; an explicit link wins.
				continue
			}
			created = append(created, l)
		}
	}
	return created
}

// Clear removes every operation and link.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = nil
	g.links = nil
	g.byID = make(map[operation.ID]*operation.Operation)
	g.inbound = make(map[port]Link)
}

// Clone returns a structural copy sharing the same operation instances.
// A run works on a clone so that edits made while it executes do not
// affect it.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c := &Graph{
		ops:     slices.Clone(g.ops),
		byID:    make(map[operation.ID]*operation.Operation, len(g.byID)),
		links:   slices.Clone(g.links),
		inbound: make(map[port]Link, len(g.inbound)),
	}
	for id, op := range g.byID {
		c.byID[id] = op
	}
	for p, l := range g.inbound {
		c.inbound[p] = l
	}
	return c
}
