package graph

import (
	"container/heap"
	"slices"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// DetectCycle reports the first dependency cycle found, walking operations
// in insertion order. The error lists the cycle in data-flow direction.
func (g *Graph) DetectCycle() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.detectCycleLocked()
}

func (g *Graph) detectCycleLocked() error {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[*operation.Operation]int, len(g.ops))
	var stack []*operation.Operation

	// visit walks the dependency relation: from an operation to the
	// operations feeding it.
	var visit func(op *operation.Operation) error
	visit = func(op *operation.Operation) error {
		switch state[op] {
		case done:
			return nil
		case onStack:
			start := slices.Index(stack, op)
			cycle := slices.Clone(stack[start:])
			slices.Reverse(cycle)
			return &CyclicGraphError{Cycle: cycle}
		}

		state[op] = onStack
		stack = append(stack, op)
		for _, pred := range g.predecessorsLocked(op) {
			if err := visit(pred); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[op] = done
		return nil
	}

	for _, op := range g.ops {
		if err := visit(op); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every operation after all operations that feed
// it, directly or transitively. Among operations that are ready at the same
// time the earliest inserted comes first, so the order is reproducible.
func (g *Graph) TopologicalOrder() ([]*operation.Operation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	position := make(map[*operation.Operation]int, len(g.ops))
	for i, op := range g.ops {
		position[op] = i
	}

	pending := make([]int, len(g.ops))
	dependents := make([][]int, len(g.ops))
	for i, op := range g.ops {
		for _, pred := range g.predecessorsLocked(op) {
			p := position[pred]
			pending[i]++
			dependents[p] = append(dependents[p], i)
		}
	}

	ready := &indexHeap{}
	for i, n := range pending {
		if n == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]*operation.Operation, 0, len(g.ops))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, g.ops[i])
		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}

	if len(order) != len(g.ops) {
		return nil, g.detectCycleLocked()
	}
	return order, nil
}

// indexHeap is a min-heap of insertion positions.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
