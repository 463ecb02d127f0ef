package scheduler

import (
	"container/heap"
	"fmt"
	"slices"

	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/operation"
)

// Scheduler tracks dependency satisfaction for one run.
type Scheduler struct {
	order      []*operation.Operation
	position   map[*operation.Operation]int
	pending    []int
	dependents [][]int
	ready      positionHeap
	dispatched []bool
	removed    []bool
}

// New builds a scheduler over order, which must be a topological order of
// g's operations.
func New(g *graph.Graph, order []*operation.Operation) (*Scheduler, error) {
	s := &Scheduler{
		order:      order,
		position:   make(map[*operation.Operation]int, len(order)),
		pending:    make([]int, len(order)),
		dependents: make([][]int, len(order)),
		dispatched: make([]bool, len(order)),
		removed:    make([]bool, len(order)),
	}
	for i, op := range order {
		s.position[op] = i
	}

	for i, op := range order {
		preds, err := g.Predecessors(op)
		if err != nil {
			return nil, err
		}
		for _, pred := range preds {
			p, ok := s.position[pred]
			if !ok {
				return nil, fmt.Errorf("scheduler: %s depends on %s, which is not in the run order", op, pred)
			}
			if p >= i {
				return nil, fmt.Errorf("scheduler: order places %s before its dependency %s", op, pred)
			}
			s.pending[i]++
			s.dependents[p] = append(s.dependents[p], i)
		}
	}

	for i, n := range s.pending {
		if n == 0 {
			heap.Push(&s.ready, i)
		}
	}
	return s, nil
}

// Next returns the earliest ready operation and marks it dispatched.
func (s *Scheduler) Next() (*operation.Operation, bool) {
	for s.ready.Len() > 0 {
		i := heap.Pop(&s.ready).(int)
		if s.removed[i] {
			continue
		}
		s.dispatched[i] = true
		return s.order[i], true
	}
	return nil, false
}

// Done records that op completed successfully and releases its dependents.
func (s *Scheduler) Done(op *operation.Operation) {
	i, ok := s.position[op]
	if !ok {
		return
	}
	for _, d := range s.dependents[i] {
		s.pending[d]--
		if s.pending[d] == 0 && !s.removed[d] {
			heap.Push(&s.ready, d)
		}
	}
}

// Skip removes every transitive dependent of op that has not started and
// returns them in run order.
func (s *Scheduler) Skip(op *operation.Operation) []*operation.Operation {
	start, ok := s.position[op]
	if !ok {
		return nil
	}

	var hit []int
	queue := slices.Clone(s.dependents[start])
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if s.removed[d] || s.dispatched[d] {
			continue
		}
		s.removed[d] = true
		hit = append(hit, d)
		queue = append(queue, s.dependents[d]...)
	}
	return s.collect(hit)
}

// Drain removes every operation that has not started and returns them in
// run order.
func (s *Scheduler) Drain() []*operation.Operation {
	var hit []int
	for i := range s.order {
		if !s.dispatched[i] && !s.removed[i] {
			s.removed[i] = true
			hit = append(hit, i)
		}
	}
	return s.collect(hit)
}

// Remaining counts operations neither dispatched nor removed.
func (s *Scheduler) Remaining() int {
	n := 0
	for i := range s.order {
		if !s.dispatched[i] && !s.removed[i] {
			n++
		}
	}
	return n
}

// Position returns op's index in the run order, or -1.
func (s *Scheduler) Position(op *operation.Operation) int {
	if i, ok := s.position[op]; ok {
		return i
	}
	return -1
}

func (s *Scheduler) collect(idx []int) []*operation.Operation {
	slices.Sort(idx)
	out := make([]*operation.Operation, len(idx))
	for i, j := range idx {
		out[i] = s.order[j]
	}
	return out
}

// positionHeap is a min-heap of run-order positions.
type positionHeap []int

func (h positionHeap) Len() int           { return len(h) }
func (h positionHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h positionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *positionHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *positionHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
