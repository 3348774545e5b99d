package simp

import (
	"github.com/rhartert/yagh"
	"github.com/rhartert/yass/internal/sat"
)

// elimQueue is a priority queue of candidate variables for elimination,
// cheapest (smallest product of positive/negative occurrence counts) first,
// grounded on original_source's ElimQueue (src/sat/minisat/simp/elim_queue.rs).
// It reuses the same yagh.IntMap[float64] min-heap the VSIDS heuristic is
// built on (internal/sat/heuristic.go), here storing the cost directly
// rather than a negated activity since cheapest-first is already a min-heap
// order.
type elimQueue struct {
	heap  *yagh.IntMap[float64]
	nOcc  []int // indexed by Literal: occurrence count of that literal
	count int   // number of variables currently queued, yagh.IntMap exposes no Len
}

func newElimQueue() *elimQueue {
	return &elimQueue{heap: yagh.New[float64](0)}
}

// Len reports how many variables are currently queued for elimination.
func (q *elimQueue) Len() int { return q.count }

func (q *elimQueue) cost(v sat.Variable) float64 {
	pos := q.nOcc[sat.PositiveLiteral(v)]
	neg := q.nOcc[sat.NegativeLiteral(v)]
	return float64(pos) * float64(neg)
}

// Grow registers one more variable, initially with no occurrences.
func (q *elimQueue) Grow() {
	q.nOcc = append(q.nOcc, 0, 0)
	v := sat.Variable(len(q.nOcc)/2 - 1)
	q.heap.GrowBy(1)
	q.heap.Put(int(v), q.cost(v))
	q.count++
}

// BumpLitOcc adjusts lit's occurrence count by delta and reprioritizes its
// variable if still queued.
func (q *elimQueue) BumpLitOcc(lit sat.Literal, delta int) {
	q.nOcc[lit] += delta
	v := lit.VarID()
	if q.heap.Contains(int(v)) {
		q.heap.Put(int(v), q.cost(v))
	}
}

// Update reinserts v into contention (if it is eligible: undef, unfrozen,
// not yet eliminated) or reprioritizes it if already present. Elimination
// never needs to remove an ineligible variable from the heap explicitly —
// Pop still returns it and Simplificator.Eliminate skips it — so Update only
// ever inserts or re-prioritizes.
func (q *elimQueue) Update(v sat.Variable, eligible bool) {
	if !q.heap.Contains(int(v)) {
		if eligible {
			q.heap.Put(int(v), q.cost(v))
			q.count++
		}
		return
	}
	q.heap.Put(int(v), q.cost(v))
}

// Pop removes and returns the cheapest queued variable.
func (q *elimQueue) Pop() (sat.Variable, bool) {
	next, ok := q.heap.Pop()
	if !ok {
		return 0, false
	}
	q.count--
	return sat.Variable(next.Elem), true
}

// Clear drains every queued variable, used to abandon elimination on
// interrupt.
func (q *elimQueue) Clear() {
	for {
		if _, ok := q.Pop(); !ok {
			return
		}
	}
}
