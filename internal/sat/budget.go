package sat

import "sync/atomic"

// Budget tracks the resource limits the search loop is checked against and
// the asynchronous interrupt flag (spec.md §5), grounded on
// original_source/src/sat/minisat/budget.rs. A negative limit means
// unlimited.
type Budget struct {
	conflictBudget    int64
	propagationBudget int64
	interrupt         atomic.Bool
}

// NewBudget returns a budget with no limits set.
func NewBudget() *Budget {
	return &Budget{conflictBudget: -1, propagationBudget: -1}
}

// SetConflictBudget sets the conflict limit; negative means unlimited.
func (b *Budget) SetConflictBudget(n int64) { b.conflictBudget = n }

// SetPropagationBudget sets the propagation limit; negative means unlimited.
func (b *Budget) SetPropagationBudget(n int64) { b.propagationBudget = n }

// Within reports whether the search may continue given the current conflict
// and propagation counters and the asynchronous interrupt flag.
func (b *Budget) Within(conflicts, propagations uint64) bool {
	if b.interrupt.Load() {
		return false
	}
	if b.conflictBudget >= 0 && conflicts >= uint64(b.conflictBudget) {
		return false
	}
	if b.propagationBudget >= 0 && propagations >= uint64(b.propagationBudget) {
		return false
	}
	return true
}

// Interrupted reports whether the asynchronous interrupt flag is set.
func (b *Budget) Interrupted() bool {
	return b.interrupt.Load()
}

// Interrupt sets the asynchronous interrupt flag. Safe to call from any
// goroutine while a search is in progress.
func (b *Budget) Interrupt() {
	b.interrupt.Store(true)
}

// Off clears both resource limits (but not the interrupt flag).
func (b *Budget) Off() {
	b.conflictBudget = -1
	b.propagationBudget = -1
}
