package simp

import "github.com/rhartert/yass/internal/sat"

// subsumeResult classifies how one clause relates to another under set
// containment of their literals, grounded on original_source's Subsumes enum
// (src/sat/formula/subsumes.rs).
type subsumeResult int

const (
	subsumeDifferent subsumeResult = iota
	subsumeExact
	subsumeLitSign // carries the one mismatched literal, see litSign below
)

// subsumes reports whether this subsumes other: other is Different unless
// every literal of this appears in other, in which case it is Exact (every
// literal matched directly) or LitSign (every literal matched except one,
// whose sign was flipped — self-subsumption, letting the caller strengthen
// other by removing that one literal). The abstraction bitmask short-
// circuits clauses that cannot possibly subsume (this has a variable other
// doesn't).
func subsumes(arena *sat.Arena, this, other sat.ClauseRef) (subsumeResult, sat.Literal) {
	thisLits := arena.Literals(this)
	otherLits := arena.Literals(other)
	if len(otherLits) < len(thisLits) || (arena.Clause(this).Abstraction()&^arena.Clause(other).Abstraction()) != 0 {
		return subsumeDifferent, 0
	}

	result := subsumeExact
	var litSign sat.Literal
	for _, lit := range thisLits {
		found := false
		for _, cur := range otherLits {
			if lit == cur {
				found = true
				break
			}
			if lit == cur.Opposite() {
				if result != subsumeExact {
					return subsumeDifferent, 0
				}
				result = subsumeLitSign
				litSign = lit
				found = true
				break
			}
		}
		if !found {
			return subsumeDifferent, 0
		}
	}
	return result, litSign
}

// unitSubsumes is subsumes specialized to a single-literal this, avoiding an
// Arena lookup for it.
func unitSubsumes(arena *sat.Arena, unit sat.Literal, other sat.ClauseRef) (subsumeResult, sat.Literal) {
	otherLits := arena.Literals(other)
	if unit.Abstraction()&^arena.Clause(other).Abstraction() != 0 {
		return subsumeDifferent, 0
	}
	for _, cur := range otherLits {
		if unit == cur {
			return subsumeExact, 0
		}
		if unit == cur.Opposite() {
			return subsumeLitSign, unit
		}
	}
	return subsumeDifferent, 0
}

// mergeResolvent computes the resolvent of ps and qs on variable v — the
// union of their literals minus the two occurrences of v — or reports ok=false
// if the resolvent would be a tautology (some other variable appears with
// both signs across the two clauses), grounded on original_source's merge
// (src/sat/formula/util.rs).
func mergeResolvent(v sat.Variable, ps, qs []sat.Literal) (resolvent []sat.Literal, ok bool) {
	if len(ps) < len(qs) {
		ps, qs = qs, ps
	}

	var res []sat.Literal
	for _, q := range qs {
		if q.VarID() == v {
			continue
		}
		keep := true
		for _, p := range ps {
			if p.VarID() == q.VarID() {
				if p == q.Opposite() {
					return nil, false
				}
				keep = false
				break
			}
		}
		if keep {
			res = append(res, q)
		}
	}
	for _, p := range ps {
		if p.VarID() != v {
			res = append(res, p)
		}
	}
	return res, true
}

// subsumptionJobKind distinguishes the two kinds of deferred work the
// backward subsumption pass processes.
type subsumptionJobKind int

const (
	jobClause subsumptionJobKind = iota
	jobAssign
)

// subsumptionJob is either "check this clause against the database" or
// "this literal was just fixed at the ground level, check everything it
// occurs in" — original_source's SubsumptionJob.
type subsumptionJob struct {
	kind   subsumptionJobKind
	ref    sat.ClauseRef
	assign sat.Literal
}

// subsumptionQueue is the work list backward subsumption drains, grounded on
// original_source's SubsumptionQueue (src/sat/minisat/simp/subsumption_queue.go).
// It reuses the core package's generic ring-buffer Queue for the clause
// backlog and separately walks the ground-level trail for freshly fixed
// units, exactly as the original does with its VecDeque plus a trail cursor.
type subsumptionQueue struct {
	queue        *sat.Queue[sat.ClauseRef]
	queued       map[sat.ClauseRef]bool
	bwdsubAssigns int
}

func newSubsumptionQueue() *subsumptionQueue {
	return &subsumptionQueue{
		queue:  sat.NewQueue[sat.ClauseRef](64),
		queued: map[sat.ClauseRef]bool{},
	}
}

// Push enqueues ref for a forward-subsumption check, unless it is already
// pending.
func (q *subsumptionQueue) Push(ref sat.ClauseRef) {
	if q.queued[ref] {
		return
	}
	q.queued[ref] = true
	q.queue.Push(ref)
}

// Pop returns the next job: a pending clause (skipping any since deleted),
// or the next not-yet-checked ground-level unit.
func (q *subsumptionQueue) Pop(arena *sat.Arena, trail *sat.Trail) (subsumptionJob, bool) {
	for {
		ref, ok := q.queue.Pop()
		if !ok {
			break
		}
		delete(q.queued, ref)
		if !arena.IsDeleted(ref) {
			return subsumptionJob{kind: jobClause, ref: ref}, true
		}
	}
	if q.bwdsubAssigns < trail.GroundAssignCount() {
		lit := trail.LiteralAt(q.bwdsubAssigns)
		q.bwdsubAssigns++
		return subsumptionJob{kind: jobAssign, assign: lit}, true
	}
	return subsumptionJob{}, false
}

// Len reports how many clauses are queued (excluding the assignment walk).
func (q *subsumptionQueue) Len() int { return q.queue.Len() }

// AssignsLeft reports how many ground-level units remain to be checked.
func (q *subsumptionQueue) AssignsLeft(trail *sat.Trail) int {
	return trail.GroundAssignCount() - q.bwdsubAssigns
}

// Clear abandons the queue, used on interrupt.
func (q *subsumptionQueue) Clear(trail *sat.Trail) {
	q.queue.Clear()
	q.queued = map[sat.ClauseRef]bool{}
	q.bwdsubAssigns = trail.GroundAssignCount()
}

// RelocGC relocates every queued reference into the new arena.
func (q *subsumptionQueue) RelocGC(from, to *sat.Arena) {
	next := sat.NewQueue[sat.ClauseRef](q.queue.Len())
	nextQueued := map[sat.ClauseRef]bool{}
	for {
		ref, ok := q.queue.Pop()
		if !ok {
			break
		}
		if newRef, ok := from.RelocTo(to, ref); ok {
			next.Push(newRef)
			nextQueued[newRef] = true
		}
	}
	q.queue = next
	q.queued = nextQueued
}
