package sat

import "sort"

// ClauseDatabase owns the two clause lists — original and learnt — and the
// learnt-clause activity bookkeeping, grounded on the teacher's
// constraints/learnts fields and BumpClaActivity/DecayClaActivity/ReduceDB in
// internal/sat/solver.go, generalized to operate over Arena references
// instead of *Clause pointers.
type ClauseDatabase struct {
	Constraints []ClauseRef
	Learnts     []ClauseRef

	claInc   float64
	claDecay float64
}

// NewClauseDatabase returns an empty database with the given clause activity
// decay factor (--cla-decay).
func NewClauseDatabase(claDecay float64) *ClauseDatabase {
	return &ClauseDatabase{claInc: 1, claDecay: claDecay}
}

// AddConstraint records ref as an original (non-learnt) clause.
func (db *ClauseDatabase) AddConstraint(ref ClauseRef) {
	db.Constraints = append(db.Constraints, ref)
}

// LearnClause records ref as a learnt clause and gives it its first activity
// bump, matching the teacher's record/BumpClaActivity pairing at learning
// time.
func (db *ClauseDatabase) LearnClause(arena *Arena, ref ClauseRef) {
	db.Learnts = append(db.Learnts, ref)
	db.BumpActivity(arena, ref)
}

// BumpActivity adds the current clause-activity increment to ref's score,
// rescaling every learnt clause's activity if the increment overflows
// (spec.md §4.6).
func (db *ClauseDatabase) BumpActivity(arena *Arena, ref ClauseRef) {
	c := arena.Clause(ref)
	c.activity += float32(db.claInc)
	if c.activity > 1e20 {
		db.claInc *= 1e-20
		for _, r := range db.Learnts {
			arena.Clause(r).activity *= 1e-20
		}
	}
}

// DecayActivity grows the clause-activity increment (spec.md §4.6).
func (db *ClauseDatabase) DecayActivity() {
	db.claInc /= db.claDecay
}

// Reduce implements the half-learnts policy of spec.md §4.6: learnts are
// sorted least active first with binary clauses last; binary and
// currently-locked clauses are always kept, every other clause in the first
// half of the sorted list is dropped, and any clause in the second half
// whose activity still falls below claInc/|learnts| is dropped too. detach is called for every removed reference so the caller can
// unwatch/free it (DetachLazy, typically, since many clauses go at once).
func (db *ClauseDatabase) Reduce(arena *Arena, trail *Trail, detach func(ClauseRef)) {
	if len(db.Learnts) == 0 {
		return
	}
	lim := db.claInc / float64(len(db.Learnts))

	sort.Slice(db.Learnts, func(i, j int) bool {
		ci, cj := arena.Clause(db.Learnts[i]), arena.Clause(db.Learnts[j])
		li, lj := len(ci.literals) == 2, len(cj.literals) == 2
		if li != lj {
			return lj // binary clauses sort last, protected below
		}
		return ci.activity < cj.activity
	})

	keep := db.Learnts[:0]
	half := len(db.Learnts) / 2
	for i, ref := range db.Learnts {
		c := arena.Clause(ref)
		binary := len(c.literals) == 2
		locked := Locked(arena, trail, ref)
		switch {
		case binary || locked:
			keep = append(keep, ref)
		case i < half:
			detach(ref)
		case float64(c.activity) < lim:
			detach(ref)
		default:
			keep = append(keep, ref)
		}
	}
	db.Learnts = keep
}

// RemoveConstraint splices ref out of the original-clause list without
// touching the arena or watches; the caller (internal/simp, which removes
// and rewrites original clauses one at a time during elimination and
// subsumption) is responsible for detaching/freeing ref itself. Order
// within Constraints is not meaningful, so this is a swap-remove.
func (db *ClauseDatabase) RemoveConstraint(ref ClauseRef) {
	for i, r := range db.Constraints {
		if r == ref {
			last := len(db.Constraints) - 1
			db.Constraints[i] = db.Constraints[last]
			db.Constraints = db.Constraints[:last]
			return
		}
	}
}

// RemoveSatisfied sweeps both clause lists at the ground decision level,
// deleting any clause already satisfied there and shrinking the rest in
// place (spec.md §4.6). Per Open Question (a), original clauses are only
// swept when sweepConstraints is true — the simplifying solver disables this
// exactly as the original's SimpSolver does, so elimination's own bookkeeping
// of original-clause occurrences stays valid.
func (db *ClauseDatabase) RemoveSatisfied(arena *Arena, trail *Trail, sweepConstraints bool, detach func(ClauseRef)) {
	if sweepConstraints {
		db.Constraints = sweepList(db.Constraints, arena, trail, detach)
	}
	db.Learnts = sweepList(db.Learnts, arena, trail, detach)
}

func sweepList(refs []ClauseRef, arena *Arena, trail *Trail, detach func(ClauseRef)) []ClauseRef {
	kept := refs[:0]
	for _, ref := range refs {
		c := arena.Clause(ref)
		if IsSatisfiedAtGround(c.literals, trail) {
			detach(ref)
			continue
		}
		ShrinkRemoveSatisfied(c, trail)
		kept = append(kept, ref)
	}
	return kept
}
