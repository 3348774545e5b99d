package sat

import "sort"

// NormalizeClause sorts lits by literal value and removes duplicates. Because
// a variable's two literals are adjacent under this encoding (2v, 2v+1), a
// tautology (both polarities of some variable present) shows up as adjacent
// equal-variable, opposite-sign entries and is detected in the same pass.
// lits is reused as the backing array of the result.
func NormalizeClause(lits []Literal) (normalized []Literal, tautology bool) {
	sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
	out := lits[:0]
	for _, l := range lits {
		if len(out) > 0 {
			last := out[len(out)-1]
			if l == last {
				continue
			}
			if l == last.Opposite() {
				return nil, true
			}
		}
		out = append(out, l)
	}
	return out, false
}

// CheckGroundClause simplifies an incoming clause against the current
// ground-level (level 0) assignment, as AddClause does before the clause ever
// reaches the arena (spec.md §4.6's remove-satisfied rule, applied once up
// front). satisfied=true means the clause is already true at level 0 and
// should be discarded rather than stored; otherwise kept has every
// ground-false literal dropped.
func CheckGroundClause(lits []Literal, trail *Trail) (kept []Literal, satisfied bool) {
	out := lits[:0]
	for _, l := range lits {
		v := l.VarID()
		switch trail.ValueOfLit(l) {
		case True:
			if trail.Level(v) == 0 {
				return nil, true
			}
			out = append(out, l)
		case False:
			if trail.Level(v) == 0 {
				continue
			}
			out = append(out, l)
		default:
			out = append(out, l)
		}
	}
	return out, false
}

// IsSatisfiedAtGround reports whether some literal of lits is true at the
// ground level, the condition RemoveSatisfied uses to drop a whole clause.
func IsSatisfiedAtGround(lits []Literal, trail *Trail) bool {
	for _, l := range lits {
		if trail.ValueOfLit(l) == True && trail.Level(l.VarID()) == 0 {
			return true
		}
	}
	return false
}

// ShrinkRemoveSatisfied drops ground-false literals from positions 2 and
// beyond of a live clause in place, leaving positions 0 and 1 untouched — by
// the watch invariant they cannot be ground-false while the clause is live
// and unsatisfied (spec.md §4.6 "Remove-satisfied").
func ShrinkRemoveSatisfied(c *clauseRecord, trail *Trail) {
	lits := c.literals
	if len(lits) <= 2 {
		return
	}
	j := 2
	for i := 2; i < len(lits); i++ {
		l := lits[i]
		if trail.ValueOfLit(l) == False && trail.Level(l.VarID()) == 0 {
			continue
		}
		lits[j] = l
		j++
	}
	c.literals = lits[:j]
}

// Locked reports whether ref is currently the reason for its own first
// literal's assignment — a locked clause is immune to database reduction
// (spec.md §4.2 "is_reason_for", §4.6).
func Locked(arena *Arena, trail *Trail, ref ClauseRef) bool {
	lits := arena.Literals(ref)
	if len(lits) == 0 {
		return false
	}
	return trail.IsReasonFor(ref, lits[0])
}

// Attach installs ref's watches on its first two literals. It does not touch
// the clause's abstraction, which Alloc already computed for a non-learnt
// clause.
func Attach(arena *Arena, watches *Watches, ref ClauseRef) {
	watches.Attach(ref, arena.Literals(ref))
}

// Detach removes ref's watches (immediately) and frees its arena slot. Use
// DetachLazy instead on a path that frees many clauses together.
func Detach(arena *Arena, watches *Watches, ref ClauseRef) {
	watches.DetachStrict(ref, arena.Literals(ref))
	arena.Free(ref)
}

// DetachLazy marks ref's watches dirty and frees its arena slot; the watch
// lists are compacted lazily the next time they are scanned.
func DetachLazy(arena *Arena, watches *Watches, ref ClauseRef) {
	watches.DetachLazy(arena.Literals(ref))
	arena.Free(ref)
}
