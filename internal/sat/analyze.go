package sat

// CCMinMode selects how aggressively a freshly learnt clause is shrunk by
// removing literals implied by the rest of the clause (spec.md §4.4).
type CCMinMode int

const (
	CCMinNone CCMinMode = iota
	CCMinBasic
	CCMinDeep
)

// seenMark is the three-color mark conflict analysis uses to memoize
// redundancy decisions during Deep minimization (spec.md §4.4), grounded on
// original_source's AnalyzeContext::Seen {Undef, Source, Removable, Failed}.
type seenMark int8

const (
	seenUndef seenMark = iota
	seenSource
	seenRemovable
	seenFailed
)

// Analyzer computes 1-UIP learnt clauses and final-conflict assumption sets.
// Grounded on original_source/src/sat/minisat/search/conflict.rs's
// AnalyzeContext, adapted from its Vec<(Lit, &[Lit])> recursion stack (the
// Rust borrow checker's reason for an iterative walk) to a plain slice stack,
// and from *Clause/ClauseAllocator views to Arena.Literals lookups.
type Analyzer struct {
	ccMinMode CCMinMode
	seen      []seenMark
	toClear   []Literal

	MaxLiterals uint64
	TotLiterals uint64
}

// NewAnalyzer returns an analyzer using the given minimization mode.
func NewAnalyzer(mode CCMinMode) *Analyzer {
	return &Analyzer{ccMinMode: mode}
}

// Grow registers one more variable, initially unseen.
func (a *Analyzer) Grow() {
	a.seen = append(a.seen, seenUndef)
}

// Analyze computes the 1-UIP learnt clause for a conflict at clause confl,
// requiring the current decision level to be above ground (callers must
// treat a ground-level conflict as immediate UNSAT before calling this).
// bumpVar/bumpCla are invoked for every variable/clause touched during the
// walk, letting the caller drive VSIDS and clause-activity bumping exactly
// where the walk visits them. Returns the learnt literals (element 0 is the
// asserting literal, satisfied by construction; if len > 1 element 1 carries
// the second-highest decision level) and the backtrack level.
func (a *Analyzer) Analyze(arena *Arena, trail *Trail, confl ClauseRef, bumpVar func(Variable), bumpCla func(ClauseRef)) ([]Literal, int) {
	outLearnt := []Literal{0} // slot 0 is filled with the asserting literal below
	pathC := 0
	index := trail.NumAssigned()
	curLevel := trail.DecisionLevel()
	fromFirst := true
	var pl Literal

	for {
		bumpCla(confl)
		lits := arena.Literals(confl)
		from := 1
		if fromFirst {
			from = 0
		}
		for _, q := range lits[from:] {
			v := q.VarID()
			if a.seen[v] != seenUndef {
				continue
			}
			level := trail.Level(v)
			if level <= 0 {
				continue
			}
			a.seen[v] = seenSource
			bumpVar(v)
			if level >= curLevel {
				pathC++
			} else {
				outLearnt = append(outLearnt, q)
			}
		}

		for {
			index--
			pl = trail.LiteralAt(index)
			if a.seen[pl.VarID()] != seenUndef {
				break
			}
		}
		a.seen[pl.VarID()] = seenUndef

		pathC--
		if pathC <= 0 {
			break
		}
		confl = trail.Reason(pl.VarID())
		fromFirst = false
	}
	outLearnt[0] = pl.Opposite()

	a.toClear = append(a.toClear[:0], outLearnt...)
	a.MaxLiterals += uint64(len(outLearnt))
	switch a.ccMinMode {
	case CCMinDeep:
		outLearnt = keepNotRedundant(outLearnt, func(l Literal) bool {
			return a.litRedundant(arena, trail, l)
		})
	case CCMinBasic:
		outLearnt = keepNotRedundant(outLearnt, func(l Literal) bool {
			return a.litRedundantBasic(arena, trail, l)
		})
	}
	a.TotLiterals += uint64(len(outLearnt))

	for _, l := range a.toClear {
		a.seen[l.VarID()] = seenUndef
	}

	backtrackLevel := 0
	if len(outLearnt) > 1 {
		maxI := 1
		maxLevel := trail.Level(outLearnt[1].VarID())
		for i := 2; i < len(outLearnt); i++ {
			if level := trail.Level(outLearnt[i].VarID()); level > maxLevel {
				maxI, maxLevel = i, level
			}
		}
		outLearnt[1], outLearnt[maxI] = outLearnt[maxI], outLearnt[1]
		backtrackLevel = maxLevel
	}
	return outLearnt, backtrackLevel
}

// computeLBD returns the number of distinct decision levels among lits'
// variables, the literal block distance diagnostic named in spec.md §6/
// SPEC_FULL.md §7 (grounded on the teacher's lbd field in sat/clauses.go,
// which that package never actually populates; here it's computed at
// learning time off of Trail.Level).
func computeLBD(trail *Trail, lits []Literal) uint32 {
	if len(lits) == 0 {
		return 0
	}
	seen := make(map[int]bool, len(lits))
	for _, l := range lits {
		seen[trail.Level(l.VarID())] = true
	}
	return uint32(len(seen))
}

func keepNotRedundant(lits []Literal, redundant func(Literal) bool) []Literal {
	out := lits[:0]
	for _, l := range lits {
		if !redundant(l) {
			out = append(out, l)
		}
	}
	return out
}

// litRedundantBasic is the CCMinBasic check: literal is redundant iff its
// reason clause's other literals are all already seen or at ground level.
func (a *Analyzer) litRedundantBasic(arena *Arena, trail *Trail, literal Literal) bool {
	reason := trail.Reason(literal.VarID())
	if reason == RefUndef {
		return false
	}
	for _, l := range arena.Literals(reason)[1:] {
		if a.seen[l.VarID()] == seenUndef && trail.Level(l.VarID()) > 0 {
			return false
		}
	}
	return true
}

type litRedundantFrame struct {
	p    Literal
	lits []Literal
}

// litRedundant is the CCMinDeep check: literal is redundant iff every
// ancestor in its reason chain is ground, already seen, or itself redundant
// (memoized via the three-color seen marks). Walked iteratively with an
// explicit stack rather than recursion, mirroring the Rust source's
// borrow-driven iterative rewrite of the recursive definition.
func (a *Analyzer) litRedundant(arena *Arena, trail *Trail, literal Literal) bool {
	reason := trail.Reason(literal.VarID())
	if reason == RefUndef {
		return false
	}
	stack := []litRedundantFrame{{p: literal, lits: arena.Literals(reason)[1:]}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.lits) == 0 {
			if a.seen[top.p.VarID()] == seenUndef {
				a.seen[top.p.VarID()] = seenRemovable
				a.toClear = append(a.toClear, top.p)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		l := top.lits[0]
		top.lits = top.lits[1:]

		v := l.VarID()
		level := trail.Level(v)
		seen := a.seen[v]
		if level <= 0 || seen == seenSource || seen == seenRemovable {
			continue
		}
		lr := trail.Reason(v)
		if seen == seenUndef && lr != RefUndef {
			stack = append(stack, litRedundantFrame{p: l, lits: arena.Literals(lr)[1:]})
			continue
		}
		for _, f := range stack {
			if a.seen[f.p.VarID()] == seenUndef {
				a.seen[f.p.VarID()] = seenFailed
				a.toClear = append(a.toClear, f.p)
			}
		}
		return false
	}
	return true
}

// AnalyzeFinal computes, for a literal p assigned True that roots a
// falsified assumption, the set of negated assumptions that imply ¬p — the
// final-conflict-over-assumptions procedure of spec.md §4.4. It seeds the
// walk by marking p itself seen (standard MiniSat's analyzeFinal does this;
// a literal reading of original_source omits it, which would leave p's own
// reason chain untraced — faithfully implementing spec.md's stated contract
// takes precedence, per its note on fixing rather than reproducing source
// quirks).
func (a *Analyzer) AnalyzeFinal(arena *Arena, trail *Trail, p Literal) []Literal {
	conflict := []Literal{p}
	if trail.DecisionLevel() == 0 {
		return conflict
	}
	a.seen[p.VarID()] = seenSource
	above := trail.TrailAboveGround()
	for i := len(above) - 1; i >= 0; i-- {
		lit := above[i]
		v := lit.VarID()
		if a.seen[v] == seenUndef {
			continue
		}
		reason := trail.Reason(v)
		if reason == RefUndef {
			conflict = append(conflict, lit.Opposite())
		} else {
			for _, l := range arena.Literals(reason)[1:] {
				if trail.Level(l.VarID()) > 0 {
					a.seen[l.VarID()] = seenSource
				}
			}
		}
		a.seen[v] = seenUndef
	}
	a.seen[p.VarID()] = seenUndef
	return conflict
}
