// Package simp implements the MiniSat-style preprocessor that sits in front
// of internal/sat: backward subsumption, self-subsumption (clause
// strengthening), asymmetric branching, and bounded variable elimination,
// grounded on original_source's Simplificator/SimpSolver
// (src/sat/minisat/simp/mod.rs).
package simp

import "github.com/rhartert/yass/internal/sat"

// varStatus tracks one variable's eligibility for elimination: frozen
// variables (assumptions, or ones temporarily held during asymmetric
// branching) and already-eliminated variables are both off limits.
type varStatus struct {
	frozen     bool
	eliminated bool
}

// Settings configures variable elimination and the subsumption passes that
// accompany it, grounded on original_source's SimpSettings.
type Settings struct {
	Grow            int     // allow an elimination step to grow the clause count by this many
	ClauseLim       int     // skip eliminating a variable if a resolvent would exceed this many literals; -1 means no limit
	SubsumptionLim  int     // skip checking subsumption against a clause this large or larger; -1 means no limit
	SimpGarbageFrac float64 // garbage_frac used during elimination, distinct from the core solver's
	UseAsymm        bool    // shrink clauses by asymmetric branching
	UseElim         bool    // perform variable elimination
}

// DefaultSettings mirrors MiniSat's published SimpSolver defaults.
var DefaultSettings = Settings{
	Grow:            0,
	ClauseLim:       20,
	SubsumptionLim:  1000,
	SimpGarbageFrac: 0.5,
	UseAsymm:        false,
	UseElim:         true,
}

// Simplificator is the preprocessing pass itself, wrapping a *sat.Solver it
// does not own (the same relationship original_source's Simplificator has
// with CoreSolver, reached here through the exported accessor seam on
// sat.Solver rather than same-module field access).
type Simplificator struct {
	settings Settings

	merges         uint64
	asymmLits      uint64
	eliminatedVars uint64

	varStatus []varStatus
	occurs    *occLists
	elim      *elimQueue
	touched   []bool
	nTouched  int
	subQueue  *subsumptionQueue
}

// NewSimplificator returns an empty Simplificator; InitVar must be called
// once per variable the wrapped solver creates, in lockstep with
// Solver.AddVariable.
func NewSimplificator(settings Settings) *Simplificator {
	return &Simplificator{
		settings: settings,
		occurs:   newOccLists(),
		elim:     newElimQueue(),
		subQueue: newSubsumptionQueue(),
	}
}

// InitVar registers a newly created variable.
func (si *Simplificator) InitVar(v sat.Variable) {
	si.varStatus = append(si.varStatus, varStatus{})
	si.occurs.Grow()
	si.touched = append(si.touched, false)
	si.elim.Grow()
}

// AddClause intercepts Solver.AddClauseRaw, recording the new clause's
// occurrences and queuing it for a forward-subsumption check (the clause is
// pushed once here and, ordinarily, once more the next time
// gatherTouchedClauses runs — the subsumption queue's own dedup absorbs the
// duplicate, exactly the redundancy original_source's comment on this
// function calls out).
func (si *Simplificator) AddClause(s *sat.Solver, lits []sat.Literal) bool {
	res, ref := s.AddClauseRaw(lits)
	switch res {
	case sat.AddUnsat:
		return false
	case sat.AddConsumed:
		return true
	default:
		si.subQueue.Push(ref)
		for _, lit := range s.Arena().Literals(ref) {
			v := lit.VarID()
			si.occurs.Push(v, ref)
			if !si.touched[v] {
				si.touched[v] = true
				si.nTouched++
			}
			si.elim.BumpLitOcc(lit, 1)
		}
		return true
	}
}

// SolveLimited freezes every assumption variable for the duration of
// elimination (an eliminated assumption could no longer be assigned the way
// the caller demands), simplifies and eliminates, then hands off to the
// wrapped solver's own SolveLimited.
func (si *Simplificator) SolveLimited(s *sat.Solver, elim *elimClauses, assumptions []sat.Literal) sat.Result {
	var extraFrozen []sat.Variable
	for _, lit := range assumptions {
		v := lit.VarID()
		if !si.varStatus[v].frozen {
			si.varStatus[v].frozen = true
			extraFrozen = append(extraFrozen, v)
		}
	}

	var result sat.Result
	if s.Simplify() && si.Eliminate(s, elim) {
		result = s.SolveLimited(assumptions)
	} else {
		result = sat.Result{Status: sat.StatusUnsatisfiable}
	}

	for _, v := range extraFrozen {
		si.varStatus[v].frozen = false
		si.updateElimHeap(s, v)
	}
	return result
}

func (si *Simplificator) updateElimHeap(s *sat.Solver, v sat.Variable) {
	st := si.varStatus[v]
	eligible := !st.frozen && !st.eliminated && s.Trail().IsUndef(v)
	si.elim.Update(v, eligible)
}

// Eliminate runs the main preprocessing fixpoint: drain touched clauses into
// the subsumption queue, run backward subsumption to exhaustion, then pop
// the elimination queue (cheapest variable first), optionally asymmetrically
// branching and eliminating each one, until nothing is left to do or the
// budget is exhausted.
func (si *Simplificator) Eliminate(s *sat.Solver, elim *elimClauses) bool {
	for si.nTouched > 0 || si.subQueue.AssignsLeft(s.Trail()) > 0 || si.elim.Len() > 0 {
		si.gatherTouchedClauses(s)

		if !si.backwardSubsumptionCheck(s) {
			s.MarkUnsat()
			return false
		}

		if s.Budget().Interrupted() {
			si.elim.Clear()
			break
		}

		for {
			v, ok := si.elim.Pop()
			if !ok {
				break
			}
			if s.Budget().Interrupted() {
				break
			}
			if si.varStatus[v].eliminated || !s.Trail().IsUndef(v) {
				continue
			}

			if si.settings.UseAsymm {
				wasFrozen := si.varStatus[v].frozen
				si.varStatus[v].frozen = true
				if !si.asymmVar(s, v) {
					s.MarkUnsat()
					return false
				}
				si.varStatus[v].frozen = wasFrozen
			}

			if si.settings.UseElim && s.Trail().IsUndef(v) && !si.varStatus[v].frozen {
				if !si.eliminateVar(s, elim, v) {
					s.MarkUnsat()
					return false
				}
			}

			if s.Arena().CheckGarbage(si.settings.SimpGarbageFrac) {
				si.garbageCollect(s)
			}
		}
	}
	return s.Ok()
}

// asymmVar tries to shrink every clause v occurs in by one literal via
// asymmetric branching, then runs a (non-verbose) backward subsumption pass
// over whatever that touched. Unlike original_source's asymmVar, this does
// not reproduce MiniSat's documented "bug" of skipping every other
// successful branch — there is no reason to carry a known defect forward,
// and spec.md's eventual model is unaffected either way since asymmetric
// branching only ever shrinks clauses the core algorithm would accept
// regardless.
func (si *Simplificator) asymmVar(s *sat.Solver, v sat.Variable) bool {
	arena := s.Arena()
	if !s.Trail().IsUndef(v) {
		return true
	}
	cls := append([]sat.ClauseRef(nil), si.occurs.Lookup(v, arena)...)
	if len(cls) == 0 {
		return true
	}

	for _, cr := range cls {
		l, shrunk := asymmetricBranching(s, v, cr)
		if !shrunk {
			continue
		}
		si.asymmLits++
		if !si.strengthenClause(s, cr, l) {
			return false
		}
	}

	return si.backwardSubsumptionCheck(s)
}

// asymmetricBranching assumes the negation of every literal of cr but v's,
// propagates, and reports v's literal as the one to remove from cr if that
// assumption alone already conflicts (the other literals of cr then form an
// implied clause by themselves, so v's literal is redundant), grounded on
// original_source's free function of the same name.
func asymmetricBranching(s *sat.Solver, v sat.Variable, cr sat.ClauseRef) (sat.Literal, bool) {
	arena := s.Arena()
	trail := s.Trail()
	lits := arena.Literals(cr)
	if sat.IsSatisfiedAtGround(lits, trail) {
		return 0, false
	}

	s.NewDecisionLevel()
	var vLit sat.Literal
	for _, lit := range lits {
		if lit.VarID() == v {
			vLit = lit
			continue
		}
		if trail.IsUndef(lit.VarID()) {
			s.TryAssignGround(lit.Opposite())
		}
	}

	_, conflict := s.Propagate()
	s.BacktrackTo(0)
	if !conflict {
		return 0, false
	}
	return vLit, true
}

// removeClause retires cr: its elimination-queue bookkeeping is updated
// before the clause disappears from the arena, then it is detached and
// dropped from the constraint list.
func (si *Simplificator) removeClause(s *sat.Solver, cr sat.ClauseRef) {
	for _, lit := range s.Arena().Literals(cr) {
		si.elim.BumpLitOcc(lit, -1)
		si.updateElimHeap(s, lit.VarID())
		si.occurs.Smudge(lit.VarID())
	}
	s.RemoveClause(cr)
}

// strengthenClause removes l from cr. A binary clause degenerates to a unit:
// cr is removed outright and the surviving literal assigned and propagated.
// A longer clause is edited in place (detach/mutate/reattach, since removing
// a literal can change which pair is watched).
func (si *Simplificator) strengthenClause(s *sat.Solver, cr sat.ClauseRef, l sat.Literal) bool {
	arena := s.Arena()
	si.subQueue.Push(cr)

	lits := arena.Literals(cr)
	if len(lits) == 2 {
		var unit sat.Literal
		if lits[0] == l {
			unit = lits[1]
		} else {
			unit = lits[0]
		}
		si.removeClause(s, cr)
		if !s.TryAssignGround(unit) {
			return false
		}
		_, conflict := s.Propagate()
		return !conflict
	}

	newLits := make([]sat.Literal, 0, len(lits)-1)
	for _, x := range lits {
		if x != l {
			newLits = append(newLits, x)
		}
	}
	s.Watches().DetachStrict(cr, lits)
	arena.Clause(cr).SetLiterals(newLits)
	s.Attach(cr)

	si.occurs.Remove(l.VarID(), cr)
	si.elim.BumpLitOcc(l, -1)
	si.updateElimHeap(s, l.VarID())
	return true
}

// eliminateVar resolves every clause containing v's positive literal against
// every clause containing its negative literal, keeping the resolvents (and
// discarding v's own clauses) as long as doing so would not grow the clause
// count by more than settings.Grow or produce an over-large resolvent.
func (si *Simplificator) eliminateVar(s *sat.Solver, elim *elimClauses, v sat.Variable) bool {
	arena := s.Arena()
	cls := append([]sat.ClauseRef(nil), si.occurs.Lookup(v, arena)...)

	// Literals are snapshotted up front: removeClause frees the arena slots
	// of cls below, and unlike the allocator this is grounded on, Free drops
	// the record's literal payload immediately rather than leaving it
	// readable until the next compaction.
	var pos, neg []sat.ClauseRef
	var posLits, negLits [][]sat.Literal
	for _, cr := range cls {
		lits := append([]sat.Literal(nil), arena.Literals(cr)...)
		for _, lit := range lits {
			if lit.VarID() == v {
				if lit.IsPositive() {
					pos = append(pos, cr)
					posLits = append(posLits, lits)
				} else {
					neg = append(neg, cr)
					negLits = append(negLits, lits)
				}
				break
			}
		}
	}

	cnt := 0
	for _, pl := range posLits {
		for _, nl := range negLits {
			si.merges++
			resolvent, ok := mergeResolvent(v, pl, nl)
			if !ok {
				continue
			}
			cnt++
			if cnt > len(cls)+si.settings.Grow ||
				(si.settings.ClauseLim != -1 && len(resolvent) > si.settings.ClauseLim) {
				return true
			}
		}
	}

	si.varStatus[v].eliminated = true
	s.Heuristic().SetDecidable(v, false)
	si.eliminatedVars++

	if len(pos) > len(neg) {
		for _, nl := range negLits {
			elim.AddClause(v, nl)
		}
		elim.AddUnit(sat.PositiveLiteral(v))
	} else {
		for _, pl := range posLits {
			elim.AddClause(v, pl)
		}
		elim.AddUnit(sat.NegativeLiteral(v))
	}

	for _, cr := range cls {
		si.removeClause(s, cr)
	}

	for _, pl := range posLits {
		for _, nl := range negLits {
			si.merges++
			resolvent, ok := mergeResolvent(v, pl, nl)
			if !ok {
				continue
			}
			if !si.AddClause(s, resolvent) {
				return false
			}
		}
	}

	si.occurs.Clear(v)
	return si.backwardSubsumptionCheck(s)
}

// backwardSubsumptionCheck drains the subsumption queue, removing or
// strengthening every clause a queued clause or newly fixed unit subsumes.
func (si *Simplificator) backwardSubsumptionCheck(s *sat.Solver) bool {
	arena := s.Arena()
	trail := s.Trail()

	for {
		job, ok := si.subQueue.Pop(arena, trail)
		if !ok {
			break
		}
		if s.Budget().Interrupted() {
			si.subQueue.Clear(trail)
			break
		}

		switch job.kind {
		case jobAssign:
			unit := job.assign
			for _, cj := range append([]sat.ClauseRef(nil), si.occurs.Lookup(unit.VarID(), arena)...) {
				if si.settings.SubsumptionLim >= 0 && len(arena.Literals(cj)) >= si.settings.SubsumptionLim {
					continue
				}
				res, lit := unitSubsumes(arena, unit, cj)
				switch res {
				case subsumeExact:
					si.removeClause(s, cj)
				case subsumeLitSign:
					if !si.strengthenClause(s, cj, lit.Opposite()) {
						return false
					}
				}
			}

		case jobClause:
			cr := job.ref
			lits := arena.Literals(cr)
			best := lits[0].VarID()
			bestLen := len(si.occurs.Lookup(best, arena))
			for _, lit := range lits[1:] {
				n := len(si.occurs.Lookup(lit.VarID(), arena))
				if n < bestLen {
					best, bestLen = lit.VarID(), n
				}
			}

			for _, cj := range append([]sat.ClauseRef(nil), si.occurs.Lookup(best, arena)...) {
				if arena.IsDeleted(cr) {
					break
				}
				if cj == cr {
					continue
				}
				if si.settings.SubsumptionLim >= 0 && len(arena.Literals(cj)) >= si.settings.SubsumptionLim {
					continue
				}
				res, lit := subsumes(arena, cr, cj)
				switch res {
				case subsumeExact:
					si.removeClause(s, cj)
				case subsumeLitSign:
					if !si.strengthenClause(s, cj, lit.Opposite()) {
						return false
					}
				}
			}
		}
	}
	return true
}

// gatherTouchedClauses re-queues every clause mentioning a variable touched
// since the last call (by AddClause or elimination), for a fresh
// forward-subsumption pass.
func (si *Simplificator) gatherTouchedClauses(s *sat.Solver) {
	if si.nTouched == 0 {
		return
	}
	arena := s.Arena()
	for v := range si.touched {
		if !si.touched[v] {
			continue
		}
		for _, ref := range si.occurs.Lookup(sat.Variable(v), arena) {
			si.subQueue.Push(ref)
		}
		si.touched[v] = false
	}
	si.nTouched = 0
}

// garbageCollect drives the core solver's relocating GC with occurs and
// subQueue wired in as the extra relocation hook, so both sides of the
// clause-reference split move together.
func (si *Simplificator) garbageCollect(s *sat.Solver) {
	s.GarbageCollect(func(from, to *sat.Arena) {
		si.occurs.RelocGC(from, to)
		si.subQueue.RelocGC(from, to)
	})
}
