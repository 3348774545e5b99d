package sat

import "fmt"

// AddResult classifies the outcome of adding a clause to the solver, mirroring
// the three cases the simplificator needs to distinguish when it intercepts
// AddClause (original_source's AddClauseRes: UnSAT/Consumed/Added), spec.md
// §4.10(a).
type AddResult int

const (
	AddUnsat AddResult = iota
	AddConsumed
	AddAdded
)

// Status is the outcome of a bounded search (spec.md §4.9 "Searcher outer").
type Status int

const (
	StatusIndeterminate Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
	StatusAssumptionConflict
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "SATISFIABLE"
	case StatusUnsatisfiable:
		return "UNSATISFIABLE"
	case StatusAssumptionConflict:
		return "ASSUMPTION-CONFLICT"
	default:
		return "INDETERMINATE"
	}
}

// Result is everything SolveLimited can hand back to its caller. Exactly one
// of Model, Progress, Conflict is meaningful, selected by Status.
type Result struct {
	Status   Status
	Model    []LBool   // valid iff Status == StatusSatisfiable; may contain Undef for eliminated variables, filled in by internal/simp's model extension
	Progress float64   // valid iff Status == StatusIndeterminate
	Conflict []Literal // valid iff Status == StatusAssumptionConflict: the negated assumptions that conflict (spec.md §4.4 "Final conflict")
}

// ModelToBools converts a fully-assigned model (no Undef entries) to the
// plain bool slice the DIMACS result format and CLI expect.
func ModelToBools(model []LBool) []bool {
	out := make([]bool, len(model))
	for i, lb := range model {
		out[i] = lb == True
	}
	return out
}

// Options configures a Solver's search parameters, one field per tunable
// named in spec.md §6's CLI surface.
type Options struct {
	VarDecay       float64
	ClaDecay       float64
	RandomVarFreq  float64
	RandomPolarity bool
	RandomSeed     float64
	CCMinMode      CCMinMode
	PhaseSaving    PhaseSaving
	GCFrac         float64
	RCheck         bool // --rcheck: reject a clause already implied by unit propagation

	// RemoveSatisfied gates whether Simplify sweeps original (non-learnt)
	// clauses at the ground level. The simplifying solver turns this off
	// (spec.md §9, Open Question (a)) since it maintains its own occurrence
	// lists over exactly those clauses.
	RemoveSatisfied bool
}

// DefaultOptions mirrors MiniSat's published defaults.
var DefaultOptions = Options{
	VarDecay:        0.95,
	ClaDecay:        0.999,
	RandomVarFreq:   0,
	RandomSeed:      91648253,
	CCMinMode:       CCMinDeep,
	PhaseSaving:     PhaseSavingFull,
	GCFrac:          0.20,
	RemoveSatisfied: true,
}

// DefaultLearningStrategy mirrors MiniSat's published learnt-clause ceiling
// growth defaults (spec.md §4.7 "LearningGuard").
var DefaultLearningStrategy = LearningStrategy{
	MinLearntsLim:        0,
	SizeFactor:           1.0 / 3.0,
	SizeInc:              1.1,
	SizeAdjustStartConfl: 100,
	SizeAdjustInc:        1.5,
}

// DefaultRestartStrategy mirrors MiniSat's published restart defaults.
var DefaultRestartStrategy = RestartStrategy{
	LubyRestart:  true,
	RestartFirst: 100,
	RestartInc:   2,
}

// Stats accumulates search counters for reporting (spec.md §6, "c ..." stats
// lines) and progress estimation.
type Stats struct {
	Solves          uint64
	Restarts        uint64
	Decisions       uint64
	RandomDecisions uint64
	Conflicts       uint64
	MaxLiterals     uint64
	TotLiterals     uint64
}

// Solver is the core CDCL capability set of spec.md §9 ("Polymorphism"):
// NumVariables, NumConstraints, AddVariable, AddClause, Simplify,
// SolveLimited, Stats. It composes the Arena (C2), Trail (C3), Watches (C4),
// ClauseDatabase (C5), Heuristic (C6), Analyzer (C7), RestartStrategy (C8)
// and is the Searcher (C9) itself, grounded on the teacher's internal/sat
// Solver in internal/sat/solver.go generalized from its fixed nConflicts/
// nLearnts loop to the Luby/geometric restart and LearningGuard schedule of
// original_source's Searcher (src/sat/minisat/search/mod.rs), the reference
// this package's algorithms are grounded on at the level of detail spec.md
// requires.
type Solver struct {
	opts     Options
	restart  RestartStrategy
	learning LearningStrategy

	arena    *Arena
	trail    *Trail
	watches  *Watches
	db       *ClauseDatabase
	heur     *Heuristic
	analyzer *Analyzer
	budget   *Budget

	hasExtra bool
	ok       bool

	stats Stats

	// simplify guard: simplify() is a no-op unless new ground assignments or
	// propagations have happened since the last call (original_source's
	// SimplifyGuard).
	simpAssigns int
	simpProps   uint64

	// onGC, when set by internal/simp, is invoked with (old, new) arenas
	// during every garbage collection so the simplificator can relocate its
	// own occurrence lists and subsumption queue alongside the core's.
	onGC func(from, to *Arena)

	// Verbosity gates the periodic "c ..." search-stats lines (--verb).
	Verbosity int
}

// NewSolver returns an empty solver (no variables, no clauses) configured by
// opts/restart/learning.
func NewSolver(opts Options, restart RestartStrategy, learning LearningStrategy) *Solver {
	return &Solver{
		opts:        opts,
		restart:     restart,
		learning:    learning,
		arena:       NewArena(),
		trail:       NewTrail(),
		watches:     NewWatches(),
		db:          NewClauseDatabase(opts.ClaDecay),
		heur:        NewHeuristic(opts.VarDecay, opts.RandomVarFreq, opts.RandomPolarity, opts.PhaseSaving, opts.RandomSeed),
		analyzer:    NewAnalyzer(opts.CCMinMode),
		budget:      NewBudget(),
		ok:          true,
		simpAssigns: -1,
	}
}

func (s *Solver) NumVariables() int   { return int(s.trail.NumVars()) }
func (s *Solver) NumConstraints() int { return len(s.db.Constraints) }
func (s *Solver) NumLearnts() int     { return len(s.db.Learnts) }
func (s *Solver) Ok() bool            { return s.ok }
func (s *Solver) Stats() Stats        { return s.stats }
func (s *Solver) Options() Options    { return s.opts }
func (s *Solver) HasExtra() bool      { return s.hasExtra }

// The following accessors exist because internal/simp wraps *Solver from a
// different package (the original's Simplificator shares a crate with
// CoreSolver and reaches into its fields directly; Go's package boundary
// means the equivalent "wrap and intercept" shape, spec.md §9, needs
// exported seams instead).
func (s *Solver) Arena() *Arena          { return s.arena }
func (s *Solver) Trail() *Trail          { return s.trail }
func (s *Solver) Watches() *Watches      { return s.watches }
func (s *Solver) DB() *ClauseDatabase    { return s.db }
func (s *Solver) Heuristic() *Heuristic  { return s.heur }
func (s *Solver) Analyzer() *Analyzer    { return s.analyzer }
func (s *Solver) Budget() *Budget        { return s.budget }
func (s *Solver) SetHasExtra(v bool)     { s.hasExtra = v }
func (s *Solver) SetRemoveSatisfied(v bool) { s.opts.RemoveSatisfied = v }
func (s *Solver) MarkUnsat()             { s.ok = false }
func (s *Solver) SetGCHook(f func(from, to *Arena)) { s.onGC = f }

// Attach/DetachLazy/DetachStrict expose the arena+watches pairing so
// internal/simp can (un)install clauses it creates or strengthens directly,
// the same operations AddClauseRaw uses internally.
func (s *Solver) Attach(ref ClauseRef)      { Attach(s.arena, s.watches, ref) }
func (s *Solver) DetachLazy(ref ClauseRef)  { DetachLazy(s.arena, s.watches, ref) }
func (s *Solver) DetachStrict(ref ClauseRef) { Detach(s.arena, s.watches, ref) }

// RemoveClause detaches ref from the watch lists and drops it from the
// constraint list in one step, the pairing internal/simp's elimination and
// subsumption need whenever they retire a single original clause outside the
// bulk Reduce/RemoveSatisfied sweeps.
func (s *Solver) RemoveClause(ref ClauseRef) {
	DetachLazy(s.arena, s.watches, ref)
	s.db.RemoveConstraint(ref)
}

// Propagate runs unit propagation to a fixpoint or conflict.
func (s *Solver) Propagate() (ClauseRef, bool) {
	return s.watches.Propagate(s.arena, s.trail)
}

// NewDecisionLevel opens a fresh decision level, used directly by
// internal/simp's asymmetric branching (spec.md §4.8).
func (s *Solver) NewDecisionLevel() { s.trail.NewDecisionLevel() }

// BacktrackTo reverts to level, driving phase saving/heap reinsertion
// exactly as the search loop's own backtracks do.
func (s *Solver) BacktrackTo(level int) { s.backtrackTo(level) }

// TryAssignGround assigns l with no reason at the current level, requiring
// it not already be falsified. Used for ground-level units (AddClauseRaw)
// and for asymmetric branching's temporary assumptions.
func (s *Solver) TryAssignGround(l Literal) bool { return s.tryAssignRoot(l) }

// AddVariable registers a new decision-eligible variable across every
// per-variable collaborator (spec.md §3 "Lifecycle").
func (s *Solver) AddVariable() Variable {
	v := s.trail.NumVars()
	s.trail.Grow()
	s.watches.Grow()
	s.heur.Grow()
	s.analyzer.Grow()
	return v
}

func (s *Solver) tryAssignRoot(l Literal) bool {
	switch s.trail.ValueOfLit(l) {
	case True:
		return true
	case False:
		return false
	default:
		s.trail.Assign(l, RefUndef)
		return true
	}
}

// isImplied is the --rcheck pre-check (spec.md §7's supplemented
// "isImplied" feature): assume the negation of every literal of c at a fresh
// decision level, propagate, and report whether that already produces a
// conflict (i.e. c is implied and need not be added), grounded on
// original_source's free function isImplied in
// src/sat/minisat/search/mod.rs.
func (s *Solver) isImplied(c []Literal) bool {
	s.trail.NewDecisionLevel()
	for _, l := range c {
		switch s.trail.ValueOfLit(l) {
		case True:
			s.backtrackToGround()
			return true
		case Undef:
			s.trail.Assign(l.Opposite(), RefUndef)
		}
	}
	_, conflict := s.watches.Propagate(s.arena, s.trail)
	s.backtrackToGround()
	return conflict
}

// AddClauseRaw adds c at the ground level, classifying the outcome as
// AddUnsat/AddConsumed/AddAdded (spec.md §4.10(a)) instead of collapsing it
// to a bool, because internal/simp needs to know which clause (if any) was
// actually allocated in order to register its occurrences.
func (s *Solver) AddClauseRaw(c []Literal) (AddResult, ClauseRef) {
	if s.trail.DecisionLevel() != 0 {
		panic("sat: AddClause called above the ground decision level")
	}
	if !s.ok {
		return AddUnsat, RefUndef
	}
	if s.opts.RCheck && s.isImplied(c) {
		return AddConsumed, RefUndef
	}

	buf := append([]Literal(nil), c...)
	kept, satisfied := CheckGroundClause(buf, s.trail)
	if satisfied {
		return AddConsumed, RefUndef
	}
	normalized, taut := NormalizeClause(kept)
	if taut {
		return AddConsumed, RefUndef
	}

	switch len(normalized) {
	case 0:
		s.ok = false
		return AddUnsat, RefUndef
	case 1:
		if !s.tryAssignRoot(normalized[0]) {
			s.ok = false
			return AddUnsat, RefUndef
		}
		if _, conflict := s.watches.Propagate(s.arena, s.trail); conflict {
			s.ok = false
			return AddUnsat, RefUndef
		}
		return AddConsumed, RefUndef
	default:
		ref := s.arena.Alloc(normalized, false, s.hasExtra)
		s.db.AddConstraint(ref)
		Attach(s.arena, s.watches, ref)
		return AddAdded, ref
	}
}

// AddClause adds c at the ground level, reporting only whether the solver
// remains satisfiable afterwards (the common case callers want).
func (s *Solver) AddClause(c []Literal) bool {
	result, _ := s.AddClauseRaw(c)
	return result != AddUnsat
}

// Simplify removes clauses satisfied at the ground level and shrinks the
// rest, then garbage collects and rebuilds the decision heap if warranted
// (spec.md §4.6/§4.7). It is a no-op if nothing has changed since the last
// call (original_source's SimplifyGuard). Simplify is the public capability
// of spec.md §9 ("Polymorphism"): it first drives propagation to a fixpoint
// (there may be pending ground-level facts the caller just added) before
// sweeping, matching original_source's CoreSolver::preprocess.
func (s *Solver) Simplify() bool {
	if s.trail.DecisionLevel() != 0 {
		panic("sat: Simplify called above the ground decision level")
	}
	if !s.ok {
		return false
	}
	if _, conflict := s.watches.Propagate(s.arena, s.trail); conflict {
		s.ok = false
		return false
	}
	return s.simplify()
}

// simplify is the bare sweep-and-compact step, used both by the public
// Simplify and by the inner search loop (which has already propagated to a
// fixpoint before calling it, so it must not propagate again).
func (s *Solver) simplify() bool {
	if s.trail.NumAssigned() == s.simpAssigns || s.watches.Propagations < s.simpProps {
		return true
	}

	detach := func(ref ClauseRef) { DetachLazy(s.arena, s.watches, ref) }
	s.db.RemoveSatisfied(s.arena, s.trail, s.opts.RemoveSatisfied, detach)

	if s.arena.CheckGarbage(s.opts.GCFrac) {
		s.garbageCollect()
	}

	s.heur.RebuildHeap(s.trail)

	propLimit := uint64(0)
	for _, ref := range s.db.Constraints {
		propLimit += uint64(len(s.arena.Literals(ref)))
	}
	for _, ref := range s.db.Learnts {
		propLimit += uint64(len(s.arena.Literals(ref)))
	}
	s.simpAssigns = s.trail.NumAssigned()
	s.simpProps = s.watches.Propagations + propLimit
	return true
}

func (s *Solver) backtrackTo(level int) {
	topLevel := s.trail.DecisionLevel()
	s.trail.BacktrackTo(level, func(l Literal) {
		atTop := s.trail.Level(l.VarID()) == topLevel
		s.heur.OnUndo(l, atTop)
	})
}

func (s *Solver) backtrackToGround() { s.backtrackTo(0) }

// GarbageCollect relocates every live clause into a fresh arena via
// watches, reasons, and the clause database, invokes extra with the (old,
// new) arena pair so a caller-supplied holder (internal/simp's occurrence
// lists and subsumption queue) can relocate its own references too, then
// swaps the arena in (spec.md §4.1).
func (s *Solver) GarbageCollect(extra func(from, to *Arena)) {
	to := NewArena()
	s.relocAll(to)
	if extra != nil {
		extra(s.arena, to)
	}
	s.arena = to
}

func (s *Solver) garbageCollect() { s.GarbageCollect(s.onGC) }

func (s *Solver) relocAll(to *Arena) {
	for lit := range s.watches.lists {
		list := &s.watches.lists[lit]
		j := 0
		for _, w := range list.ws {
			if newRef, ok := s.arena.RelocTo(to, w.ref); ok {
				w.ref = newRef
				list.ws[j] = w
				j++
			}
		}
		list.ws = list.ws[:j]
		list.dirty = false
	}

	for v := range s.trail.data {
		vd := &s.trail.data[v]
		if vd.Reason != RefUndef {
			if newRef, ok := s.arena.RelocTo(to, vd.Reason); ok {
				vd.Reason = newRef
			}
		}
	}

	s.db.Constraints = relocRefs(s.arena, to, s.db.Constraints)
	s.db.Learnts = relocRefs(s.arena, to, s.db.Learnts)
}

// relocRefs relocates every reference in refs into to, compacting out any
// that turn out to already be deleted (a clause can be freed directly by
// internal/simp without the owning list being told, e.g. during backward
// subsumption; the list is trusted to self-heal at the next GC).
func relocRefs(from, to *Arena, refs []ClauseRef) []ClauseRef {
	kept := refs[:0]
	for _, ref := range refs {
		if newRef, ok := from.RelocTo(to, ref); ok {
			kept = append(kept, newRef)
		}
	}
	return kept
}

// loopKind is the outcome of one restart round's inner loop
// (original_source's LoopRes).
type loopKind int

const (
	loopRestart loopKind = iota
	loopSAT
	loopUnsat
	loopAssumpConflict
	loopInterrupted
)

type loopResult struct {
	kind     loopKind
	progress float64
	conflict []Literal
}

// Solve runs an unbounded search with no assumptions, the common case of
// spec.md §1 ("decides satisfiability").
func (s *Solver) Solve() Result {
	s.budget.Off()
	return s.SolveLimited(nil)
}

// SolveLimited runs the Searcher outer loop of spec.md §4.7: restart rounds
// sized by RestartStrategy, with the assumption prefix of spec.md §4.4/§4.9
// walked on every decision. It returns as soon as the search is decided,
// runs out of assumptions to satisfy, or the budget/interrupt fires.
func (s *Solver) SolveLimited(assumptions []Literal) Result {
	if !s.ok {
		return Result{Status: StatusUnsatisfiable}
	}
	s.stats.Solves++

	guard := NewLearningGuard(s.learning)
	guard.Reset(len(s.db.Constraints))

	var restarts uint32
	for {
		nofConflicts := s.restart.ConflictsToGo(restarts)
		res := s.searchRound(nofConflicts, guard, assumptions)

		switch res.kind {
		case loopRestart:
			restarts++
		case loopSAT:
			model := s.buildModel()
			s.backtrackToGround()
			return Result{Status: StatusSatisfiable, Model: model}
		case loopUnsat:
			s.ok = false
			return Result{Status: StatusUnsatisfiable}
		case loopAssumpConflict:
			s.backtrackToGround()
			return Result{Status: StatusAssumptionConflict, Conflict: res.conflict}
		case loopInterrupted:
			return Result{Status: StatusIndeterminate, Progress: res.progress}
		}
	}
}

func (s *Solver) buildModel() []LBool {
	model := make([]LBool, s.trail.NumVars())
	for v := Variable(0); int(v) < len(model); v++ {
		model[v] = s.trail.ValueOfVar(v)
	}
	return model
}

// searchRound runs one restart's worth of search: propagate/analyze/learn on
// every conflict, then either restart, interrupt, reduce/simplify, or make
// the next decision (spec.md §4.7 "Searcher loop"), grounded on
// original_source's Searcher::searchLoop.
func (s *Solver) searchRound(nofConflicts uint64, guard *LearningGuard, assumptions []Literal) loopResult {
	s.stats.Restarts++
	conflLimit := s.stats.Conflicts + nofConflicts

	for {
		if !s.propagateLearnBacktrack(guard) {
			return loopResult{kind: loopUnsat}
		}

		if !s.budget.Within(s.stats.Conflicts, s.watches.Propagations) {
			progress := s.trail.ProgressEstimate()
			s.backtrackToGround()
			return loopResult{kind: loopInterrupted, progress: progress}
		}

		if s.stats.Conflicts >= conflLimit {
			s.backtrackToGround()
			return loopResult{kind: loopRestart}
		}

		if s.trail.DecisionLevel() == 0 {
			if !s.simplify() {
				return loopResult{kind: loopUnsat}
			}
		}

		if float64(len(s.db.Learnts)) >= guard.Border()+float64(s.trail.NumAssigned()) {
			s.db.Reduce(s.arena, s.trail, func(ref ClauseRef) { DetachLazy(s.arena, s.watches, ref) })
			if s.arena.CheckGarbage(s.opts.GCFrac) {
				s.garbageCollect()
			}
		}

		var next Literal
		haveNext := false
		for s.trail.DecisionLevel() < len(assumptions) {
			p := assumptions[s.trail.DecisionLevel()]
			switch s.trail.ValueOfLit(p) {
			case True:
				s.trail.NewDecisionLevel() // dummy level: already satisfied
				continue
			case False:
				conflict := s.analyzer.AnalyzeFinal(s.arena, s.trail, p.Opposite())
				return loopResult{kind: loopAssumpConflict, conflict: conflict}
			default:
				next, haveNext = p, true
			}
			break
		}

		if !haveNext {
			s.stats.Decisions++
			lit, ok, wasRandom := s.heur.PickBranchLiteral(s.trail)
			if !ok {
				return loopResult{kind: loopSAT}
			}
			if wasRandom {
				s.stats.RandomDecisions++
			}
			next = lit
		}

		s.trail.NewDecisionLevel()
		s.trail.Assign(next, RefUndef)
	}
}

// propagateLearnBacktrack drives propagation to a fixpoint, learning a
// clause and backjumping on every conflict, until either propagation
// reaches a fixpoint (returns true) or a ground-level conflict proves the
// problem unsatisfiable (returns false) — spec.md §4.7 steps 1-2.
func (s *Solver) propagateLearnBacktrack(guard *LearningGuard) bool {
	for {
		confl, hasConflict := s.watches.Propagate(s.arena, s.trail)
		if !hasConflict {
			return true
		}
		s.stats.Conflicts++

		if s.trail.DecisionLevel() == 0 {
			return false
		}

		learnt, backtrackLevel := s.analyzer.Analyze(s.arena, s.trail, confl,
			func(v Variable) { s.heur.BumpActivity(v) },
			func(ref ClauseRef) {
				if s.arena.Clause(ref).learnt {
					s.db.BumpActivity(s.arena, ref)
				}
			})

		s.backtrackTo(backtrackLevel)

		if len(learnt) == 1 {
			s.trail.Assign(learnt[0], RefUndef)
		} else {
			ref := s.arena.Alloc(learnt, true, s.hasExtra)
			// learnt[0] (the asserting literal) has no level yet at this
			// point, so LBD only counts the already-assigned tail.
			s.arena.Clause(ref).SetLBD(computeLBD(s.trail, learnt[1:]))
			s.db.LearnClause(s.arena, ref)
			Attach(s.arena, s.watches, ref)
			s.trail.Assign(learnt[0], ref)
		}

		s.stats.MaxLiterals = s.analyzer.MaxLiterals
		s.stats.TotLiterals = s.analyzer.TotLiterals

		s.heur.DecayActivity()
		s.db.DecayActivity()

		if guard.Bump() {
			s.logSearchStats(guard)
		}
	}
}

func (s *Solver) logSearchStats(guard *LearningGuard) {
	if s.Verbosity < 1 {
		return
	}
	litsPerLearnt := 0.0
	if n := len(s.db.Learnts); n > 0 {
		total := 0
		for _, ref := range s.db.Learnts {
			total += len(s.arena.Literals(ref))
		}
		litsPerLearnt = float64(total) / float64(n)
	}
	fmt.Printf(
		"c %9d | %7d %8d | %8.0f %8d %6.1f | %6.2f %%\n",
		s.stats.Conflicts,
		s.NumVariables()-s.trail.NumAssigned(),
		s.NumConstraints(),
		guard.Border(),
		len(s.db.Learnts),
		litsPerLearnt,
		s.trail.ProgressEstimate()*100,
	)
}
