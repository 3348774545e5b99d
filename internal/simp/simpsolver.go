package simp

import "github.com/rhartert/yass/internal/sat"

// SimpConfig bundles everything SimpSolver needs to construct its wrapped
// core solver and its own preprocessing pass, grounded on original_source's
// simp::Settings (core options + SimpSettings + extend_model).
type SimpConfig struct {
	Core        sat.Options
	Restart     sat.RestartStrategy
	Learning    sat.LearningStrategy
	Simp        Settings
	ExtendModel bool // whether the caller needs truth values for eliminated variables
}

// DefaultSimpConfig mirrors MiniSat's published defaults across all three
// layers.
var DefaultSimpConfig = SimpConfig{
	Core:        sat.DefaultOptions,
	Restart:     sat.DefaultRestartStrategy,
	Learning:    sat.DefaultLearningStrategy,
	Simp:        DefaultSettings,
	ExtendModel: true,
}

// SimpSolver pairs a *sat.Solver with the preprocessing pass in front of it,
// and the eliminated-clause log needed to recover truth values for variables
// the pass removes, exactly the three pieces original_source's SimpSolver
// composes (src/sat/minisat/simp/mod.rs).
type SimpSolver struct {
	core *sat.Solver
	elim *elimClauses
	simp *Simplificator // nil once simplification has been turned off
}

// NewSimpSolver returns an empty simplifying solver.
func NewSimpSolver(cfg SimpConfig) *SimpSolver {
	core := sat.NewSolver(cfg.Core, cfg.Restart, cfg.Learning)
	core.SetHasExtra(true)
	core.SetRemoveSatisfied(false)
	return &SimpSolver{
		core: core,
		elim: newElimClauses(cfg.ExtendModel),
		simp: NewSimplificator(cfg.Simp),
	}
}

// Core exposes the wrapped solver for capabilities SimpSolver does not
// itself need to intercept (stats, search options).
func (s *SimpSolver) Core() *sat.Solver { return s.core }

func (s *SimpSolver) NumVariables() int   { return s.core.NumVariables() }
func (s *SimpSolver) NumConstraints() int { return s.core.NumConstraints() }
func (s *SimpSolver) Stats() sat.Stats    { return s.core.Stats() }

// AddVariable registers a new variable with both the core solver and the
// preprocessing pass, keeping their per-variable bookkeeping in lockstep.
func (s *SimpSolver) AddVariable() sat.Variable {
	v := s.core.AddVariable()
	if s.simp != nil {
		s.simp.InitVar(v)
	}
	return v
}

// AddClause adds c, routed through the preprocessing pass's occurrence
// bookkeeping while it is active, or straight to the core solver once
// simplification has been turned off.
func (s *SimpSolver) AddClause(c []sat.Literal) bool {
	if s.simp != nil {
		return s.simp.AddClause(s.core, c)
	}
	return s.core.AddClause(c)
}

// Eliminate runs variable elimination to a fixpoint and, if turnOffElim is
// set, permanently disables further simplification afterwards (the
// one-shot preprocess-then-search mode most CLI front ends use).
func (s *SimpSolver) Eliminate(turnOffElim bool) bool {
	if !s.core.Simplify() {
		return false
	}

	var result bool
	if s.simp != nil {
		result = s.simp.Eliminate(s.core, s.elim)
		if !turnOffElim && s.core.Arena().CheckGarbage(s.core.Options().GCFrac) {
			s.simp.garbageCollect(s.core)
		}
	} else {
		result = true
	}

	if turnOffElim {
		s.simpOff()
	}
	return result
}

// simpOff permanently disables the preprocessing pass, restoring the core
// solver's own ground-level sweeping and forcing one final full cleanup —
// grounded on original_source's simpOff, which notes the forced cleanup is
// safe precisely because it only ever happens once.
func (s *SimpSolver) simpOff() {
	if s.simp == nil {
		return
	}
	s.simp = nil
	s.core.SetRemoveSatisfied(true)
	s.core.SetHasExtra(false)
	s.core.Heuristic().RebuildHeap(s.core.Trail())
	s.core.GarbageCollect(nil)
}

// SolveLimited optionally simplifies and eliminates before handing off to
// the core solver's own SolveLimited, extending the returned model to cover
// eliminated variables.
func (s *SimpSolver) SolveLimited(assumptions []sat.Literal, doSimp bool, turnOffSimp bool) sat.Result {
	var result sat.Result
	if s.simp != nil && doSimp {
		result = s.simp.SolveLimited(s.core, s.elim, assumptions)
	} else {
		result = s.core.SolveLimited(assumptions)
	}

	if result.Status == sat.StatusSatisfiable {
		s.elim.Extend(result.Model)
	}
	if turnOffSimp {
		s.simpOff()
	}
	return result
}

// Solve runs an unbounded, fully preprocessed search with no assumptions.
func (s *SimpSolver) Solve() sat.Result {
	s.core.Budget().Off()
	return s.SolveLimited(nil, true, false)
}
