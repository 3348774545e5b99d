package sat

import "github.com/rhartert/yagh"

// PhaseSaving selects which of a variable's previous polarities are reused
// when it is next branched on (spec.md §4.5).
type PhaseSaving int

const (
	PhaseSavingNone PhaseSaving = iota
	PhaseSavingLimited
	PhaseSavingFull
)

// Heuristic is the VSIDS decision heuristic: a max-heap of variables keyed by
// activity (grounded on the teacher's internal/sat/ordering.go, generalized
// from a fixed phase-saving bool to the three-level PhaseSaving of spec.md
// §4.5 and extended with a decision-eligibility flag so the simplificator can
// retire eliminated variables from consideration, spec.md §3).
type Heuristic struct {
	heap *yagh.IntMap[float64]

	activity []float64
	varInc   float64
	varDecay float64

	phases       []LBool
	userPolarity []LBool
	decidable    []bool
	phaseSaving  PhaseSaving

	// queued/queuePos mirror which variables currently sit in heap, since
	// yagh.IntMap exposes no way to enumerate or index into its contents.
	// Kept in lockstep with every heap.Put/heap.Pop so the random-decision
	// probe can draw uniformly from the heap's current membership the way
	// original_source's pick_branch_var indexes straight into its VarHeap,
	// rather than over every variable ever added.
	queued   []Variable
	queuePos []int32 // per-variable position in queued, -1 if absent

	randomVarFreq  float64
	randomPolarity bool
	rng            *rng
}

// NewHeuristic returns a heuristic with no variables yet. seed seeds the
// deterministic random-decision/random-polarity generator.
func NewHeuristic(varDecay, randomVarFreq float64, randomPolarity bool, phaseSaving PhaseSaving, seed float64) *Heuristic {
	return &Heuristic{
		heap:           yagh.New[float64](0),
		varInc:         1,
		varDecay:       varDecay,
		phaseSaving:    phaseSaving,
		randomVarFreq:  randomVarFreq,
		randomPolarity: randomPolarity,
		rng:            newRNG(seed),
	}
}

// Grow registers one more decision-eligible variable, defaulting to a True
// saved phase (as the original does) and no user-forced polarity.
func (h *Heuristic) Grow() {
	v := len(h.activity)
	h.activity = append(h.activity, 0)
	h.phases = append(h.phases, True)
	h.userPolarity = append(h.userPolarity, Undef)
	h.decidable = append(h.decidable, true)
	h.queuePos = append(h.queuePos, -1)
	h.heap.GrowBy(1)
	h.heap.Put(v, 0)
	h.queuePush(Variable(v))
}

// queuePush records v as present in the heap, if it isn't already.
func (h *Heuristic) queuePush(v Variable) {
	if h.queuePos[v] >= 0 {
		return
	}
	h.queuePos[v] = int32(len(h.queued))
	h.queued = append(h.queued, v)
}

// queueRemove drops v from the mirrored membership list, if present.
func (h *Heuristic) queueRemove(v Variable) {
	pos := h.queuePos[v]
	if pos < 0 {
		return
	}
	last := len(h.queued) - 1
	lastVar := h.queued[last]
	h.queued[pos] = lastVar
	h.queuePos[lastVar] = pos
	h.queued = h.queued[:last]
	h.queuePos[v] = -1
}

// SetDecidable marks v eligible or ineligible for branching. Variable
// elimination (internal/simp) calls this with false; once popped from the
// heap an ineligible variable is never reinserted.
func (h *Heuristic) SetDecidable(v Variable, decidable bool) {
	h.decidable[v] = decidable
}

// SetUserPolarity fixes v's branch polarity, overriding phase saving and
// random polarity. Passing Undef clears the override.
func (h *Heuristic) SetUserPolarity(v Variable, pol LBool) {
	h.userPolarity[v] = pol
}

// BumpActivity adds the current activity increment to v's score, rescaling
// all scores if the increment overflows (spec.md §4.5).
func (h *Heuristic) BumpActivity(v Variable) {
	newAct := h.activity[v] + h.varInc
	h.activity[v] = newAct
	if h.heap.Contains(int(v)) {
		h.heap.Put(int(v), -newAct)
	}
	if newAct > 1e100 {
		h.rescale()
	}
}

func (h *Heuristic) rescale() {
	h.varInc *= 1e-100
	for v, a := range h.activity {
		na := a * 1e-100
		h.activity[v] = na
		if h.heap.Contains(v) {
			h.heap.Put(v, -na)
		}
	}
}

// DecayActivity grows the activity increment, implementing decay without
// touching every variable's stored score (spec.md §4.5).
func (h *Heuristic) DecayActivity() {
	h.varInc /= h.varDecay
	if h.varInc > 1e100 {
		h.rescale()
	}
}

// Reinsert returns v to heap contention at its current activity; the caller
// (Trail.BacktrackTo's onUndo callback) invokes this for every undone literal.
func (h *Heuristic) Reinsert(v Variable) {
	h.heap.Put(int(v), -h.activity[v])
	h.queuePush(v)
}

// OnUndo updates phase-saving state and reinserts v into the heap when a
// literal is undone by backtracking. atTopLevel reports whether l was
// assigned at the decision level the backtrack started from (as opposed to
// some lower level also being undone in the same multi-level backjump) —
// the condition PhaseSavingLimited requires before it updates the saved
// phase (spec.md §4.5).
func (h *Heuristic) OnUndo(l Literal, atTopLevel bool) {
	v := l.VarID()
	switch h.phaseSaving {
	case PhaseSavingFull:
		h.phases[v] = Lift(l.IsPositive())
	case PhaseSavingLimited:
		if atTopLevel {
			h.phases[v] = Lift(l.IsPositive())
		}
	}
	h.Reinsert(v)
}

// RebuildHeap drains and repopulates the decision heap with exactly the
// decidable, still-undefined variables, keyed by their current activity.
// Simplify calls this after sweeping satisfied clauses so that variables
// fixed by unit propagation (or retired by elimination) stop cluttering the
// heap, grounded on original_source's rebuildOrderHeap
// (decision_heuristic.rs).
func (h *Heuristic) RebuildHeap(trail *Trail) {
	for {
		if _, ok := h.heap.Pop(); !ok {
			break
		}
	}
	h.queued = h.queued[:0]
	for v := range h.queuePos {
		h.queuePos[v] = -1
	}
	for v := 0; v < len(h.activity); v++ {
		if h.decidable[v] && trail.IsUndef(Variable(v)) {
			h.heap.Put(v, -h.activity[v])
			h.queuePush(Variable(v))
		}
	}
}

// PickBranchLiteral returns the next decision literal, or false if every
// variable is decided/ineligible (spec.md §4.5 steps 1-3). wasRandom reports
// whether the variable was chosen by the random_var_freq probe rather than
// the activity heap, for statistics.
func (h *Heuristic) PickBranchLiteral(trail *Trail) (lit Literal, ok bool, wasRandom bool) {
	if len(h.activity) == 0 {
		return 0, false, false
	}
	if h.randomVarFreq > 0 && h.rng.Chance(h.randomVarFreq) && len(h.queued) > 0 {
		v := h.queued[h.rng.Intn(len(h.queued))]
		if h.decidable[v] && trail.IsUndef(v) {
			return h.polarize(v), true, true
		}
	}
	for {
		next, popped := h.heap.Pop()
		if !popped {
			return 0, false, false
		}
		v := Variable(next.Elem)
		h.queueRemove(v)
		if !h.decidable[v] || !trail.IsUndef(v) {
			continue // assigned, or retired by elimination; drop from the heap
		}
		return h.polarize(v), true, false
	}
}

func (h *Heuristic) polarize(v Variable) Literal {
	if h.userPolarity[v] != Undef {
		if h.userPolarity[v] == True {
			return PositiveLiteral(v)
		}
		return NegativeLiteral(v)
	}
	if h.randomPolarity {
		if h.rng.Chance(0.5) {
			return PositiveLiteral(v)
		}
		return NegativeLiteral(v)
	}
	if h.phases[v] == False {
		return NegativeLiteral(v)
	}
	return PositiveLiteral(v)
}
