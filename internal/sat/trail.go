package sat

// varData records how a variable came to be assigned (spec.md §3,
// "Assignment"). A Reason of RefUndef means the variable is a decision or a
// ground-level unit; otherwise its first literal was the assigned literal
// and every other literal of the clause was false at assignment time.
type varData struct {
	Reason ClauseRef
	Level  int32
}

// Trail holds the current assignment, the per-variable reason/level data,
// and the chronological list of assigned literals, sliced into decision
// levels by trailLim (spec.md §3, "Trail"). Level 0 is the ground level.
type Trail struct {
	assigns  []LBool
	data     []varData
	trail    []Literal
	trailLim []int
	qhead    int
}

func NewTrail() *Trail {
	return &Trail{}
}

// Grow adds a fresh, unassigned variable to the trail's domain.
func (t *Trail) Grow() {
	t.assigns = append(t.assigns, Undef, Undef) // one slot per literal polarity... see NumVars
	t.data = append(t.data, varData{Reason: RefUndef, Level: -1})
}

// NumVars returns the number of variables currently tracked.
func (t *Trail) NumVars() Variable {
	return Variable(len(t.data))
}

// DecisionLevel returns the current decision level (0 = ground level).
func (t *Trail) DecisionLevel() int {
	return len(t.trailLim)
}

// NumAssigned returns the number of currently assigned variables.
func (t *Trail) NumAssigned() int {
	return len(t.trail)
}

func (t *Trail) ValueOfLit(l Literal) LBool {
	return t.assigns[l]
}

func (t *Trail) ValueOfVar(v Variable) LBool {
	return t.assigns[PositiveLiteral(v)]
}

func (t *Trail) IsUndef(v Variable) bool {
	return t.ValueOfVar(v) == Undef
}

func (t *Trail) Reason(v Variable) ClauseRef {
	return t.data[v].Reason
}

func (t *Trail) Level(v Variable) int {
	return int(t.data[v].Level)
}

// Assign requires l to be currently undefined. It records True for l and
// False for its complement, stamps the variable's level and reason, and
// appends l to the trail (spec.md §4.2).
func (t *Trail) Assign(l Literal, reason ClauseRef) {
	if t.assigns[l] != Undef {
		panic("sat: assigning an already-assigned literal")
	}
	v := l.VarID()
	t.assigns[l] = True
	t.assigns[l.Opposite()] = False
	t.data[v] = varData{Reason: reason, Level: int32(t.DecisionLevel())}
	t.trail = append(t.trail, l)
}

// NewDecisionLevel opens a new decision level at the current trail length.
func (t *Trail) NewDecisionLevel() {
	t.trailLim = append(t.trailLim, len(t.trail))
}

// Dequeue pops the next literal to propagate, or (0, false) if the queue
// (the trail suffix at/after qhead) is empty.
func (t *Trail) Dequeue() (Literal, bool) {
	if t.qhead >= len(t.trail) {
		return 0, false
	}
	l := t.trail[t.qhead]
	t.qhead++
	return l, true
}

// PendingCount returns how many enqueued literals have not yet been dequeued.
func (t *Trail) PendingCount() int {
	return len(t.trail) - t.qhead
}

// LiteralAt returns the i-th literal assigned overall (0-indexed from the
// ground level), used by conflict analysis to walk the trail downward.
func (t *Trail) LiteralAt(i int) Literal {
	return t.trail[i]
}

// GroundAssignCount returns how many literals were assigned at the ground
// decision level, used by the simplifying subsumption queue to walk newly
// fixed units (spec.md §4.8).
func (t *Trail) GroundAssignCount() int {
	if len(t.trailLim) == 0 {
		return len(t.trail)
	}
	return t.trailLim[0]
}

// TrailAboveGround returns the literals assigned above the ground level, in
// assignment order (walked backwards by Analyzer.AnalyzeFinal).
func (t *Trail) TrailAboveGround() []Literal {
	if len(t.trailLim) == 0 {
		return nil
	}
	return t.trail[t.trailLim[0]:]
}

// BacktrackTo truncates the trail and decision-level stack down to level,
// invoking onUndo for every literal undone (in LIFO order), then resetting
// its assignment and reason and clamping qhead (spec.md §4.2).
func (t *Trail) BacktrackTo(level int, onUndo func(Literal)) {
	if t.DecisionLevel() <= level {
		return
	}
	target := t.trailLim[level]
	for i := len(t.trail) - 1; i >= target; i-- {
		l := t.trail[i]
		v := l.VarID()
		onUndo(l)
		t.assigns[l] = Undef
		t.assigns[l.Opposite()] = Undef
		t.data[v].Reason = RefUndef
		t.data[v].Level = -1
	}
	t.trail = t.trail[:target]
	t.trailLim = t.trailLim[:level]
	if t.qhead > target {
		t.qhead = target
	}
}

// IsReasonFor reports whether ref is currently "locking" firstLit: firstLit
// is true and its reason is ref. It does not itself check that firstLit is
// ref's first literal; the caller (Locked) passes that literal. Used by
// clause database reduction to protect locked clauses (spec.md §4.2/§4.6).
func (t *Trail) IsReasonFor(ref ClauseRef, firstLit Literal) bool {
	if t.ValueOfLit(firstLit) != True {
		return false
	}
	return t.data[firstLit.VarID()].Reason == ref
}

// ProgressEstimate returns a rough [0, 1] measure of how much of the
// variable space has been explored, used to report Interrupted results
// (spec.md §4.10/§7), grounded on original_source's progress_estimate: each
// decision level contributes trail-length-at-that-level scaled by a
// geometrically shrinking weight.
func (t *Trail) ProgressEstimate() float64 {
	n := float64(t.NumVars())
	if n == 0 {
		return 1
	}
	unit := 1.0 / n
	progress := 0.0
	factor := unit
	levels := append(append([]int(nil), t.trailLim...), len(t.trail))
	prev := 0
	for _, end := range levels {
		progress += factor * float64(end-prev)
		factor *= unit
		prev = end
	}
	return progress
}
