package sat

// RestartStrategy schedules the inner-loop conflict budget between restarts
// (spec.md §4.7), grounded on original_source's RestartStrategy/luby.
type RestartStrategy struct {
	LubyRestart  bool
	RestartFirst float64
	RestartInc   float64
}

// ConflictsToGo returns the conflict budget for the restarts-th inner loop.
func (r RestartStrategy) ConflictsToGo(restarts uint32) uint64 {
	var base float64
	if r.LubyRestart {
		base = luby(r.RestartInc, restarts)
	} else {
		base = powInt(r.RestartInc, restarts)
	}
	return uint64(base * r.RestartFirst)
}

// luby returns the Luby-sequence value y^seq for index x, where seq is the
// subsequence length containing x. Direct translation of
// original_source/src/sat/minisat/search/luby.rs.
func luby(y float64, x uint32) float64 {
	size := uint32(1)
	seq := uint32(0)
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) >> 1
		seq--
		x = x % size
	}
	return powInt(y, seq)
}

func powInt(base float64, exp uint32) float64 {
	result := 1.0
	for i := uint32(0); i < exp; i++ {
		result *= base
	}
	return result
}

// LearningStrategy configures how the learnt-clause ceiling grows over the
// course of a search (spec.md §4.7's LearningGuard, --min-learnts).
type LearningStrategy struct {
	MinLearntsLim        int
	SizeFactor            float64
	SizeInc               float64
	SizeAdjustStartConfl  int
	SizeAdjustInc         float64
}

// LearningGuard tracks the current learnt-clause ceiling and periodically
// grows it, grounded on original_source's LearningGuard.
type LearningGuard struct {
	settings        LearningStrategy
	maxLearnts      float64
	sizeAdjustConfl float64
	sizeAdjustCnt   int
}

// NewLearningGuard returns a guard configured by settings; call Reset before
// first use.
func NewLearningGuard(settings LearningStrategy) *LearningGuard {
	return &LearningGuard{settings: settings}
}

// Reset (re)initializes the ceiling relative to the number of original
// clauses; SolveLimited calls it once at the start of each solve.
func (g *LearningGuard) Reset(numConstraints int) {
	g.maxLearnts = float64(numConstraints) * g.settings.SizeFactor
	if min := float64(g.settings.MinLearntsLim); g.maxLearnts < min {
		g.maxLearnts = min
	}
	g.sizeAdjustConfl = float64(g.settings.SizeAdjustStartConfl)
	g.sizeAdjustCnt = g.settings.SizeAdjustStartConfl
}

// Bump decrements the adjustment counter, growing the ceiling once it hits
// zero. Call once per conflict; returns true iff the ceiling grew.
func (g *LearningGuard) Bump() bool {
	g.sizeAdjustCnt--
	if g.sizeAdjustCnt != 0 {
		return false
	}
	g.sizeAdjustConfl *= g.settings.SizeAdjustInc
	g.sizeAdjustCnt = int(g.sizeAdjustConfl)
	g.maxLearnts *= g.settings.SizeInc
	return true
}

// Border returns the current learnt-clause ceiling.
func (g *LearningGuard) Border() float64 {
	return g.maxLearnts
}
