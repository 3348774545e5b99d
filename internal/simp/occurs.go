package simp

import "github.com/rhartert/yass/internal/sat"

// occLine is one variable's occurrence list: the clauses mentioning it,
// possibly with stale (deleted) entries pending lazy cleanup.
type occLine struct {
	refs  []sat.ClauseRef
	dirty bool
}

// occLists maps each variable to the original clauses that mention it,
// grounded on original_source's OccLists (src/sat/minisat/simp/elim_queue.rs).
// Deletions are batched: removing a single reference from the middle of a
// busy occurrence list is deferred (Smudge) and paid for lazily the next
// time the list is actually read (Lookup), mirroring the original's
// dirty/retain split.
type occLists struct {
	lines []occLine
}

func newOccLists() *occLists {
	return &occLists{}
}

// Grow registers one more variable with an empty occurrence list.
func (o *occLists) Grow() {
	o.lines = append(o.lines, occLine{})
}

// Push records that clause ref mentions v.
func (o *occLists) Push(v sat.Variable, ref sat.ClauseRef) {
	o.lines[v].refs = append(o.lines[v].refs, ref)
}

// Remove immediately drops ref from v's occurrence list.
func (o *occLists) Remove(v sat.Variable, ref sat.ClauseRef) {
	l := &o.lines[v]
	j := 0
	for _, r := range l.refs {
		if r != ref {
			l.refs[j] = r
			j++
		}
	}
	l.refs = l.refs[:j]
}

// Smudge marks v's occurrence list as containing at least one deleted
// reference, to be compacted out on the next Lookup.
func (o *occLists) Smudge(v sat.Variable) {
	o.lines[v].dirty = true
}

// Lookup returns the live occurrences of v, compacting out deleted
// references first if the list was smudged.
func (o *occLists) Lookup(v sat.Variable, arena *sat.Arena) []sat.ClauseRef {
	l := &o.lines[v]
	if l.dirty {
		j := 0
		for _, r := range l.refs {
			if !arena.IsDeleted(r) {
				l.refs[j] = r
				j++
			}
		}
		l.refs = l.refs[:j]
		l.dirty = false
	}
	return l.refs
}

// Clear drops v's occurrence list entirely, once v has been eliminated and
// every clause mentioning it has been removed.
func (o *occLists) Clear(v sat.Variable) {
	o.lines[v] = occLine{}
}

// RelocGC compacts every dirty list and relocates its references into the
// new arena, called from the same GC pass the core solver drives.
func (o *occLists) RelocGC(from, to *sat.Arena) {
	for i := range o.lines {
		l := &o.lines[i]
		j := 0
		for _, r := range l.refs {
			if newRef, ok := from.RelocTo(to, r); ok {
				l.refs[j] = newRef
				j++
			}
		}
		l.refs = l.refs[:j]
		l.dirty = false
	}
}
