package sat

// watcher is one entry in a literal's watch list: a clause to wake up when
// the watched literal becomes true, plus a blocker literal already known to
// satisfy the clause (letting propagation skip the clause without
// dereferencing it into the arena) — spec.md §3, "Watches".
type watcher struct {
	ref     ClauseRef
	blocker Literal
}

// Watches is the two-watched-literal index over all literals (spec.md §4.3).
// A watch list is marked dirty rather than compacted eagerly; dirty entries
// are purged lazily the next time the list is walked.
type Watches struct {
	lists []watchList
	// scratch is reused across Propagate calls to avoid reallocating a
	// temporary watcher buffer on every invocation (grounded on the
	// teacher's Solver.tmpWatchers in internal/sat/solver.go).
	scratch []watcher

	// Propagations counts literals dequeued and propagated, used to drive
	// budget checks and the periodic-simplify guard (spec.md §5/§4.7).
	Propagations uint64
}

type watchList struct {
	ws    []watcher
	dirty bool
}

func NewWatches() *Watches {
	return &Watches{}
}

// Grow extends the watch index to cover one more variable's two literals.
func (w *Watches) Grow() {
	w.lists = append(w.lists, watchList{}, watchList{})
}

// Attach registers clause ref in the watch lists of ¬lits[0] and ¬lits[1],
// each blocked by the other literal.
func (w *Watches) Attach(ref ClauseRef, lits []Literal) {
	w.watch(lits[0].Opposite(), ref, lits[1])
	w.watch(lits[1].Opposite(), ref, lits[0])
}

func (w *Watches) watch(on Literal, ref ClauseRef, blocker Literal) {
	l := &w.lists[on]
	l.ws = append(l.ws, watcher{ref: ref, blocker: blocker})
}

// DetachStrict immediately removes ref from the watch lists of ¬lits[0] and
// ¬lits[1]. Use DetachLazy instead on a hot path where many clauses are
// removed together (e.g. clause database reduction).
func (w *Watches) DetachStrict(ref ClauseRef, lits []Literal) {
	w.removeFrom(lits[0].Opposite(), ref)
	w.removeFrom(lits[1].Opposite(), ref)
}

func (w *Watches) removeFrom(on Literal, ref ClauseRef) {
	l := &w.lists[on]
	j := 0
	for i := range l.ws {
		if l.ws[i].ref != ref {
			l.ws[j] = l.ws[i]
			j++
		}
	}
	l.ws = l.ws[:j]
}

// DetachLazy marks the watch lists of ¬lits[0] and ¬lits[1] dirty; deleted
// clauses are skipped and compacted out the next time each list is scanned.
func (w *Watches) DetachLazy(lits []Literal) {
	w.lists[lits[0].Opposite()].dirty = true
	w.lists[lits[1].Opposite()].dirty = true
}

func (w *Watches) cleanIfDirty(on Literal, arena *Arena) {
	l := &w.lists[on]
	if !l.dirty {
		return
	}
	j := 0
	for i := range l.ws {
		if !arena.IsDeleted(l.ws[i].ref) {
			l.ws[j] = l.ws[i]
			j++
		}
	}
	l.ws = l.ws[:j]
	l.dirty = false
}

// Propagate drains the trail's pending queue, unit-propagating every newly
// assigned literal against its watchers (the five-step algorithm in spec.md
// §4.3). It returns the conflicting clause reference, or (RefUndef, false)
// if propagation reached a fixpoint. On conflict the propagation queue is
// left empty, per the contract on Assignment/Trail.
func (w *Watches) Propagate(arena *Arena, trail *Trail) (ClauseRef, bool) {
	for {
		p, ok := trail.Dequeue()
		if !ok {
			return RefUndef, false
		}
		w.Propagations++

		w.cleanIfDirty(p, arena)
		list := &w.lists[p]
		w.scratch = append(w.scratch[:0], list.ws...)
		list.ws = list.ws[:0]

		notP := p.Opposite()
		for i := 0; i < len(w.scratch); i++ {
			ws := w.scratch[i]

			// Step 1: skip clauses already known satisfied by their blocker.
			if trail.ValueOfLit(ws.blocker) == True {
				list.ws = append(list.ws, ws)
				continue
			}

			c := arena.Clause(ws.ref)

			// Step 2: make literals[1] the falsified watched literal.
			if c.literals[0] == notP {
				c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
			}

			// Step 3: if literals[0] is already true, the clause is satisfied;
			// update the blocker and keep watching p.
			first := c.literals[0]
			if first != ws.blocker && trail.ValueOfLit(first) == True {
				list.ws = append(list.ws, watcher{ref: ws.ref, blocker: first})
				continue
			}

			// Step 4: scan for a new, non-false literal to watch.
			if newIdx, found := w.findNewWatch(c, trail); found {
				c.literals[1], c.literals[newIdx] = c.literals[newIdx], c.literals[1]
				c.scanFrom = newIdx
				w.watch(c.literals[1].Opposite(), ws.ref, c.literals[0])
				continue
			}

			// Step 5: the clause is unit (or conflicting) under the
			// assignment; literals[0] must become true.
			list.ws = append(list.ws, watcher{ref: ws.ref, blocker: first})
			if trail.ValueOfLit(first) == False {
				// Conflict: keep the remaining watchers and flush the queue.
				list.ws = append(list.ws, w.scratch[i+1:]...)
				trail.qhead = len(trail.trail)
				return ws.ref, true
			}
			trail.Assign(first, ws.ref)
		}
	}
}

// findNewWatch scans c.literals[2:] for a literal that is not false,
// resuming from the clause's scanFrom cursor and wrapping around — the
// teacher's prevPos optimization (sat/clauses.go) — to avoid rescanning
// long clauses from position 2 on every call. It reports the index found,
// leaving the swap to the caller (which also needs to issue the new watch).
func (w *Watches) findNewWatch(c *clauseRecord, trail *Trail) (int, bool) {
	n := len(c.literals)
	if c.scanFrom < 2 || c.scanFrom >= n {
		c.scanFrom = 2
	}
	for i := c.scanFrom; i < n; i++ {
		if trail.ValueOfLit(c.literals[i]) != False {
			return i, true
		}
	}
	for i := 2; i < c.scanFrom; i++ {
		if trail.ValueOfLit(c.literals[i]) != False {
			return i, true
		}
	}
	return 0, false
}
