package sat

// ClauseRef is an opaque reference to a clause held in an Arena. It remains
// valid until the Arena it came from is garbage collected, at which point it
// must be looked up through Arena.RelocTo (spec.md §3, "Clause reference").
type ClauseRef uint32

// RefUndef is the distinguished "no clause" reference, used as a reason for
// decisions and ground-level facts (spec.md §3, "Assignment").
const RefUndef ClauseRef = 1<<32 - 1

// clauseRecord is a single clause's storage inside an Arena: a header of
// mark bits plus its literal payload. It is the Go analogue of
// mishun/minisat-rust's ClauseHeader+Clause (original_source/src/sat/formula/
// clause.rs) realized as a plain struct rather than a hand-packed byte
// region — idiomatic for Go, and still satisfying the "stable opaque
// reference, relocated in bulk at GC" contract of spec.md §3/§4.1.
type clauseRecord struct {
	literals []Literal

	deleted bool
	touched bool
	learnt  bool
	hasExtra bool
	reloc   ClauseRef // forwarding reference, set the first time this record is relocated

	activity    float32 // learnt clauses: bumped on participation in conflicts
	abstraction uint32  // original clauses: OR of literal abstractions, for subsumption
	lbd         uint32  // literal block distance, diagnostic only (see SPEC_FULL.md §7)

	// scanFrom resumes the "find a new literal to watch" scan where the
	// previous call left off, mirroring the teacher's Clause.prevPos
	// optimization (sat/clauses.go) to avoid rescanning long clauses
	// from position 2 every time.
	scanFrom int
}

// Arena is a slab allocator yielding stable ClauseRef handles for
// variable-length clauses (spec.md §3/§4.1). Deletion only marks a record;
// space is reclaimed in bulk by a relocating GC driven by the owner
// (Solver.garbageCollect).
type Arena struct {
	records []clauseRecord
	size    int // words allocated (see clauseWords), for the garbage_frac heuristic
	wasted  int
}

// clauseWords returns the approximate word-count "footprint" of a clause
// with n literals, matching the teacher/original's `4*(1+len+hasExtra)`
// accounting closely enough to drive the same garbage_frac heuristic.
func clauseWords(n int, hasExtra bool) int {
	extra := 0
	if hasExtra {
		extra = 1
	}
	return 1 + n + extra
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Alloc allocates a new clause with the given literals, returning its
// reference. The literal slice is copied; callers may reuse their buffer.
func (a *Arena) Alloc(lits []Literal, learnt bool, hasExtra bool) ClauseRef {
	rec := clauseRecord{
		literals: append([]Literal(nil), lits...),
		learnt:   learnt,
		hasExtra: hasExtra,
		reloc:    RefUndef,
		scanFrom: 2,
	}
	if hasExtra && !learnt {
		for _, l := range lits {
			rec.abstraction |= l.abstraction()
		}
	}
	a.records = append(a.records, rec)
	a.size += clauseWords(len(lits), hasExtra)
	return ClauseRef(len(a.records) - 1)
}

// Clause returns a pointer to the clause record for ref. The pointer must
// not be retained across a call to Alloc, which may grow the backing slice
// and invalidate it (see SPEC_FULL.md §3 and spec.md's Design Notes on
// mutable aliasing); every hot-path access re-derives it via this method.
func (a *Arena) Clause(ref ClauseRef) *clauseRecord {
	return &a.records[ref]
}

// Literals returns the live literals of ref.
func (a *Arena) Literals(ref ClauseRef) []Literal {
	return a.records[ref].literals
}

// Abstraction returns the clause's abstraction bitmask, computed at
// allocation time and recomputed by SetLiterals for non-learnt clauses with
// hasExtra set; it is zero otherwise (internal/simp's subsumption checks;
// spec.md §4.8).
func (c *clauseRecord) Abstraction() uint32 {
	return c.abstraction
}

// IsLearnt reports whether ref was learnt during search rather than part of
// the original problem (internal/simp only ever operates on the latter).
func (c *clauseRecord) IsLearnt() bool {
	return c.learnt
}

// SetLiterals replaces ref's literal payload in place, keeping its arena
// slot, and recomputes its abstraction. It does not touch the watch lists:
// internal/simp's clause strengthening, which removes exactly one literal
// from a live clause, detaches the watches before the call and re-attaches
// them after.
func (c *clauseRecord) SetLiterals(lits []Literal) {
	c.literals = lits
	c.abstraction = 0
	if c.hasExtra && !c.learnt {
		for _, l := range lits {
			c.abstraction |= l.abstraction()
		}
	}
}

// LBD returns the clause's literal block distance, as last set by SetLBD —
// zero until a learnt clause's first computation (spec.md §7/SPEC_FULL.md §7).
func (c *clauseRecord) LBD() uint32 {
	return c.lbd
}

// SetLBD records a freshly computed literal block distance for a learnt
// clause (internal/sat's learning step; diagnostic only, never consulted by
// ClauseDatabase.Reduce's activity-based policy).
func (c *clauseRecord) SetLBD(lbd uint32) {
	c.lbd = lbd
}

// IsDeleted reports whether ref has been marked deleted.
func (a *Arena) IsDeleted(ref ClauseRef) bool {
	return a.records[ref].deleted
}

// Free marks ref as deleted and accounts its footprint as wasted. The
// record's literal slice is dropped so it can be garbage collected by Go
// even if something still (incorrectly) holds the reference.
func (a *Arena) Free(ref ClauseRef) {
	r := &a.records[ref]
	if r.deleted {
		return
	}
	r.deleted = true
	a.wasted += clauseWords(len(r.literals), r.hasExtra)
	r.literals = nil
}

// CheckGarbage reports whether the fraction of wasted space exceeds frac,
// the trigger condition from spec.md §4.1/§9 (garbage_frac/simp_garbage_frac).
func (a *Arena) CheckGarbage(frac float64) bool {
	return float64(a.wasted) > float64(a.size)*frac
}

// RelocTo copies the live clause at ref from a into dst, recording a
// forwarding reference in a's record so that relocating the same clause
// twice (it may be reachable from several holders: watches, reasons, DB
// lists, simplifier queues) is idempotent. It returns (RefUndef, false) if
// the clause was already deleted.
func (a *Arena) RelocTo(dst *Arena, ref ClauseRef) (ClauseRef, bool) {
	r := &a.records[ref]
	if r.deleted {
		return RefUndef, false
	}
	if r.reloc != RefUndef {
		return r.reloc, true
	}
	newRef := dst.Alloc(r.literals, r.learnt, r.hasExtra)
	newRec := dst.Clause(newRef)
	newRec.activity = r.activity
	newRec.abstraction = r.abstraction
	newRec.lbd = r.lbd
	newRec.scanFrom = r.scanFrom
	r.reloc = newRef
	return newRef, true
}
