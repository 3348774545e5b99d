package simp

import "github.com/rhartert/yass/internal/sat"

// elimClauses is the eliminated-clause log variable elimination appends to:
// for each eliminated variable, one record per clause of its less frequent
// polarity (the other polarity's clauses are not stored), plus a trailing
// unit of the other polarity, used when none of those clauses forces a
// choice. Extend replays the log backwards to recover truth values for
// eliminated variables in a satisfying model, grounded on original_source's
// ElimClauses (src/sat/minisat/search/simplify/elim_clauses.rs).
type elimClauses struct {
	extendModel bool
	literals    []sat.Literal
	sizes       []int
}

func newElimClauses(extendModel bool) *elimClauses {
	return &elimClauses{extendModel: extendModel}
}

// AddUnit records that x should be set true unless some earlier-eliminated
// clause demands otherwise (the "no constraint survives" default for an
// eliminated variable all of whose clauses went to the other polarity).
func (e *elimClauses) AddUnit(x sat.Literal) {
	e.literals = append(e.literals, x)
	e.sizes = append(e.sizes, 1)
}

// AddClause records clause c, which must mention v, so that Extend can later
// force v's polarity whenever c would otherwise be left unsatisfied. v's
// literal is moved to the front of its stored copy so Extend can read it
// without a scan.
func (e *elimClauses) AddClause(v sat.Variable, c []sat.Literal) {
	first := len(e.literals)
	vPos := first
	vFound := false
	for _, lit := range c {
		e.literals = append(e.literals, lit)
		if lit.VarID() == v {
			vFound = true
		} else if !vFound {
			vPos++
		}
	}
	if !vFound {
		panic("simp: eliminated clause does not mention its own variable")
	}
	e.literals[first], e.literals[vPos] = e.literals[vPos], e.literals[first]
	e.sizes = append(e.sizes, len(c))
}

// Extend walks the log in reverse, flipping each eliminated variable's model
// entry to satisfy its recorded clauses unless one is already satisfied —
// exactly the original's reverse replay, which relies on every clause's
// distinguished variable having been placed first by AddClause.
func (e *elimClauses) Extend(model []sat.LBool) {
	if !e.extendModel {
		return
	}
	i := len(e.literals)
	cl := len(e.sizes)
	for cl > 0 && i > 0 {
		cl--
		size := e.sizes[cl]
		i--

		skip := false
		j := size
		for j > 1 {
			if isSatInModel(model, e.literals[i]) {
				skip = true
				break
			}
			j--
			i--
		}

		if !skip {
			flipToSatisfy(model, e.literals[i])
		}

		if i > j-1 {
			i -= j - 1
		} else {
			i = 0
		}
	}
}

func isSatInModel(model []sat.LBool, l sat.Literal) bool {
	v := l.VarID()
	want := sat.True
	if !l.IsPositive() {
		want = sat.False
	}
	return model[v] == want
}

func flipToSatisfy(model []sat.LBool, l sat.Literal) {
	v := l.VarID()
	if l.IsPositive() {
		model[v] = sat.True
	} else {
		model[v] = sat.False
	}
}
