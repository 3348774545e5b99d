package sat

import "testing"

func newTestSolver() *Solver {
	return NewSolver(DefaultOptions, DefaultRestartStrategy, DefaultLearningStrategy)
}

func addVars(s *Solver, n int) []Variable {
	vs := make([]Variable, n)
	for i := range vs {
		vs[i] = s.AddVariable()
	}
	return vs
}

func lit(v Variable, positive bool) Literal {
	if positive {
		return PositiveLiteral(v)
	}
	return NegativeLiteral(v)
}

func TestSolveUnitClause(t *testing.T) {
	s := newTestSolver()
	v := addVars(s, 1)[0]
	if !s.AddClause([]Literal{PositiveLiteral(v)}) {
		t.Fatal("AddClause rejected a satisfiable unit clause")
	}

	result := s.Solve()
	if result.Status != StatusSatisfiable {
		t.Fatalf("status = %v, want StatusSatisfiable", result.Status)
	}
	if result.Model[v] != True {
		t.Errorf("model[%d] = %v, want True", v, result.Model[v])
	}
}

func TestSolveSimpleUnsat(t *testing.T) {
	s := newTestSolver()
	v := addVars(s, 1)[0]
	if !s.AddClause([]Literal{PositiveLiteral(v)}) {
		t.Fatal("AddClause rejected first unit clause")
	}
	// the second clause directly contradicts the first, so AddClause may
	// detect unsatisfiability immediately or leave it for Solve to find.
	s.AddClause([]Literal{NegativeLiteral(v)})

	result := s.Solve()
	if result.Status != StatusUnsatisfiable {
		t.Fatalf("status = %v, want StatusUnsatisfiable", result.Status)
	}
}

func TestSolveThreeClauseSatisfiable(t *testing.T) {
	s := newTestSolver()
	vs := addVars(s, 3)
	v1, v2, v3 := vs[0], vs[1], vs[2]

	clauses := [][]Literal{
		{lit(v1, true), lit(v2, true)},
		{lit(v1, false), lit(v3, true)},
		{lit(v2, false), lit(v3, false)},
	}
	for _, c := range clauses {
		if !s.AddClause(c) {
			t.Fatalf("AddClause(%v) unexpectedly rejected", c)
		}
	}

	result := s.Solve()
	if result.Status != StatusSatisfiable {
		t.Fatalf("status = %v, want StatusSatisfiable", result.Status)
	}
	if !checkClausesSatisfied(clauses, result.Model) {
		t.Errorf("model %v does not satisfy all clauses", result.Model)
	}
}

// pigeonholeClauses encodes PHP(pigeons, holes): every pigeon sits in some
// hole and no hole holds two pigeons. It is unsatisfiable whenever pigeons >
// holes.
func pigeonholeClauses(pigeons, holes int) (numVars int, clauses [][]int) {
	v := func(p, h int) int { return p*holes + h + 1 }
	numVars = pigeons * holes

	for p := 0; p < pigeons; p++ {
		c := make([]int, holes)
		for h := 0; h < holes; h++ {
			c[h] = v(p, h)
		}
		clauses = append(clauses, c)
	}
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				clauses = append(clauses, []int{-v(p1, h), -v(p2, h)})
			}
		}
	}
	return numVars, clauses
}

func TestSolvePigeonholeUnsat(t *testing.T) {
	s := newTestSolver()
	numVars, intClauses := pigeonholeClauses(3, 2)
	vs := addVars(s, numVars)

	for _, ic := range intClauses {
		c := make([]Literal, len(ic))
		for i, n := range ic {
			if n < 0 {
				c[i] = NegativeLiteral(vs[-n-1])
			} else {
				c[i] = PositiveLiteral(vs[n-1])
			}
		}
		s.AddClause(c)
	}

	result := s.Solve()
	if result.Status != StatusUnsatisfiable {
		t.Fatalf("status = %v, want StatusUnsatisfiable (PHP(3,2) has no solution)", result.Status)
	}
}

func TestSolveZeroBudgetIndeterminate(t *testing.T) {
	s := newTestSolver()
	numVars, intClauses := pigeonholeClauses(4, 3)
	vs := addVars(s, numVars)
	for _, ic := range intClauses {
		c := make([]Literal, len(ic))
		for i, n := range ic {
			if n < 0 {
				c[i] = NegativeLiteral(vs[-n-1])
			} else {
				c[i] = PositiveLiteral(vs[n-1])
			}
		}
		s.AddClause(c)
	}

	s.Budget().SetConflictBudget(0)
	result := s.SolveLimited(nil)
	if result.Status != StatusIndeterminate {
		t.Fatalf("status = %v, want StatusIndeterminate under a zero conflict budget", result.Status)
	}
	if result.Progress < 0 || result.Progress > 1 {
		t.Errorf("progress = %f, want a value in [0, 1]", result.Progress)
	}
}

func checkClausesSatisfied(clauses [][]Literal, model []LBool) bool {
	for _, c := range clauses {
		satisfied := false
		for _, l := range c {
			want := True
			if !l.IsPositive() {
				want = False
			}
			if model[l.VarID()] == want {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
