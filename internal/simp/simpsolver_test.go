package simp

import (
	"testing"

	"github.com/rhartert/yass/internal/sat"
)

// TestEliminationPreservesModel exercises spec.md §8 scenario 5: p cnf 2 2
// with clauses (1 2) and (1 -2). With elimination on, variable 2 resolves
// away (both of its occurrences combine to the unit clause "1"), and the
// remaining search must still report variable 1 true.
func TestEliminationPreservesModel(t *testing.T) {
	cfg := DefaultSimpConfig
	s := NewSimpSolver(cfg)

	v1 := s.AddVariable()
	v2 := s.AddVariable()

	if !s.AddClause([]sat.Literal{sat.PositiveLiteral(v1), sat.PositiveLiteral(v2)}) {
		t.Fatal("AddClause rejected (1 2)")
	}
	if !s.AddClause([]sat.Literal{sat.PositiveLiteral(v1), sat.NegativeLiteral(v2)}) {
		t.Fatal("AddClause rejected (1 -2)")
	}

	if !s.Eliminate(false) {
		t.Fatal("Eliminate reported unsatisfiable on a satisfiable instance")
	}

	result := s.Solve()
	if result.Status != sat.StatusSatisfiable {
		t.Fatalf("status = %v, want StatusSatisfiable", result.Status)
	}
	if result.Model[v1] != sat.True {
		t.Errorf("model[v1] = %v, want True", result.Model[v1])
	}
}

func TestSimpSolverUnsat(t *testing.T) {
	s := NewSimpSolver(DefaultSimpConfig)
	v := s.AddVariable()

	s.AddClause([]sat.Literal{sat.PositiveLiteral(v)})
	s.AddClause([]sat.Literal{sat.NegativeLiteral(v)})

	if s.Eliminate(false) {
		result := s.Solve()
		if result.Status != sat.StatusUnsatisfiable {
			t.Fatalf("status = %v, want StatusUnsatisfiable", result.Status)
		}
	}
	// Eliminate itself is allowed to detect the conflict and return false.
}
