package simp

import (
	"testing"

	"github.com/rhartert/yass/internal/sat"
)

func TestMergeResolvent(t *testing.T) {
	v0, v1, v2 := sat.Variable(0), sat.Variable(1), sat.Variable(2)

	// (v0 v1) and (-v0 v2) resolve on v0 to (v1 v2).
	resolvent, ok := mergeResolvent(v0,
		[]sat.Literal{sat.PositiveLiteral(v0), sat.PositiveLiteral(v1)},
		[]sat.Literal{sat.NegativeLiteral(v0), sat.PositiveLiteral(v2)},
	)
	if !ok {
		t.Fatal("mergeResolvent reported a tautology for a non-tautological pair")
	}
	if !sameLiteralSet(resolvent, []sat.Literal{sat.PositiveLiteral(v1), sat.PositiveLiteral(v2)}) {
		t.Errorf("resolvent = %v, want {v1, v2}", resolvent)
	}
}

func TestMergeResolventTautology(t *testing.T) {
	v0, v1 := sat.Variable(0), sat.Variable(1)

	// (v0 v1) and (-v0 -v1) resolve on v0 to (v1 -v1), a tautology.
	_, ok := mergeResolvent(v0,
		[]sat.Literal{sat.PositiveLiteral(v0), sat.PositiveLiteral(v1)},
		[]sat.Literal{sat.NegativeLiteral(v0), sat.NegativeLiteral(v1)},
	)
	if ok {
		t.Error("mergeResolvent did not detect a tautological resolvent")
	}
}

func sameLiteralSet(a, b []sat.Literal) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[sat.Literal]bool, len(a))
	for _, l := range a {
		seen[l] = true
	}
	for _, l := range b {
		if !seen[l] {
			return false
		}
	}
	return true
}
