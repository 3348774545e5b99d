package sat

import "testing"

func TestLiteralAlgebra(t *testing.T) {
	v := Variable(3)
	pos := PositiveLiteral(v)
	neg := NegativeLiteral(v)

	if !pos.IsPositive() {
		t.Errorf("PositiveLiteral(%d) is not positive", v)
	}
	if neg.IsPositive() {
		t.Errorf("NegativeLiteral(%d) is positive", v)
	}
	if pos.VarID() != v || neg.VarID() != v {
		t.Errorf("VarID mismatch: got %d/%d, want %d", pos.VarID(), neg.VarID(), v)
	}
	if pos.Opposite() != neg || neg.Opposite() != pos {
		t.Errorf("Opposite mismatch: %v/%v should be mutual negations", pos, neg)
	}
	if pos.Opposite().Opposite() != pos {
		t.Errorf("Opposite is not its own inverse")
	}
}

func TestLiteralAbstractionDisjointForDistinctVars(t *testing.T) {
	// Abstraction is a 32-bit Bloom filter, so it can collide, but variables
	// within the low 32 must not, as subsumption depends on set containment
	// following abstraction containment.
	for v := Variable(0); v < 32; v++ {
		a := PositiveLiteral(v).Abstraction()
		if a != 1<<uint32(v) {
			t.Errorf("variable %d: abstraction = %#x, want %#x", v, a, 1<<uint32(v))
		}
		// both polarities share the same abstraction bit.
		if NegativeLiteral(v).Abstraction() != a {
			t.Errorf("variable %d: positive/negative abstraction differ", v)
		}
	}
}
