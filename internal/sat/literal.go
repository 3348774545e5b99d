package sat

import "fmt"

// Variable is a dense, zero-based identifier for a Boolean variable. The set
// of variables grows monotonically as AddVariable is called; variable
// recycling is not implemented (see DESIGN.md, Open Question b).
type Variable int32

// Literal is a variable paired with a polarity, encoded as 2*v+sign so that
// negation is a single bit-flip and both polarities of a variable occupy
// adjacent indices. The zero value is the positive literal of variable 0.
type Literal int32

// PositiveLiteral returns the literal asserting that v is true.
func PositiveLiteral(v Variable) Literal {
	return Literal(v) * 2
}

// NegativeLiteral returns the literal asserting that v is false.
func NegativeLiteral(v Variable) Literal {
	return PositiveLiteral(v) + 1
}

// VarID returns the variable underlying the literal.
func (l Literal) VarID() Variable {
	return Variable(l / 2)
}

// IsPositive reports whether l asserts the positive polarity of its variable.
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns ¬l. Opposite is its own inverse.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

// abstraction returns l's single-bit contribution to a clause's Bloom-filter
// abstraction, used to short-circuit subsumption tests (internal/simp).
func (l Literal) abstraction() uint32 {
	return 1 << (uint32(l.VarID()) & 31)
}

// Abstraction exports abstraction for internal/simp's subsumption checks.
func (l Literal) Abstraction() uint32 {
	return l.abstraction()
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	}
	return fmt.Sprintf("-%d", l.VarID())
}
