/*
Package cert defines the typed entities parsed from a certificate:
variables, the integer set, the objective, constraints, solutions, the
relation-to-prove, and derivations.

Entities here carry no behavior beyond their own bookkeeping; dominance,
linear combination etc. live in package algebra, which depends on this
package, to keep the data model free of algebra-specific assumptions.
*/
package cert

import "github.com/crillab/vipr/rational"

// Sense is the relational operator of a constraint.
type Sense int

const (
	// LE is "<=".
	LE Sense = -1
	// EQ is "=".
	EQ Sense = 0
	// GE is ">=".
	GE Sense = 1
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "L"
	case EQ:
		return "E"
	case GE:
		return "G"
	default:
		return "?"
	}
}

// Negate returns the sense with flipped direction (LE<->GE); EQ maps to
// itself. Used when a negative bound-row coefficient flips the inequality
// direction (see BoundTable.Observe).
func (s Sense) Negate() Sense { return -s }

// Variable is a named, optionally-integer problem variable.
type Variable struct {
	Name    string
	Integer bool
}

// ObjSense distinguishes minimization from maximization.
type ObjSense int

const (
	// Minimize seeks the smallest objective value.
	Minimize ObjSense = iota
	// Maximize seeks the largest objective value.
	Maximize
)

// Objective is the problem's objective row: a sense and a sparse
// coefficient vector over the variables, plus the derived integrality
// flag used by the "sol" cutoff rule.
type Objective struct {
	Sense  ObjSense
	Coefs  *rational.Vector
	isInt  bool
	isIntC bool // isInt computed?
}

// NewObjective builds an Objective and computes its integrality flag:
// true iff every nonzero coefficient is an integer and every variable in
// its support is integer.
func NewObjective(sense ObjSense, coefs *rational.Vector, vars []Variable) *Objective {
	o := &Objective{Sense: sense, Coefs: coefs}
	o.isInt = true
	for _, idx := range coefs.Support() {
		v := coefs.Get(idx)
		if !v.IsInt() {
			o.isInt = false
			break
		}
		if idx < 0 || idx >= len(vars) || !vars[idx].Integer {
			o.isInt = false
			break
		}
	}
	o.isIntC = true
	return o
}

// IsIntegral reports whether every objective coefficient is an integer
// and every variable with a nonzero coefficient is an integer variable.
// Used to strengthen the cutoff bound in the "sol" derivation rule.
func (o *Objective) IsIntegral() bool {
	if !o.isIntC {
		panic("cert: Objective.IsIntegral called before NewObjective")
	}
	return o.isInt
}

// NoMaxRef disables trashing for a constraint: it may be referenced by any
// later derivation no matter how far away, and is never trashed.
const NoMaxRef = -1

// Constraint is a single linear constraint, either declared in CON or
// produced by a derivation.
type Constraint struct {
	Label string
	Sense Sense
	RHS   *rational.Rational
	Coefs *rational.Vector

	IsAssumption  bool
	AssumptionSet map[int]struct{} // indices of assumption constraints this one depends on

	DerivedEqualsObjective bool // payload was the literal token OBJ

	MaxRefIdx int // last derivation index allowed to reference this constraint; NoMaxRef disables trashing
	Trashed   bool
}

// NewConstraint builds a Constraint with an empty assumption set.
func NewConstraint(label string, sense Sense, rhs *rational.Rational, coefs *rational.Vector) *Constraint {
	return &Constraint{
		Label:         label,
		Sense:         sense,
		RHS:           rhs,
		Coefs:         coefs,
		AssumptionSet: make(map[int]struct{}),
		MaxRefIdx:     NoMaxRef,
	}
}

// IsFalsehood reports whether c has an empty coefficient vector and an
// rhs whose sign contradicts the sense (e.g. "0 >= 1").
func (c *Constraint) IsFalsehood() bool {
	if !c.Coefs.IsEmpty() {
		return false
	}
	switch c.Sense {
	case LE:
		return c.RHS.Sign() < 0
	case GE:
		return c.RHS.Sign() > 0
	case EQ:
		return c.RHS.Sign() != 0
	}
	return false
}

// IsTautology reports whether c has an empty coefficient vector and a
// consistent rhs (e.g. "0 <= 1" or "0 = 0").
func (c *Constraint) IsTautology() bool {
	return c.Coefs.IsEmpty() && !c.IsFalsehood()
}

// Trash releases c's coefficient storage; label, sense, rhs and the
// assumption set are kept. Never call this on the most recently appended
// constraint (the checker enforces that rule, not this method).
func (c *Constraint) Trash() {
	c.Coefs = nil
	c.Trashed = true
}

// CloneAssumptionSet returns an independent copy of c's assumption set.
func (c *Constraint) CloneAssumptionSet() map[int]struct{} {
	out := make(map[int]struct{}, len(c.AssumptionSet))
	for k := range c.AssumptionSet {
		out[k] = struct{}{}
	}
	return out
}

// Solution is a label and a sparse rational assignment over the
// variables. Immutable after load: nothing in this package mutates a
// Solution's Values after construction.
type Solution struct {
	Label  string
	Values *rational.Vector
}

// RTPKind distinguishes the two possible claims a certificate can make.
type RTPKind int

const (
	// Infeasible claims the problem has no feasible solution.
	Infeasible RTPKind = iota
	// Range claims the optimal objective value lies within [Lower, Upper].
	Range
)

// RTP is the relation-to-prove: either infeasibility, or a claimed
// objective range. Lower/Upper are nil to mean -inf/+inf respectively.
type RTP struct {
	Kind  RTPKind
	Lower *rational.Rational
	Upper *rational.Rational
}

// HasLower reports whether the range's lower bound is finite.
func (r *RTP) HasLower() bool { return r.Kind == Range && r.Lower != nil }

// HasUpper reports whether the range's upper bound is finite.
func (r *RTP) HasUpper() bool { return r.Kind == Range && r.Upper != nil }
