/*
Package complete fills in under-specified derivations of a parsed
certificate: "weak" derivations get their multipliers corrected with
variable bounds (no LP solve), "incomplete" derivations get their
multipliers reconstructed from the duals and reduced costs of a
warm-started exact-rational LP.

The LP oracle is an interface so an external exact solver can be swapped
in; one in-process implementation ships in simplex.go. The
row/column/bound vocabulary follows the HiGHS-style model shape, over
rationals instead of floats.
*/
package complete

import "github.com/crillab/vipr/rational"

// Status is the outcome of an exact LP solve.
type Status int

const (
	// Optimal means primal and dual optimal solutions are available.
	Optimal Status = iota
	// Infeasible means a Farkas certificate of infeasibility is
	// available through Duals.
	Infeasible
	// Other covers every non-terminal outcome (unbounded, aborted). The
	// engine logs a warning and leaves the derivation incomplete.
	Other
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	default:
		return "OTHER"
	}
}

// Oracle is the exact-rational LP collaborator the incomplete-completion
// path drives. Rows carry rational lhs/rhs bounds where nil means
// -inf/+inf respectively; an equality row has lhs == rhs. Columns are
// created with ±infinity bounds (nil/nil), matching how the completion
// engine loads the certificate's variables.
//
// The engine never inspects floating-point state: every value crossing
// this interface is a *rational.Rational.
type Oracle interface {
	// AddColumn appends a column with the given bounds (nil = unbounded
	// on that side) and returns its index.
	AddColumn(lower, upper *rational.Rational) int
	// NumColumns reports the current column count.
	NumColumns() int

	// AddRow appends a row lhs <= coefs·x <= rhs (nil = unbounded side)
	// and returns its index.
	AddRow(coefs *rational.Vector, lhs, rhs *rational.Rational) int
	// NumRows reports the current row count.
	NumRows() int
	// RemoveRows deletes every row i with drop[i] true, compacting the
	// remainder in order. It returns the new index of each old row, -1
	// for deleted ones.
	RemoveRows(drop []bool) []int

	// SetObjective replaces the objective row and direction.
	SetObjective(coefs *rational.Vector, minimize bool)

	// Solve runs the exact solve and reports the outcome.
	Solve() Status

	// Duals returns one multiplier per row after a terminal Solve: dual
	// multipliers on Optimal, Farkas multipliers on Infeasible. The signs
	// are certificate-ready: multiplying each row by its dual and summing
	// yields a valid derivation of the objective bound (or a falsehood).
	Duals() []*rational.Rational
	// ReducedCosts returns, per column, the objective coefficient minus
	// the dual-weighted row coefficients. Nonzero entries correspond to
	// binding column bounds.
	ReducedCosts() []*rational.Rational
}
