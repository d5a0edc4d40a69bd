package algebra

import (
	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Cutoff validates a "sol" derivation: a bound tightened using the best
// primal solution value found so far.
//
// The rule is deliberately asymmetric: the declared sense must be <= and
// the rhs at least best-1 (integral objective) or best, with no branching
// on the objective sense. A mirrored sense->= rule for maximize-sense
// objectives would be plausible but is not implemented; anything other
// than <= is rejected unconditionally.
func Cutoff(declared *cert.Constraint, objective *cert.Objective, best *rational.Rational, label string) error {
	if !declared.Coefs.Equal(objective.Coefs) {
		return cerrors.New(cerrors.AlgebraError, label, "sol requires the derived coefficients to equal the objective")
	}
	if declared.Sense != cert.LE {
		return cerrors.New(cerrors.AlgebraError, label, "sol requires sense <=")
	}
	threshold := best
	if objective.IsIntegral() {
		threshold = rational.Sub(best, rational.FromInt64(1))
	}
	if rational.Cmp(declared.RHS, threshold) < 0 {
		return cerrors.New(cerrors.BoundViolation, label, "sol rhs is tighter than the best solution value allows")
	}
	return nil
}
