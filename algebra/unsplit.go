package algebra

import (
	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Unsplit validates the branching pair (c1,a1) and (c2,a2) against the
// declared derived constraint toDer and, on success, returns the
// resulting assumption set:
//
//   - c1 and c2 both dominate toDer
//   - a1 and a2 have opposite senses and identical coefficient vectors
//   - every support variable of that shared vector is integer and every
//     coefficient is integer
//   - the rhs pair forms an integer disjunction: a1 is "<= r" and a2 is
//     ">= r+1", or the mirror
//
// Unlike "lin"/"rnd", unsplit does not synthesize a single combined
// constraint to test for domination: c1 and c2 must each dominate toDer
// directly, so that check is performed here rather than going through the
// generic Dominates(derived, toDer) path used by the other reasons.
func Unsplit(c1, a1 *cert.Constraint, a1idx int, c2, a2 *cert.Constraint, a2idx int, toDer *cert.Constraint, isIntegerVar func(idx int) bool, label string) (map[int]struct{}, error) {
	if !Dominates(c1, toDer) || !Dominates(c2, toDer) {
		return nil, cerrors.New(cerrors.DerivationMismatch, label, "unsplit requires both branches to dominate the declared constraint")
	}
	if a1.Sense == a2.Sense {
		return nil, cerrors.New(cerrors.AlgebraError, label, "unsplit requires opposite-sense branch assumptions")
	}
	if !a1.Coefs.Equal(a2.Coefs) {
		a1.Coefs.Canonicalize()
		a2.Coefs.Canonicalize()
		if !a1.Coefs.Equal(a2.Coefs) {
			return nil, cerrors.New(cerrors.AlgebraError, label, "unsplit branch assumptions must share the same coefficient vector")
		}
	}
	for _, idx := range a1.Coefs.Support() {
		v := a1.Coefs.Get(idx)
		if !v.IsInt() {
			return nil, cerrors.New(cerrors.AlgebraError, label, "unsplit requires integer coefficients")
		}
		if !isIntegerVar(idx) {
			return nil, cerrors.New(cerrors.AlgebraError, label, "unsplit requires integer support variables")
		}
	}

	le, ge := a1, a2
	if a1.Sense == cert.GE {
		le, ge = a2, a1
	}
	if !rational.Equal(rational.Add(le.RHS, rational.FromInt64(1)), ge.RHS) {
		return nil, cerrors.New(cerrors.AlgebraError, label, "unsplit branch assumptions do not form an integer disjunction")
	}

	assumptions := make(map[int]struct{})
	for a := range c1.AssumptionSet {
		if a != a1idx {
			assumptions[a] = struct{}{}
		}
	}
	for a := range c2.AssumptionSet {
		if a != a2idx {
			assumptions[a] = struct{}{}
		}
	}
	return assumptions, nil
}
