package algebra

import (
	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// LinComb computes the constraint resulting from combining the referenced
// constraints with the given multipliers (the "lin" rule):
//
//   - resulting rhs = sum m_i * rhs(c_i)
//   - resulting coefs = sum m_i * coef(c_i)
//   - resulting sense is the common sign of sense(c_i)*sign(m_i) across
//     every nonzero multiplier (a sign conflict is an AlgebraError); all
//     zero signs yield EQ
//   - resulting assumption set is the union of the referenced
//     constraints' assumption sets, excluding those with a zero
//     multiplier
//
// refs maps a certificate index (as used as a key in multipliers) to the
// already-checked constraint at that index.
func LinComb(multipliers map[int]*rational.Rational, refs map[int]*cert.Constraint, label string) (*cert.Constraint, error) {
	rhs := rational.Zero()
	coefs := rational.NewVector()
	assumptions := make(map[int]struct{})
	haveSense := false
	var resultSense cert.Sense

	for idx, mult := range multipliers {
		if mult.IsZero() {
			continue
		}
		c, ok := refs[idx]
		if !ok {
			return nil, cerrors.New(cerrors.IndexError, label, "lin references unknown or trashed constraint index")
		}
		rhs = rational.Add(rhs, rational.Mul(mult, c.RHS))
		coefs.AddScaled(mult, c.Coefs)

		sign := mult.Sign() * int(c.Sense)
		if sign != 0 {
			thisSense := cert.GE
			if sign < 0 {
				thisSense = cert.LE
			}
			if !haveSense {
				resultSense = thisSense
				haveSense = true
			} else if resultSense != thisSense {
				return nil, cerrors.New(cerrors.AlgebraError, label, "lin multipliers disagree on resulting sense")
			}
		}
		for a := range c.AssumptionSet {
			assumptions[a] = struct{}{}
		}
	}
	if !haveSense {
		resultSense = cert.EQ
	}
	coefs.Compactify()
	out := cert.NewConstraint(label, resultSense, rhs, coefs)
	out.AssumptionSet = assumptions
	return out, nil
}
