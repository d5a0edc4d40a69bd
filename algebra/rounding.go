package algebra

import (
	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Round applies the "rnd" derivation rule to c: rounds the rhs toward the
// feasible side (floor for <=, ceil for >=), in place. It is only valid
// when every nonzero coefficient is an integer and every variable in the
// support is integer; equality sense is rejected.
func Round(c *cert.Constraint, isIntegerVar func(idx int) bool, label string) error {
	if c.Sense == cert.EQ {
		return cerrors.New(cerrors.AlgebraError, label, "cannot round an equality-sense constraint")
	}
	for _, idx := range c.Coefs.Support() {
		v := c.Coefs.Get(idx)
		if !v.IsInt() {
			return cerrors.New(cerrors.AlgebraError, label, "rounding requires every coefficient to be an integer")
		}
		if !isIntegerVar(idx) {
			return cerrors.New(cerrors.AlgebraError, label, "rounding requires every support variable to be integer")
		}
	}
	switch c.Sense {
	case cert.LE:
		c.RHS = rational.Floor(c.RHS)
	case cert.GE:
		c.RHS = rational.Ceil(c.RHS)
	}
	return nil
}
