/*
Package algebra implements the constraint algebra: dominance, integer
rounding, linear combination, unsplit, and the solution-cutoff rule.
Everything here is pure: functions take constraints in and produce a
derived constraint or a verdict, leaving list bookkeeping to the checker.
*/
package algebra

import (
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Dominates reports whether a dominates b:
//   - a is a falsehood, OR
//   - a and b share the same coefficient vector (semantic equality) and:
//     sense(b)=EQ  => sense(a)=EQ and rhs(a)=rhs(b)
//     sense(b)=GE  => sense(a)>=EQ(as GE or EQ) and rhs(a)>=rhs(b)
//     sense(b)=LE  => sense(a)<=EQ(as LE or EQ) and rhs(a)<=rhs(b)
//
// If the first semantic-equality test fails, both operands are
// canonicalized and the test is retried exactly once, so lazily
// normalized vectors that denote the same form still dominate each
// other.
func Dominates(a, b *cert.Constraint) bool {
	if a.IsFalsehood() {
		return true
	}
	if !a.Coefs.Equal(b.Coefs) {
		a.Coefs.Canonicalize()
		b.Coefs.Canonicalize()
		if !a.Coefs.Equal(b.Coefs) {
			return false
		}
	}
	switch b.Sense {
	case cert.EQ:
		return a.Sense == cert.EQ && rational.Equal(a.RHS, b.RHS)
	case cert.GE:
		return senseAtLeast(a.Sense, cert.GE) && rational.Cmp(a.RHS, b.RHS) >= 0
	case cert.LE:
		return senseAtLeast(a.Sense, cert.LE) && rational.Cmp(a.RHS, b.RHS) <= 0
	}
	return false
}

// senseAtLeast reports whether sense s is at least as strong a claim as
// "required" in the dominance ordering (EQ dominates either direction).
func senseAtLeast(s, required cert.Sense) bool {
	return s == cert.EQ || s == required
}
