package complete

import (
	"fmt"

	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// completeWeak corrects a weak "lin" derivation in place: the declared
// multipliers aggregate to a coefficient vector that differs from the
// declared one, and every difference must be absorbed by a variable bound
// multiplier. No LP is solved.
//
// Two passes run: first over the aggregated support, then over the
// declared support, since either side may carry indices the other lacks
// and skipping one direction can silently miss a needed correction.
func completeWeak(der *cert.Derivation, cons []*cert.Constraint, bounds *cert.BoundTable) error {
	declared := der.Declared
	lin := der.Reason.Lin
	label := declared.Label

	localLower := make(map[int]cert.WeakBoundEntry)
	localUpper := make(map[int]cert.WeakBoundEntry)
	for _, e := range lin.WeakBounds {
		if e.Kind == cert.LowerBound {
			localLower[e.VarIdx] = e
		} else {
			localUpper[e.VarIdx] = e
		}
	}

	// Aggregate the declared multipliers. Sign consistency is not
	// enforced here; the recheck after completion applies the full lin
	// rule.
	mult := make(map[int]*rational.Rational, len(lin.Multipliers))
	rhs := rational.Zero()
	coefs := rational.NewVector()
	for idx, m := range lin.Multipliers {
		if m.IsZero() {
			continue
		}
		if idx < 0 || idx >= len(cons) {
			return cerrors.New(cerrors.IndexError, label, fmt.Sprintf("weak multiplier index %d out of range", idx))
		}
		mult[idx] = m.Clone()
		rhs = rational.Add(rhs, rational.Mul(m, cons[idx].RHS))
		coefs.AddScaled(m, cons[idx].Coefs)
	}
	coefs.Compactify()

	corrected := rhs
	correct := func(idx int, delta *rational.Rational) error {
		if declared.Sense == cert.EQ {
			return cerrors.New(cerrors.AlgebraError, label, "cannot weak-complete an equality-sense constraint")
		}
		// Which bound absorbs the difference depends on the sense and
		// the sign of the difference.
		var isLower bool
		if declared.Sense == cert.LE {
			isLower = delta.Sign() <= 0
		} else {
			isLower = delta.Sign() >= 0
		}

		var boundIdx int
		var boundVal, factor *rational.Rational
		if e, ok := localEntry(isLower, idx, localLower, localUpper); ok && e.BoundRef >= 0 {
			boundIdx, boundVal, factor = e.BoundRef, e.Value, rational.FromInt64(1)
		} else {
			var ge cert.BoundEntry
			var ok bool
			if isLower {
				ge, ok = bounds.Lower(idx)
			} else {
				ge, ok = bounds.Upper(idx)
			}
			if !ok {
				side := "upper"
				if isLower {
					side = "lower"
				}
				return cerrors.New(cerrors.AlgebraError, label,
					fmt.Sprintf("no %s bound known for variable %d needed by weak completion", side, idx))
			}
			boundIdx, boundVal, factor = ge.ConstraintID, ge.Value, ge.Coefficient
		}

		scaled, err := rational.Quo(delta, factor)
		if err != nil {
			return cerrors.Wrap(cerrors.AlgebraError, label, err, "zero bound coefficient")
		}
		cur, ok := mult[boundIdx]
		if !ok {
			cur = rational.Zero()
		}
		mult[boundIdx] = rational.Add(cur, scaled)
		corrected = rational.Add(corrected, rational.Mul(delta, boundVal))
		return nil
	}

	// Pass 1: aggregated support. Each handled index is overwritten with
	// the declared value so pass 2 skips it.
	for _, idx := range coefs.Support() {
		want := declared.Coefs.Get(idx)
		have := coefs.Get(idx)
		if rational.Equal(want, have) {
			continue
		}
		if err := correct(idx, rational.Sub(want, have)); err != nil {
			return err
		}
		coefs.Set(idx, want.Clone())
	}
	// Pass 2: declared support, catching indices absent from the
	// aggregation entirely.
	for _, idx := range declared.Coefs.Support() {
		want := declared.Coefs.Get(idx)
		have := coefs.Get(idx)
		if rational.Equal(want, have) {
			continue
		}
		if err := correct(idx, rational.Sub(want, have)); err != nil {
			return err
		}
		coefs.Set(idx, want.Clone())
	}

	// The corrected rhs must sit on the dominating side of the declared
	// one; the empty-support case may instead certify an outright
	// contradiction.
	bad := (declared.Sense == cert.LE && rational.Cmp(corrected, declared.RHS) > 0) ||
		(declared.Sense == cert.GE && rational.Cmp(corrected, declared.RHS) < 0)
	if bad {
		if declared.Coefs.IsEmpty() {
			infeas := (declared.Sense == cert.LE && corrected.Sign() < 0) ||
				(declared.Sense == cert.GE && corrected.Sign() > 0)
			if !infeas {
				return cerrors.New(cerrors.DerivationMismatch, label, "invalid claim of infeasibility")
			}
		} else {
			return cerrors.New(cerrors.DerivationMismatch, label,
				fmt.Sprintf("corrected rhs %s does not dominate declared rhs %s", corrected, declared.RHS))
		}
	}

	lin.Multipliers = mult
	lin.Weak = false
	lin.WeakBounds = nil
	return nil
}

func localEntry(isLower bool, idx int, lower, upper map[int]cert.WeakBoundEntry) (cert.WeakBoundEntry, bool) {
	if isLower {
		e, ok := lower[idx]
		return e, ok
	}
	e, ok := upper[idx]
	return e, ok
}
