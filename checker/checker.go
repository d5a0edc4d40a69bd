/*
Package checker walks the DER section of a parsed certificate and decides
whether it proves the relation-to-prove. It is a
single-threaded state machine over the constraint list: each derivation is
reconstructed from its reason, required to dominate its declared form,
appended to the list, and checked for RTP discharge.

The checker is a long-lived struct mutated record by record, deciding
success or failure as it goes, with a leveled log side channel for step
tracing.
*/
package checker

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/crillab/vipr/algebra"
	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
	"github.com/crillab/vipr/rational"
)

// Result summarizes a successful verification.
type Result struct {
	// DerivationsChecked counts derivations actually validated; early
	// termination may leave it below the DER count.
	DerivationsChecked int
	// EarlyTermination reports whether the proof closed before the final
	// derivation (RTP discharged mid-list, or the RTP dual bound was a
	// tautology).
	EarlyTermination bool
	// BestSolutionValue is the best objective value over the declared
	// solutions, nil when SOL is empty.
	BestSolutionValue *rational.Rational
}

// Checker verifies one parsed certificate. Zero reuse: build a fresh
// Checker per model, Check once.
type Checker struct {
	model *cert.Model
	log   *logrus.Entry

	cons    []*cert.Constraint
	trashes trashHeap

	best    *rational.Rational
	hasBest bool
}

// New returns a Checker over m, logging through log (pass a silenced
// logger entry to disable tracing).
func New(m *cert.Model, log *logrus.Entry) *Checker {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = logrus.NewEntry(l)
	}
	return &Checker{model: m, log: log}
}

// Check runs the full verification: the solution phase first, then the
// derivation walk. A nil error means the certificate proves its RTP.
func (c *Checker) Check() (*Result, error) {
	if err := c.checkSolutions(); err != nil {
		return nil, err
	}
	return c.checkDerivations()
}

// checkSolutions validates every declared solution against every CON
// constraint and the integrality set, tracks the best objective value, and
// rejects a best value that already violates the claimed primal bound
// before any derivation is examined.
func (c *Checker) checkSolutions() error {
	m := c.model
	for _, sol := range m.Solutions {
		for _, idx := range sol.Values.Support() {
			if idx >= len(m.Variables) {
				return cerrors.New(cerrors.IndexError, sol.Label, "solution assigns a value to an unknown variable")
			}
			if m.IsIntegerVar(idx) && !sol.Values.Get(idx).IsInt() {
				return cerrors.New(cerrors.SolutionViolation, sol.Label,
					fmt.Sprintf("noninteger value for integer variable %s", m.Variables[idx].Name))
			}
		}
		for i, con := range m.Constraints {
			if !satisfies(con, sol.Values) {
				return cerrors.New(cerrors.SolutionViolation, sol.Label,
					fmt.Sprintf("constraint %s (index %d) not satisfied", con.Label, i))
			}
		}
		val := m.Objective.Coefs.Dot(sol.Values)
		c.log.WithFields(logrus.Fields{"solution": sol.Label, "objval": val.String()}).Debug("solution feasible")
	}
	c.best, c.hasBest = m.BestSolutionValue()

	if m.RTP.Kind == cert.Range {
		checkUpper := m.Objective.Sense == cert.Minimize && m.RTP.HasUpper()
		checkLower := m.Objective.Sense == cert.Maximize && m.RTP.HasLower()
		if c.hasBest {
			if checkUpper && rational.Cmp(c.best, m.RTP.Upper) > 0 {
				return cerrors.New(cerrors.BoundViolation, "",
					fmt.Sprintf("best objective value %s exceeds claimed upper bound %s", c.best, m.RTP.Upper))
			}
			if checkLower && rational.Cmp(c.best, m.RTP.Lower) < 0 {
				return cerrors.New(cerrors.BoundViolation, "",
					fmt.Sprintf("best objective value %s is below claimed lower bound %s", c.best, m.RTP.Lower))
			}
		} else if checkUpper || checkLower {
			return cerrors.New(cerrors.BoundViolation, "", "no solutions declared to prove the primal bound")
		}
	}
	return nil
}

// satisfies reports whether assignment x satisfies con.
func satisfies(con *cert.Constraint, x *rational.Vector) bool {
	prod := con.Coefs.Dot(x)
	switch con.Sense {
	case cert.LE:
		return rational.Cmp(prod, con.RHS) <= 0
	case cert.GE:
		return rational.Cmp(prod, con.RHS) >= 0
	default:
		return rational.Equal(prod, con.RHS)
	}
}

// rtpConstraint builds the dual-side relation to prove as a constraint
// over the objective coefficients: ">= lower" for minimization, "<= upper"
// for maximization. Returns nil when that side is unbounded, i.e. the dual
// bound is a tautology.
func (c *Checker) rtpConstraint() *cert.Constraint {
	m := c.model
	if m.RTP.Kind != cert.Range {
		return nil
	}
	if m.Objective.Sense == cert.Minimize {
		if !m.RTP.HasLower() {
			return nil
		}
		return cert.NewConstraint("rtp", cert.GE, m.RTP.Lower, m.Objective.Coefs)
	}
	if !m.RTP.HasUpper() {
		return nil
	}
	return cert.NewConstraint("rtp", cert.LE, m.RTP.Upper, m.Objective.Coefs)
}

// checkDerivations is the main DER walk.
func (c *Checker) checkDerivations() (*Result, error) {
	m := c.model
	res := &Result{BestSolutionValue: c.best}

	var rtpCon *cert.Constraint
	if m.RTP.Kind == cert.Range {
		rtpCon = c.rtpConstraint()
		if rtpCon == nil {
			c.log.Info("dual bound of RTP is a tautology")
			res.EarlyTermination = true
			return res, nil
		}
	}

	c.cons = make([]*cert.Constraint, len(m.Constraints), len(m.Constraints)+len(m.Derivations))
	copy(c.cons, m.Constraints)

	for i, der := range m.Derivations {
		newIdx := len(c.cons)
		declared := der.Declared
		c.log.WithFields(logrus.Fields{"index": newIdx, "label": declared.Label}).Debug("deriving")

		assumptions, err := c.applyReason(der, newIdx)
		if err != nil {
			return nil, err
		}

		declared.AssumptionSet = assumptions
		declared.MaxRefIdx = der.MaxRefIdx
		c.cons = append(c.cons, declared)
		if der.MaxRefIdx >= 0 {
			heap.Push(&c.trashes, trashEntry{maxRef: der.MaxRefIdx, idx: newIdx})
		}
		res.DerivationsChecked = i + 1

		if len(assumptions) == 0 && c.discharged(declared, rtpCon) {
			res.EarlyTermination = i < len(m.Derivations)-1
			c.log.WithField("label", declared.Label).Info("relation to prove discharged")
			return res, nil
		}

		// Release coefficient storage for constraints whose reference
		// window has closed, never the most recent.
		for len(c.trashes) > 0 && c.trashes[0].maxRef < newIdx {
			e := heap.Pop(&c.trashes).(trashEntry)
			if e.idx == newIdx {
				// Never trash the most recent constraint; release it on
				// the next step instead.
				heap.Push(&c.trashes, trashEntry{maxRef: newIdx, idx: e.idx})
				break
			}
			c.cons[e.idx].Trash()
		}
	}

	return nil, c.finalFailure()
}

// discharged reports whether an assumption-free constraint closes the
// proof: a falsehood for INFEAS, or an objective-form constraint
// dominating the RTP dual side for RANGE.
func (c *Checker) discharged(declared *cert.Constraint, rtpCon *cert.Constraint) bool {
	if c.model.RTP.Kind == cert.Infeasible {
		return declared.IsFalsehood()
	}
	if !declared.Coefs.Equal(c.model.Objective.Coefs) {
		return false
	}
	return algebra.Dominates(declared, rtpCon)
}

// applyReason reconstructs the derived constraint for der and returns its
// assumption set, or fails with the taxonomy error the rule prescribes.
func (c *Checker) applyReason(der *cert.Derivation, newIdx int) (map[int]struct{}, error) {
	declared := der.Declared
	switch der.Reason.Kind {
	case cert.ReasonAsm:
		return map[int]struct{}{newIdx: {}}, nil

	case cert.ReasonLin, cert.ReasonRnd:
		lin := der.Reason.Lin
		if lin.Incomplete || lin.Weak {
			return nil, cerrors.New(cerrors.ParseError, declared.Label,
				"derivation is not complete; run the completion tool first")
		}
		refs, err := c.resolveRefs(lin.Multipliers, newIdx, declared.Label)
		if err != nil {
			return nil, err
		}
		derived, err := algebra.LinComb(lin.Multipliers, refs, declared.Label)
		if err != nil {
			return nil, err
		}
		if der.Reason.Kind == cert.ReasonRnd {
			if err := algebra.Round(derived, c.model.IsIntegerVar, declared.Label); err != nil {
				return nil, err
			}
		}
		if !algebra.Dominates(derived, declared) {
			return nil, cerrors.New(cerrors.DerivationMismatch, declared.Label,
				fmt.Sprintf("derived %s %s does not dominate declared %s %s",
					derived.Sense, derived.RHS, declared.Sense, declared.RHS))
		}
		return derived.AssumptionSet, nil

	case cert.ReasonUns:
		uns := der.Reason.Unsplit
		c1, err := c.refAt(uns.C1, newIdx, declared.Label)
		if err != nil {
			return nil, err
		}
		a1, err := c.refAt(uns.A1, newIdx, declared.Label)
		if err != nil {
			return nil, err
		}
		c2, err := c.refAt(uns.C2, newIdx, declared.Label)
		if err != nil {
			return nil, err
		}
		a2, err := c.refAt(uns.A2, newIdx, declared.Label)
		if err != nil {
			return nil, err
		}
		return algebra.Unsplit(c1, a1, uns.A1, c2, a2, uns.A2, declared, c.model.IsIntegerVar, declared.Label)

	case cert.ReasonSol:
		if !c.hasBest {
			return nil, cerrors.New(cerrors.BoundViolation, declared.Label, "sol derivation with no declared solutions")
		}
		if err := algebra.Cutoff(declared, c.model.Objective, c.best, declared.Label); err != nil {
			return nil, err
		}
		return map[int]struct{}{}, nil
	}
	return nil, cerrors.New(cerrors.ParseError, declared.Label, "unknown derivation kind")
}

// resolveRefs maps every multiplier index to its constraint, enforcing the
// range, trash and max-reference rules.
func (c *Checker) resolveRefs(mult map[int]*rational.Rational, newIdx int, label string) (map[int]*cert.Constraint, error) {
	refs := make(map[int]*cert.Constraint, len(mult))
	for idx := range mult {
		ref, err := c.refAt(idx, newIdx, label)
		if err != nil {
			return nil, err
		}
		refs[idx] = ref
	}
	return refs, nil
}

// refAt fetches constraint idx as seen from the derivation at current,
// failing with IndexError on range, trash or reference-window violations.
func (c *Checker) refAt(idx, current int, label string) (*cert.Constraint, error) {
	if idx < 0 || idx >= current {
		return nil, cerrors.New(cerrors.IndexError, label, fmt.Sprintf("constraint index %d out of range", idx))
	}
	ref := c.cons[idx]
	if ref.Trashed {
		return nil, cerrors.New(cerrors.IndexError, label, fmt.Sprintf("reference to trashed constraint %s (index %d)", ref.Label, idx))
	}
	if ref.MaxRefIdx >= 0 && ref.MaxRefIdx < current {
		return nil, cerrors.New(cerrors.IndexError, label,
			fmt.Sprintf("constraint %s (index %d) referenced past its max-reference index %d", ref.Label, idx, ref.MaxRefIdx))
	}
	return ref, nil
}

// finalFailure builds the diagnostic for a derivation list that ran out
// without discharging the RTP: leftover assumptions if any, otherwise the
// unproved final constraint.
func (c *Checker) finalFailure() error {
	if len(c.cons) == 0 {
		return cerrors.New(cerrors.DerivationMismatch, "", "no derivations to prove the relation")
	}
	last := c.cons[len(c.cons)-1]
	if len(last.AssumptionSet) > 0 {
		msg := "final derived constraint contains undischarged assumptions:"
		for idx := range last.AssumptionSet {
			msg += fmt.Sprintf(" %d:%s", idx, c.cons[idx].Label)
		}
		return cerrors.New(cerrors.DerivationMismatch, last.Label, msg)
	}
	what := "failed to verify infeasibility"
	if c.model.RTP.Kind == cert.Range {
		if c.model.Objective.Sense == cert.Minimize {
			what = "failed to derive the claimed lower bound"
		} else {
			what = "failed to derive the claimed upper bound"
		}
	}
	return cerrors.New(cerrors.DerivationMismatch, last.Label,
		fmt.Sprintf("%s; proved %s %s instead", what, last.Sense, last.RHS))
}

// trashEntry pairs a constraint index with its declared max-reference
// index, ordered for eager release.
type trashEntry struct {
	maxRef int
	idx    int
}

type trashHeap []trashEntry

func (h trashHeap) Len() int            { return len(h) }
func (h trashHeap) Less(i, j int) bool  { return h[i].maxRef < h[j].maxRef }
func (h trashHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *trashHeap) Push(x interface{}) { *h = append(*h, x.(trashEntry)) }
func (h *trashHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
