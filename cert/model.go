package cert

import "github.com/crillab/vipr/rational"

// Model is the fully-parsed certificate: every section's entities in
// document order, plus the bound table accumulated while CON was parsed.
// One struct the rest of the pipeline (checker, completion engine,
// writer) is built around.
type Model struct {
	MajorVersion, MinorVersion int

	Variables []Variable
	IntSet    map[int]struct{} // indices into Variables that are integer

	Objective *Objective

	// Constraints holds the CON section's entries, in order. The checker
	// and the completion engine copy it into their own lists and append
	// the derivations there; this slice is not extended.
	Constraints []*Constraint

	// NumBounds is the nBnd count from the CON header. Never consulted
	// during verification, kept only so the writer can round-trip it.
	NumBounds int

	RTP RTP

	Solutions []Solution

	Derivations []*Derivation

	Bounds *BoundTable
}

// NewModel returns an empty Model ready to be filled in by the parser.
func NewModel() *Model {
	return &Model{
		IntSet: make(map[int]struct{}),
		Bounds: NewBoundTable(),
	}
}

// IsIntegerVar reports whether variable idx is in the integer set.
func (m *Model) IsIntegerVar(idx int) bool {
	if idx < 0 || idx >= len(m.Variables) {
		return false
	}
	_, ok := m.IntSet[idx]
	return ok
}

// BestSolutionValue returns the best (for the objective's sense) value
// among all declared solutions' objective evaluations, and whether at
// least one solution exists.
func (m *Model) BestSolutionValue() (best *rational.Rational, ok bool) {
	for _, sol := range m.Solutions {
		v := m.Objective.Coefs.Dot(sol.Values)
		if !ok {
			best, ok = v, true
			continue
		}
		switch m.Objective.Sense {
		case Minimize:
			if rational.Cmp(v, best) < 0 {
				best = v
			}
		case Maximize:
			if rational.Cmp(v, best) > 0 {
				best = v
			}
		}
	}
	return best, ok
}
