package cert

import "github.com/crillab/vipr/rational"

// BoundEntry records one global-bound discovery: the bound value, the
// coefficient the bound row used (needed to scale the multiplier back
// during weak completion), and the certificate index of the bound row
// constraint it came from.
type BoundEntry struct {
	Value        *rational.Rational
	Coefficient  *rational.Rational
	ConstraintID int
}

// BoundTable tracks, per variable, the best known global lower and upper
// bound derived from single-nonzero-coefficient constraints ("bound
// rows"). The parser fills it from CON; the completion engine adds the
// declared derivations before it starts and consults it during weak
// completion. The checker does not read it.
type BoundTable struct {
	lower map[int]BoundEntry
	upper map[int]BoundEntry
}

// NewBoundTable returns an empty bound table.
func NewBoundTable() *BoundTable {
	return &BoundTable{lower: make(map[int]BoundEntry), upper: make(map[int]BoundEntry)}
}

// Lower returns the best known global lower bound for variable idx, and
// whether one is recorded.
func (t *BoundTable) Lower(idx int) (BoundEntry, bool) {
	e, ok := t.lower[idx]
	return e, ok
}

// Upper returns the best known global upper bound for variable idx, and
// whether one is recorded.
func (t *BoundTable) Upper(idx int) (BoundEntry, bool) {
	e, ok := t.upper[idx]
	return e, ok
}

// Observe examines a constraint; if it has exactly one nonzero
// coefficient (a "bound row"), normalizes it to (sense, value/coef) and
// records it if it strengthens the known bound for that variable.
func (t *BoundTable) Observe(c *Constraint, idx int) {
	support := c.Coefs.Support()
	if len(support) != 1 {
		return
	}
	varIdx := support[0]
	coef := c.Coefs.Get(varIdx)
	value, err := rational.Quo(c.RHS, coef)
	if err != nil {
		return // coef is zero, shouldn't happen after compactify but be defensive
	}
	sense := c.Sense
	if coef.Sign() < 0 {
		sense = sense.Negate()
	}
	entry := BoundEntry{Value: value, Coefficient: coef, ConstraintID: idx}
	switch sense {
	case LE:
		if cur, ok := t.upper[varIdx]; !ok || rational.Cmp(value, cur.Value) < 0 {
			t.upper[varIdx] = entry
		}
	case GE:
		if cur, ok := t.lower[varIdx]; !ok || rational.Cmp(value, cur.Value) > 0 {
			t.lower[varIdx] = entry
		}
	case EQ:
		// An equality bound row strengthens both sides at once.
		if cur, ok := t.upper[varIdx]; !ok || rational.Cmp(value, cur.Value) < 0 {
			t.upper[varIdx] = entry
		}
		if cur, ok := t.lower[varIdx]; !ok || rational.Cmp(value, cur.Value) > 0 {
			t.lower[varIdx] = entry
		}
	}
}
