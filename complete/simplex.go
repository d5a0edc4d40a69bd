package complete

import (
	"github.com/crillab/vipr/rational"
)

// SimplexOracle is the in-process exact-rational LP oracle: a dense
// two-phase tableau simplex with Bland's rule. Performance is not the
// point here; exactness is. Every pivot, dual and reduced cost is computed
// in rational arithmetic with no tolerances.
//
// Free columns are split into nonnegative pairs, inequality rows get a
// slack, and every row gets an artificial so phase 1 starts from the
// identity basis. Duals are read off the artificial columns of the final
// cost row; on infeasibility the phase-1 duals are the Farkas
// multipliers.
type SimplexOracle struct {
	colLower []*rational.Rational
	colUpper []*rational.Rational

	rows []lpRow

	obj      *rational.Vector
	minimize bool

	duals    []*rational.Rational
	redcosts []*rational.Rational
}

type lpRow struct {
	coefs *rational.Vector
	lhs   *rational.Rational // nil = -inf
	rhs   *rational.Rational // nil = +inf
}

// NewSimplexOracle returns an empty oracle.
func NewSimplexOracle() *SimplexOracle {
	return &SimplexOracle{obj: rational.NewVector(), minimize: true}
}

// AddColumn appends a column bounded by lower/upper (nil = unbounded).
func (s *SimplexOracle) AddColumn(lower, upper *rational.Rational) int {
	s.colLower = append(s.colLower, lower)
	s.colUpper = append(s.colUpper, upper)
	return len(s.colLower) - 1
}

// NumColumns reports the column count.
func (s *SimplexOracle) NumColumns() int { return len(s.colLower) }

// AddRow appends the row lhs <= coefs.x <= rhs.
func (s *SimplexOracle) AddRow(coefs *rational.Vector, lhs, rhs *rational.Rational) int {
	s.rows = append(s.rows, lpRow{coefs: coefs, lhs: lhs, rhs: rhs})
	return len(s.rows) - 1
}

// NumRows reports the row count.
func (s *SimplexOracle) NumRows() int { return len(s.rows) }

// RemoveRows drops the flagged rows, compacting the rest in order, and
// returns the new position of every old row (-1 when dropped).
func (s *SimplexOracle) RemoveRows(drop []bool) []int {
	newPos := make([]int, len(s.rows))
	kept := s.rows[:0]
	for i, row := range s.rows {
		if i < len(drop) && drop[i] {
			newPos[i] = -1
			continue
		}
		newPos[i] = len(kept)
		kept = append(kept, row)
	}
	s.rows = kept
	return newPos
}

// SetObjective replaces the objective.
func (s *SimplexOracle) SetObjective(coefs *rational.Vector, minimize bool) {
	s.obj = coefs
	s.minimize = minimize
}

// Duals returns the row multipliers of the last terminal Solve.
func (s *SimplexOracle) Duals() []*rational.Rational { return s.duals }

// ReducedCosts returns the per-column reduced costs of the last terminal
// Solve.
func (s *SimplexOracle) ReducedCosts() []*rational.Rational { return s.redcosts }

// tableau is one solve's working state, rebuilt per Solve call; the
// warm start the engine cares about is the row set kept on the oracle,
// not the factorization.
type tableau struct {
	m, nCols, artStart int
	t                  [][]*rational.Rational // m x nCols
	b                  []*rational.Rational
	basis              []int
	rowSign            []int // +1 or -1: row negated to make b nonnegative

	costRow []*rational.Rational
	objVal  *rational.Rational
}

// Solve runs the exact two-phase simplex over the current rows, columns
// and objective.
func (s *SimplexOracle) Solve() Status {
	s.duals, s.redcosts = nil, nil

	// Finite column bounds become hidden rows appended after the user
	// rows; their duals surface through the reduced costs.
	working := make([]lpRow, 0, len(s.rows)+len(s.colLower))
	working = append(working, s.rows...)
	for j := range s.colLower {
		unit := rational.NewVector()
		unit.Set(j, rational.FromInt64(1))
		if s.colLower[j] != nil {
			working = append(working, lpRow{coefs: unit, lhs: s.colLower[j]})
		}
		if s.colUpper[j] != nil {
			working = append(working, lpRow{coefs: unit, rhs: s.colUpper[j]})
		}
	}

	n := len(s.colLower)
	tab, ok := buildTableau(working, n)
	if !ok {
		return Other
	}

	// Phase 1: minimize the artificial sum.
	phase1 := make([]*rational.Rational, tab.nCols)
	for j := range phase1 {
		if j >= tab.artStart {
			phase1[j] = rational.FromInt64(1)
		} else {
			phase1[j] = rational.Zero()
		}
	}
	tab.reduceCosts(phase1)
	if !tab.iterate() {
		// The artificial sum is bounded below by zero; unbounded here
		// cannot happen.
		return Other
	}
	if tab.objVal.Sign() > 0 {
		s.extractDuals(tab, working, nil, true)
		return Infeasible
	}
	tab.evictArtificials()

	// Phase 2: the real objective over the split columns.
	sign := rational.FromInt64(1)
	if !s.minimize {
		sign = rational.FromInt64(-1)
	}
	phase2 := make([]*rational.Rational, tab.nCols)
	for j := range phase2 {
		phase2[j] = rational.Zero()
	}
	for _, idx := range s.obj.Support() {
		c := rational.Mul(sign, s.obj.Get(idx))
		phase2[2*idx] = c
		phase2[2*idx+1] = rational.Neg(c)
	}
	tab.reduceCosts(phase2)
	if !tab.iterate() {
		return Other
	}
	s.extractDuals(tab, working, sign, false)
	return Optimal
}

// buildTableau converts the working rows into equality form with split
// columns, slacks and artificials. Returns ok=false on a malformed row
// (finite lhs > finite rhs, or a ranged row, neither of which the engine
// produces).
func buildTableau(working []lpRow, n int) (*tableau, bool) {
	m := len(working)
	nSlack := 0
	for _, row := range working {
		if !(row.lhs != nil && row.rhs != nil) {
			nSlack++
		}
	}
	tab := &tableau{
		m:        m,
		nCols:    2*n + nSlack + m,
		artStart: 2*n + nSlack,
	}
	tab.t = make([][]*rational.Rational, m)
	tab.b = make([]*rational.Rational, m)
	tab.basis = make([]int, m)
	tab.rowSign = make([]int, m)

	slack := 2 * n
	for i, row := range working {
		dense := make([]*rational.Rational, tab.nCols)
		for j := range dense {
			dense[j] = rational.Zero()
		}
		for _, idx := range row.coefs.Support() {
			v := row.coefs.Get(idx)
			dense[2*idx] = v.Clone()
			dense[2*idx+1] = rational.Neg(v)
		}
		var b *rational.Rational
		switch {
		case row.lhs != nil && row.rhs != nil:
			if !rational.Equal(row.lhs, row.rhs) {
				return nil, false // ranged rows are not supported
			}
			b = row.lhs.Clone()
		case row.lhs != nil: // coefs.x >= lhs
			dense[slack] = rational.FromInt64(-1)
			slack++
			b = row.lhs.Clone()
		case row.rhs != nil: // coefs.x <= rhs
			dense[slack] = rational.FromInt64(1)
			slack++
			b = row.rhs.Clone()
		default:
			return nil, false
		}
		tab.rowSign[i] = 1
		if b.Sign() < 0 {
			for j := range dense {
				dense[j] = rational.Neg(dense[j])
			}
			b = rational.Neg(b)
			tab.rowSign[i] = -1
		}
		dense[tab.artStart+i] = rational.FromInt64(1)
		tab.t[i] = dense
		tab.b[i] = b
		tab.basis[i] = tab.artStart + i
	}
	return tab, true
}

// reduceCosts installs cost vector c as the tableau's cost row, reduced
// against the current basis.
func (tab *tableau) reduceCosts(c []*rational.Rational) {
	tab.costRow = make([]*rational.Rational, tab.nCols)
	for j := range c {
		tab.costRow[j] = c[j].Clone()
	}
	tab.objVal = rational.Zero()
	for i := 0; i < tab.m; i++ {
		cb := c[tab.basis[i]]
		if cb.Sign() == 0 {
			continue
		}
		for j := 0; j < tab.nCols; j++ {
			if tab.t[i][j].Sign() != 0 {
				tab.costRow[j] = rational.Sub(tab.costRow[j], rational.Mul(cb, tab.t[i][j]))
			}
		}
		tab.objVal = rational.Add(tab.objVal, rational.Mul(cb, tab.b[i]))
	}
}

// iterate pivots until optimality (true) or unboundedness (false),
// choosing columns by Bland's rule. Artificial columns never re-enter.
func (tab *tableau) iterate() bool {
	for {
		e := -1
		for j := 0; j < tab.artStart; j++ {
			if tab.costRow[j].Sign() < 0 {
				e = j
				break
			}
		}
		if e < 0 {
			return true
		}
		r := -1
		var best *rational.Rational
		for i := 0; i < tab.m; i++ {
			if tab.t[i][e].Sign() <= 0 {
				continue
			}
			ratio, _ := rational.Quo(tab.b[i], tab.t[i][e])
			if r < 0 || rational.Cmp(ratio, best) < 0 ||
				(rational.Cmp(ratio, best) == 0 && tab.basis[i] < tab.basis[r]) {
				r, best = i, ratio
			}
		}
		if r < 0 {
			return false
		}
		tab.pivot(r, e)
	}
}

// pivot makes column e basic in row r.
func (tab *tableau) pivot(r, e int) {
	p := tab.t[r][e]
	for j := 0; j < tab.nCols; j++ {
		tab.t[r][j], _ = rational.Quo(tab.t[r][j], p)
	}
	tab.b[r], _ = rational.Quo(tab.b[r], p)
	for i := 0; i < tab.m; i++ {
		if i == r || tab.t[i][e].Sign() == 0 {
			continue
		}
		f := tab.t[i][e].Clone()
		for j := 0; j < tab.nCols; j++ {
			if tab.t[r][j].Sign() != 0 {
				tab.t[i][j] = rational.Sub(tab.t[i][j], rational.Mul(f, tab.t[r][j]))
			}
		}
		tab.b[i] = rational.Sub(tab.b[i], rational.Mul(f, tab.b[r]))
	}
	f := tab.costRow[e].Clone()
	if f.Sign() != 0 {
		for j := 0; j < tab.nCols; j++ {
			if tab.t[r][j].Sign() != 0 {
				tab.costRow[j] = rational.Sub(tab.costRow[j], rational.Mul(f, tab.t[r][j]))
			}
		}
		tab.objVal = rational.Add(tab.objVal, rational.Mul(f, tab.b[r]))
	}
	tab.basis[r] = e
}

// evictArtificials pivots still-basic artificials out after phase 1 where
// a nonartificial column is available; rows with none are redundant and
// stay inert (all their nonartificial entries are zero and remain so).
func (tab *tableau) evictArtificials() {
	for i := 0; i < tab.m; i++ {
		if tab.basis[i] < tab.artStart {
			continue
		}
		for j := 0; j < tab.artStart; j++ {
			if tab.t[i][j].Sign() != 0 {
				tab.pivot(i, j)
				break
			}
		}
	}
}

// extractDuals reads the row multipliers off the artificial columns of the
// final cost row and derives the reduced costs against the visible rows
// only, so hidden bound-row duals surface per column.
//
// For phase 1 (farkas=true) the artificial cost is 1, so the tableau dual
// is 1 - costRow[art]; for phase 2 it is -costRow[art]. Certificate-ready
// signs: the stored row sign undoes the b-normalization, and a maximize
// objective (sign = -1) flips the optimal duals back.
func (s *SimplexOracle) extractDuals(tab *tableau, working []lpRow, sign *rational.Rational, farkas bool) {
	mults := make([]*rational.Rational, len(working))
	for i := range working {
		d := tab.costRow[tab.artStart+i]
		var y *rational.Rational
		if farkas {
			y = rational.Sub(rational.FromInt64(1), d)
		} else {
			y = rational.Neg(d)
		}
		if tab.rowSign[i] < 0 {
			y = rational.Neg(y)
		}
		if !farkas && sign != nil && sign.Sign() < 0 {
			y = rational.Neg(y)
		}
		mults[i] = y
	}
	s.duals = mults[:len(s.rows)]

	s.redcosts = make([]*rational.Rational, len(s.colLower))
	for j := range s.redcosts {
		rc := rational.Zero()
		if !farkas {
			rc = s.obj.Get(j).Clone()
		}
		for i := range s.rows {
			v := s.rows[i].coefs.Get(j)
			if v.Sign() != 0 {
				rc = rational.Sub(rc, rational.Mul(mults[i], v))
			}
		}
		s.redcosts[j] = rc
	}
}
