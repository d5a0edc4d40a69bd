package complete

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crillab/vipr/rational"
)

func vec(pairs ...interface{}) *rational.Vector {
	v := rational.NewVector()
	for i := 0; i < len(pairs); i += 2 {
		v.Set(pairs[i].(int), rational.FromInt64(int64(pairs[i+1].(int))))
	}
	return v
}

func TestSimplexOptimalDuals(t *testing.T) {
	// min x+y s.t. x >= 1, y >= 2. Optimum 3 with duals (1, 1).
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.AddColumn(nil, nil)
	o.AddRow(vec(0, 1), rational.FromInt64(1), nil)
	o.AddRow(vec(1, 1), rational.FromInt64(2), nil)
	o.SetObjective(vec(0, 1, 1, 1), true)

	require.Equal(t, Optimal, o.Solve())
	duals := o.Duals()
	require.Len(t, duals, 2)
	require.True(t, rational.Equal(duals[0], rational.FromInt64(1)))
	require.True(t, rational.Equal(duals[1], rational.FromInt64(1)))
	for _, rc := range o.ReducedCosts() {
		require.True(t, rc.IsZero())
	}
}

func TestSimplexDegenerateChoice(t *testing.T) {
	// min x+y s.t. 4x+y >= 1, 4x-y <= 2, y >= -1/2, y >= 0. The optimum
	// is 1/4; the dual-weighted rhs sum must reproduce it exactly.
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.AddColumn(nil, nil)
	o.AddRow(vec(0, 4, 1, 1), rational.FromInt64(1), nil)
	o.AddRow(vec(0, 4, 1, -1), nil, rational.FromInt64(2))
	o.AddRow(vec(1, 1), rational.FromFrac(-1, 2), nil)
	o.AddRow(vec(1, 1), rational.FromInt64(0), nil)
	o.SetObjective(vec(0, 1, 1, 1), true)

	require.Equal(t, Optimal, o.Solve())
	duals := o.Duals()
	bound := rational.Zero()
	rhs := []*rational.Rational{
		rational.FromInt64(1), rational.FromInt64(2),
		rational.FromFrac(-1, 2), rational.FromInt64(0),
	}
	for i, d := range duals {
		bound = rational.Add(bound, rational.Mul(d, rhs[i]))
	}
	require.True(t, rational.Equal(bound, rational.FromFrac(1, 4)), "dual bound %s", bound)
	// Certificate-ready signs: nonneg on >= rows, nonpos on <= rows.
	require.True(t, duals[0].Sign() >= 0)
	require.True(t, duals[1].Sign() <= 0)
}

func TestSimplexFarkas(t *testing.T) {
	// x >= 1 and x <= 0 is infeasible; the Farkas multipliers must
	// cancel the coefficients and leave a positive rhs.
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.AddRow(vec(0, 1), rational.FromInt64(1), nil)
	o.AddRow(vec(0, 1), nil, rational.FromInt64(0))
	o.SetObjective(vec(0, 1), true)

	require.Equal(t, Infeasible, o.Solve())
	duals := o.Duals()
	require.Len(t, duals, 2)
	require.True(t, duals[0].Sign() > 0)
	require.True(t, duals[1].Sign() < 0)

	coefSum := rational.Add(duals[0], duals[1])
	require.True(t, coefSum.IsZero())
	rhsSum := rational.Mul(duals[0], rational.FromInt64(1)) // second rhs is 0
	require.True(t, rhsSum.Sign() > 0)
}

func TestSimplexMaximize(t *testing.T) {
	// max x s.t. x <= 5: dual 1 on the <= row derives x <= 5 directly.
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.AddRow(vec(0, 1), nil, rational.FromInt64(5))
	o.SetObjective(vec(0, 1), false)

	require.Equal(t, Optimal, o.Solve())
	duals := o.Duals()
	require.True(t, rational.Equal(duals[0], rational.FromInt64(1)))
}

func TestSimplexEqualityRow(t *testing.T) {
	// min x s.t. x = 3.
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	three := rational.FromInt64(3)
	o.AddRow(vec(0, 1), three, three)
	o.SetObjective(vec(0, 1), true)

	require.Equal(t, Optimal, o.Solve())
	require.True(t, rational.Equal(o.Duals()[0], rational.FromInt64(1)))
}

func TestSimplexUnboundedIsOther(t *testing.T) {
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.SetObjective(vec(0, 1), true)
	require.Equal(t, Other, o.Solve())
}

func TestSimplexColumnBoundsSurfaceAsReducedCosts(t *testing.T) {
	// min x with x >= 2 as a column bound: the bound's dual shows up as
	// the reduced cost, not as a row dual.
	o := NewSimplexOracle()
	o.AddColumn(rational.FromInt64(2), nil)
	o.SetObjective(vec(0, 1), true)

	require.Equal(t, Optimal, o.Solve())
	require.Empty(t, o.Duals())
	rc := o.ReducedCosts()
	require.Len(t, rc, 1)
	require.True(t, rational.Equal(rc[0], rational.FromInt64(1)))
}

func TestSimplexRemoveRows(t *testing.T) {
	o := NewSimplexOracle()
	o.AddColumn(nil, nil)
	o.AddRow(vec(0, 1), rational.FromInt64(1), nil)
	o.AddRow(vec(0, 1), nil, rational.FromInt64(0))
	o.AddRow(vec(0, 1), rational.FromInt64(-7), nil)

	newPos := o.RemoveRows([]bool{false, true, false})
	require.Equal(t, []int{0, -1, 1}, newPos)
	require.Equal(t, 2, o.NumRows())

	// Dropping the contradicting row restores feasibility.
	o.SetObjective(vec(0, 1), true)
	require.Equal(t, Optimal, o.Solve())
	require.Len(t, o.Duals(), 2)
}
