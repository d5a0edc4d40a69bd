package cert

import (
	"testing"

	"github.com/crillab/vipr/rational"
	"github.com/stretchr/testify/require"
)

func TestFalsehoodVsTautology(t *testing.T) {
	falsehood := NewConstraint("C", GE, rational.FromInt64(1), rational.NewVector())
	require.True(t, falsehood.IsFalsehood())
	require.False(t, falsehood.IsTautology())

	tautology := NewConstraint("C", LE, rational.FromInt64(1), rational.NewVector())
	require.False(t, tautology.IsFalsehood())
	require.True(t, tautology.IsTautology())

	eqFalse := NewConstraint("C", EQ, rational.FromInt64(1), rational.NewVector())
	require.True(t, eqFalse.IsFalsehood())

	eqTrue := NewConstraint("C", EQ, rational.FromInt64(0), rational.NewVector())
	require.True(t, eqTrue.IsTautology())
}

func TestObjectiveIntegrality(t *testing.T) {
	vars := []Variable{{Name: "x", Integer: true}, {Name: "y", Integer: false}}
	coefs := rational.NewVector()
	coefs.Set(0, rational.FromInt64(1))
	obj := NewObjective(Minimize, coefs, vars)
	require.True(t, obj.IsIntegral())

	coefs2 := rational.NewVector()
	coefs2.Set(0, rational.FromFrac(1, 2))
	obj2 := NewObjective(Minimize, coefs2, vars)
	require.False(t, obj2.IsIntegral())

	coefs3 := rational.NewVector()
	coefs3.Set(1, rational.FromInt64(1)) // y is not integer
	obj3 := NewObjective(Minimize, coefs3, vars)
	require.False(t, obj3.IsIntegral())
}

func TestBoundTableObserve(t *testing.T) {
	bt := NewBoundTable()
	c1 := NewConstraint("b1", LE, rational.FromInt64(10), singleVec(0, 1))
	bt.Observe(c1, 0)
	e, ok := bt.Upper(0)
	require.True(t, ok)
	require.True(t, rational.Equal(e.Value, rational.FromInt64(10)))

	c2 := NewConstraint("b2", LE, rational.FromInt64(5), singleVec(0, 1))
	bt.Observe(c2, 1)
	e2, _ := bt.Upper(0)
	require.True(t, rational.Equal(e2.Value, rational.FromInt64(5)), "should strengthen to the tighter bound")

	c3 := NewConstraint("b3", LE, rational.FromInt64(20), singleVec(0, 1))
	bt.Observe(c3, 2)
	e3, _ := bt.Upper(0)
	require.True(t, rational.Equal(e3.Value, rational.FromInt64(5)), "should not weaken an already-tighter bound")

	// -2x >= -6  ==  x <= 3, sense flips because coefficient is negative
	c4 := NewConstraint("b4", GE, rational.FromInt64(-6), singleVec(0, -2))
	bt.Observe(c4, 3)
	e4, _ := bt.Upper(0)
	require.True(t, rational.Equal(e4.Value, rational.FromInt64(3)))
}

func singleVec(idx int, val int64) *rational.Vector {
	v := rational.NewVector()
	v.Set(idx, rational.FromInt64(val))
	return v
}

func TestBestSolutionValue(t *testing.T) {
	vars := []Variable{{Name: "x", Integer: true}}
	coefs := singleVec(0, 1)
	obj := NewObjective(Minimize, coefs, vars)
	m := &Model{Objective: obj, Solutions: []Solution{
		{Label: "a", Values: singleVec(0, 5)},
		{Label: "b", Values: singleVec(0, 2)},
	}}
	best, ok := m.BestSolutionValue()
	require.True(t, ok)
	require.True(t, rational.Equal(best, rational.FromInt64(2)))
}
