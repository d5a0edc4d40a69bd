package rational

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func vec(pairs ...interface{}) *Vector {
	v := NewVector()
	for i := 0; i < len(pairs); i += 2 {
		v.Set(pairs[i].(int), FromInt64(int64(pairs[i+1].(int))))
	}
	return v
}

func TestVectorGetAbsent(t *testing.T) {
	v := NewVector()
	require.True(t, v.Get(42).IsZero())
}

func TestVectorAddScaled(t *testing.T) {
	v := vec(0, 1, 1, 2)
	v.AddScaled(FromInt64(2), vec(1, 1, 2, 3))
	require.True(t, Equal(v.Get(0), FromInt64(1)))
	require.True(t, Equal(v.Get(1), FromInt64(4)))
	require.True(t, Equal(v.Get(2), FromInt64(6)))
}

func TestVectorSub(t *testing.T) {
	a := vec(0, 5, 1, 2)
	b := vec(0, 3, 2, 7)
	d := a.Sub(b)
	require.True(t, Equal(d.Get(0), FromInt64(2)))
	require.True(t, Equal(d.Get(1), FromInt64(2)))
	require.True(t, Equal(d.Get(2), FromInt64(-7)))
}

func TestVectorEqualSemantic(t *testing.T) {
	a := vec(0, 1, 1, 0) // explicit zero at 1
	b := vec(0, 1)
	require.True(t, a.Equal(b))

	c := NewVector()
	c.Set(0, FromFrac(2, 2)) // unreduced form of 1
	require.True(t, c.Equal(b))
}

func TestVectorCompactifyIdempotent(t *testing.T) {
	v := vec(0, 1, 1, 0)
	v.Compactify()
	require.Equal(t, []int{0}, v.Support())
	v.Compactify()
	require.Equal(t, []int{0}, v.Support())
}

func TestVectorCanonicalizeIdempotent(t *testing.T) {
	v := NewVector()
	v.Set(0, FromFrac(4, 2))
	v.Canonicalize()
	require.True(t, Equal(v.Get(0), FromInt64(2)))
	v.Canonicalize()
	require.True(t, Equal(v.Get(0), FromInt64(2)))
}

func TestVectorDot(t *testing.T) {
	a := vec(0, 1, 1, 2)
	b := vec(0, 3, 1, 4)
	require.True(t, Equal(a.Dot(b), FromInt64(11)))
}

func TestVectorScale(t *testing.T) {
	a := vec(0, 1, 1, 2)
	s := a.Scale(FromInt64(3))
	require.True(t, Equal(s.Get(0), FromInt64(3)))
	require.True(t, Equal(s.Get(1), FromInt64(6)))
}

func TestVectorIsEmpty(t *testing.T) {
	v := vec(0, 0, 1, 0)
	require.True(t, v.IsEmpty())
	v2 := vec(0, 1)
	require.False(t, v2.IsEmpty())
}
