package rational

import "sort"

// A Vector is a sparse mapping from nonnegative index to nonzero
// Rational. Absent indices are implicitly zero. Vectors may contain
// explicit zero entries or unreduced values until Compactify/Canonicalize
// is called; callers must tolerate both.
type Vector struct {
	m map[int]*Rational
}

// NewVector returns an empty sparse vector.
func NewVector() *Vector {
	return &Vector{m: make(map[int]*Rational)}
}

// Get returns the value at idx, or zero if absent.
func (v *Vector) Get(idx int) *Rational {
	if v == nil {
		return Zero()
	}
	if r, ok := v.m[idx]; ok {
		return r
	}
	return Zero()
}

// Set stores val at idx. A zero val is still stored explicitly; use
// Compactify to drop it.
func (v *Vector) Set(idx int, val *Rational) {
	v.m[idx] = val
}

// AddScaled performs v[i] += scale*other[i] for every i in other's
// support, in place.
func (v *Vector) AddScaled(scale *Rational, other *Vector) {
	if scale.IsZero() {
		return
	}
	for idx, val := range other.m {
		cur := v.Get(idx)
		v.Set(idx, Add(cur, Mul(scale, val)))
	}
}

// Sub returns a new vector whose coefficient at each index is
// v[idx] - other[idx]. Zero results remain explicit until the next
// Compactify.
func (v *Vector) Sub(other *Vector) *Vector {
	out := NewVector()
	for idx, val := range v.m {
		out.Set(idx, val.Clone())
	}
	for idx, val := range other.m {
		out.Set(idx, Sub(out.Get(idx), val))
	}
	return out
}

// Compactify drops every explicit zero entry. Idempotent.
func (v *Vector) Compactify() {
	for idx, val := range v.m {
		if val.IsZero() {
			delete(v.m, idx)
		}
	}
}

// Canonicalize reduces every value to lowest terms. Idempotent; math/big.Rat
// values are always stored in lowest terms already, so this exists to keep
// the contract explicit at call sites (and to absorb any future backing
// representation that isn't auto-reduced).
func (v *Vector) Canonicalize() {
	for idx, val := range v.m {
		v.m[idx] = val.Clone()
	}
}

// Equal reports whether v and other denote the same index->value map,
// ignoring absent/explicit-zero distinctions and unreduced forms. This is
// potentially expensive; callers that expect many repeated
// equality checks against accumulated vectors should compactify+canonicalize
// once up front rather than relying on retry alone.
func (v *Vector) Equal(other *Vector) bool {
	if v == other {
		// Shared instances (notably the objective vector referenced by
		// every OBJ-payload constraint) compare by identity first.
		return true
	}
	a, b := v.support(), other.support()
	if len(a) != len(b) {
		return false
	}
	for _, idx := range a {
		if Cmp(v.Get(idx), other.Get(idx)) != 0 {
			return false
		}
	}
	return true
}

// support returns the sorted list of indices with a nonzero value.
func (v *Vector) support() []int {
	out := make([]int, 0, len(v.m))
	for idx, val := range v.m {
		if !val.IsZero() {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Support returns the sorted list of indices carrying a nonzero
// coefficient, after an implicit compactify. Used by the writer and by
// weak completion's declared-support pass.
func (v *Vector) Support() []int { return v.support() }

// Dot returns the scalar product of v and other.
func (v *Vector) Dot(other *Vector) *Rational {
	sum := Zero()
	small, big := v, other
	if len(other.m) < len(v.m) {
		small, big = other, v
	}
	for idx, val := range small.m {
		sum = Add(sum, Mul(val, big.Get(idx)))
	}
	return sum
}

// Scale returns a new vector equal to scale*v.
func (v *Vector) Scale(scale *Rational) *Vector {
	out := NewVector()
	for idx, val := range v.m {
		out.Set(idx, Mul(scale, val))
	}
	return out
}

// Clone returns an independent deep copy of v.
func (v *Vector) Clone() *Vector {
	out := NewVector()
	for idx, val := range v.m {
		out.Set(idx, val.Clone())
	}
	return out
}

// IsEmpty reports whether v has no nonzero entries, after compactify.
func (v *Vector) IsEmpty() bool { return len(v.support()) == 0 }
