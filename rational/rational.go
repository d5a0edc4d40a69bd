/*
Package rational provides the exact-arithmetic kernel the rest of this
module builds on: arbitrary-precision rationals and sparse rational
vectors.

All arithmetic here is exact. There is no floating-point code anywhere in
this package, and none should ever be added: the entire point of a
certificate verifier is to avoid the numerical tolerances a solver itself
may have used.

A Rational wraps math/big.Rat. Vectors (see vector.go) are sparse maps from
a nonnegative index to a nonzero *Rational, matching the certificate
format's "k idx1 val1 ... idxk valk" encoding directly.
*/
package rational

import (
	"fmt"
	"math/big"
)

// A Rational is an arbitrary-precision signed rational number.
type Rational struct {
	v big.Rat
}

// Zero is the rational 0.
func Zero() *Rational { return &Rational{} }

// FromInt64 returns the rational n/1.
func FromInt64(n int64) *Rational {
	r := &Rational{}
	r.v.SetInt64(n)
	return r
}

// FromFrac returns the rational num/den. Panics if den is 0. Certificate
// input goes through ParseRational, which returns an error instead and
// does not call FromFrac.
func FromFrac(num, den int64) *Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	r := &Rational{}
	r.v.SetFrac64(num, den)
	return r
}

// ParseRational parses a plain integer literal ("3", "-7") or a fraction
// literal ("a/b" with b positive), as used throughout the certificate
// format. It never accepts "inf"/"-inf": callers that need to represent
// unbounded RTP bounds use a separate sentinel (see cert.RTP).
func ParseRational(s string) (*Rational, error) {
	r := &Rational{}
	if _, ok := r.v.SetString(s); !ok {
		return nil, fmt.Errorf("rational: malformed number %q", s)
	}
	return r, nil
}

// Sign returns -1, 0 or 1 according to the sign of r.
func (r *Rational) Sign() int {
	if r == nil {
		return 0
	}
	return r.v.Sign()
}

// IsZero reports whether r is exactly zero.
func (r *Rational) IsZero() bool { return r.Sign() == 0 }

// IsInt reports whether r denotes an integer value.
func (r *Rational) IsInt() bool { return r.v.IsInt() }

// Add returns a new Rational equal to a+b.
func Add(a, b *Rational) *Rational {
	r := &Rational{}
	r.v.Add(&a.v, &b.v)
	return r
}

// Sub returns a new Rational equal to a-b.
func Sub(a, b *Rational) *Rational {
	r := &Rational{}
	r.v.Sub(&a.v, &b.v)
	return r
}

// Mul returns a new Rational equal to a*b.
func Mul(a, b *Rational) *Rational {
	r := &Rational{}
	r.v.Mul(&a.v, &b.v)
	return r
}

// Neg returns a new Rational equal to -a.
func Neg(a *Rational) *Rational {
	r := &Rational{}
	r.v.Neg(&a.v)
	return r
}

// Quo returns a/b. It returns an error instead of panicking when b is
// zero, since division here is always driven by certificate content that
// may be malformed.
func Quo(a, b *Rational) (*Rational, error) {
	if b.IsZero() {
		return nil, fmt.Errorf("rational: division by zero")
	}
	r := &Rational{}
	r.v.Quo(&a.v, &b.v)
	return r, nil
}

// Cmp compares a and b, returning -1, 0 or +1.
func Cmp(a, b *Rational) int { return a.v.Cmp(&b.v) }

// Equal reports whether a and b denote the same rational value.
func Equal(a, b *Rational) bool { return Cmp(a, b) == 0 }

// Floor returns the greatest integer <= r, as a Rational.
func Floor(r *Rational) *Rational {
	var z big.Int
	num, den := r.v.Num(), r.v.Denom()
	z.Div(num, den) // big.Int.Div implements Euclidean division, floor for positive divisors
	out := &Rational{}
	out.v.SetInt(&z)
	return out
}

// Ceil returns the smallest integer >= r, as a Rational.
func Ceil(r *Rational) *Rational {
	f := Floor(r)
	if Equal(f, r) {
		return f
	}
	return Add(f, FromInt64(1))
}

// String renders r the way certificate literals are written: a plain
// integer when the denominator is 1, otherwise "num/den".
func (r *Rational) String() string {
	if r == nil {
		return "0"
	}
	if r.v.IsInt() {
		return r.v.Num().String()
	}
	return r.v.RatString()
}

// Clone returns an independent copy of r.
func (r *Rational) Clone() *Rational {
	out := &Rational{}
	out.v.Set(&r.v)
	return out
}
