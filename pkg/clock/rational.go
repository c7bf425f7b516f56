// ABOUTME: Exact rational timestamps for transport-level time arithmetic
// ABOUTME: Add/Sub/Mul normalize via GCD so comparisons never accumulate float drift
package clock

import (
	"fmt"
	"math"
	"time"
)

// RationalTime is an exact fractional timestamp in seconds, held as
// Num/Den. The zero value represents 0 s. Den is never negative; a zero Den
// is read as 1 so the zero value stays usable, mirroring math/big.Rat.
//
// RationalTime is an immutable value type: operations return new values.
type RationalTime struct {
	Num int64
	Den int32
}

// NewRationalTime returns the normalized rational num/den.
// It panics if den is zero.
func NewRationalTime(num int64, den int32) RationalTime {
	if den == 0 {
		panic("clock: zero denominator")
	}
	return norm64(num, int64(den))
}

// FromSamples returns the exact time covered by n samples at the given rate.
// It panics if rate is not positive.
func FromSamples(n int64, rate int) RationalTime {
	if rate <= 0 {
		panic(fmt.Sprintf("clock: invalid sample rate %d", rate))
	}
	return norm64(n, int64(rate))
}

// FromDuration converts a wall-clock duration to an exact rational.
func FromDuration(d time.Duration) RationalTime {
	return norm64(d.Nanoseconds(), int64(time.Second))
}

// FromSeconds approximates a float64 second count as a rational with
// nanosecond resolution.
func FromSeconds(s float64) RationalTime {
	return FromDuration(time.Duration(math.Round(s * float64(time.Second))))
}

func (r RationalTime) den() int64 {
	if r.Den == 0 {
		return 1
	}
	return int64(r.Den)
}

// norm64 reduces num/den to lowest terms with a positive denominator. When
// the reduced denominator still cannot fit in 32 bits the value is
// approximated by halving both terms until it does; exactness is lost only
// in that case.
func norm64(num, den int64) RationalTime {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return RationalTime{Num: 0, Den: 1}
	}
	g := gcd64(abs64(num), den)
	num /= g
	den /= g
	for den > math.MaxInt32 {
		num >>= 1
		den >>= 1
	}
	if den == 0 {
		den = 1
	}
	return RationalTime{Num: num, Den: int32(den)}
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// mulOverflows reports whether a*b overflows int64.
func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	c := a * b
	return c/b != a
}

// addOverflows reports whether a+b overflows int64.
func addOverflows(a, b int64) bool {
	c := a + b
	return (b > 0 && c < a) || (b < 0 && c > a)
}

// Add returns r+o exactly. Denominators are GCD-reduced before the cross
// multiply so products that would leave 32-bit range reduce instead of
// overflowing. Pathological operands that overflow 64-bit intermediates
// degrade to a nanosecond-resolution approximation.
func (r RationalTime) Add(o RationalTime) RationalTime {
	rd, od := r.den(), o.den()
	g := gcd64(rd, od)
	lr, lo := od/g, rd/g

	if mulOverflows(r.Num, lr) || mulOverflows(o.Num, lo) {
		return FromSeconds(r.Seconds() + o.Seconds())
	}
	a, b := r.Num*lr, o.Num*lo
	if addOverflows(a, b) {
		return FromSeconds(r.Seconds() + o.Seconds())
	}
	return norm64(a+b, rd*lr)
}

// Sub returns r-o exactly.
func (r RationalTime) Sub(o RationalTime) RationalTime {
	return r.Add(o.Neg())
}

// Mul returns r*o exactly, reducing cross factors first.
func (r RationalTime) Mul(o RationalTime) RationalTime {
	rd, od := r.den(), o.den()
	g1 := gcd64(abs64(r.Num), od)
	g2 := gcd64(abs64(o.Num), rd)
	a, b := r.Num/g1, o.Num/g2
	da, db := rd/g2, od/g1

	if mulOverflows(a, b) || mulOverflows(da, db) {
		return FromSeconds(r.Seconds() * o.Seconds())
	}
	return norm64(a*b, da*db)
}

// MulInt returns r*n exactly.
func (r RationalTime) MulInt(n int64) RationalTime {
	d := r.den()
	g := gcd64(abs64(n), d)
	n /= g
	if mulOverflows(r.Num, n) {
		return FromSeconds(r.Seconds() * float64(n*g))
	}
	return norm64(r.Num*n, d/g)
}

// Inv returns 1/r. It panics if r is zero.
func (r RationalTime) Inv() RationalTime {
	if r.Num == 0 {
		panic("clock: inverse of zero")
	}
	return norm64(r.den(), r.Num)
}

// Neg returns -r.
func (r RationalTime) Neg() RationalTime {
	return RationalTime{Num: -r.Num, Den: r.Den}
}

// Abs returns the magnitude of r.
func (r RationalTime) Abs() RationalTime {
	if r.Num < 0 {
		return r.Neg()
	}
	return r
}

// Sign returns -1, 0 or 1 by the sign of r.
func (r RationalTime) Sign() int {
	switch {
	case r.Num < 0:
		return -1
	case r.Num > 0:
		return 1
	}
	return 0
}

// IsZero reports whether r is exactly zero.
func (r RationalTime) IsZero() bool {
	return r.Num == 0
}

// Cmp compares r and o, returning -1, 0 or 1. The comparison is exact
// unless the cross products overflow int64, where it degrades to float64.
func (r RationalTime) Cmp(o RationalTime) int {
	rd, od := r.den(), o.den()
	if mulOverflows(r.Num, od) || mulOverflows(o.Num, rd) {
		a, b := r.Seconds(), o.Seconds()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	a, b := r.Num*od, o.Num*rd
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether r < o.
func (r RationalTime) Less(o RationalTime) bool {
	return r.Cmp(o) < 0
}

// Equal reports whether r and o denote the same instant.
func (r RationalTime) Equal(o RationalTime) bool {
	return r.Cmp(o) == 0
}

// Round quantizes r to the nearest whole multiple of unit, rounding half
// away from zero. It panics if unit is zero.
func (r RationalTime) Round(unit RationalTime) RationalTime {
	if unit.Num == 0 {
		panic("clock: round to zero unit")
	}
	q := r.Mul(unit.Inv())
	return unit.MulInt(q.roundInt())
}

// roundInt returns the nearest integer to r, half away from zero.
func (r RationalTime) roundInt() int64 {
	d := r.den()
	q := r.Num / d
	rem := r.Num % d
	if 2*abs64(rem) >= d {
		if r.Num < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// Samples returns the nearest sample index to r at the given rate.
func (r RationalTime) Samples(rate int) int64 {
	return r.MulInt(int64(rate)).roundInt()
}

// Seconds returns r as a float64 second count. Lossy; for display and
// interop only, never for transport comparisons.
func (r RationalTime) Seconds() float64 {
	return float64(r.Num) / float64(r.den())
}

// Duration returns r as a time.Duration with nanosecond truncation.
func (r RationalTime) Duration() time.Duration {
	d := r.den()
	whole := r.Num / d
	rem := r.Num % d
	return time.Duration(whole)*time.Second + time.Duration(rem*int64(time.Second)/d)
}

func (r RationalTime) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.den())
}
