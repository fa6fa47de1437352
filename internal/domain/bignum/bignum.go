// Package bignum implements the arbitrary-magnitude decimal used for every
// economic quantity in the game. Idle economies blow past float64 long before
// the late game, so values are kept as a normalized mantissa in [1, 10)
// paired with a decimal exponent.
// This package is PURE and must NOT import any infrastructure packages.
package bignum

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Big is a non-negative decimal of the form mantissa * 10^exp.
// The zero value is the number zero. Values are always normalized:
// either mantissa == 0, or 1 <= mantissa < 10.
type Big struct {
	m float64
	e int64
}

// Zero returns the number 0.
func Zero() Big { return Big{} }

// One returns the number 1.
func One() Big { return Big{m: 1, e: 0} }

// New builds a Big from a float64. Negative and non-finite inputs collapse
// to zero; resource amounts are non-negative by contract.
func New(v float64) Big {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Big{}
	}
	return norm(v)
}

// FromInt builds a Big from an integer count (levels, resets, ticks).
func FromInt(v int64) Big {
	return New(float64(v))
}

// FromParts builds a Big directly from mantissa and exponent.
// Used by Parse and by content definitions like {mantissa: 1, exp: 12}.
func FromParts(m float64, e int64) Big {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return Big{}
	}
	b := Big{m: m, e: e}
	b.renorm()
	return b
}

// norm normalizes a plain positive float64.
func norm(v float64) Big {
	e := int64(math.Floor(math.Log10(v)))
	m := v / math.Pow10(int(e))
	b := Big{m: m, e: e}
	b.renorm()
	return b
}

// renorm repairs the mantissa range after an arithmetic step, then rounds
// the mantissa to 15 significant digits. Float error from the arithmetic
// lives below that threshold, so integer-exact values stay exact through
// add/sub/mul chains (the break_infinity correction).
func (b *Big) renorm() {
	if b.m == 0 {
		b.e = 0
		return
	}
	for b.m >= 10 {
		b.m /= 10
		b.e++
	}
	for b.m < 1 {
		b.m *= 10
		b.e--
	}
	b.m = math.Round(b.m*1e14) / 1e14
	if b.m >= 10 {
		b.m /= 10
		b.e++
	}
}

// IsZero reports whether b is exactly zero.
func (b Big) IsZero() bool { return b.m == 0 }

// Mantissa returns the normalized mantissa.
func (b Big) Mantissa() float64 { return b.m }

// Exponent returns the decimal exponent.
func (b Big) Exponent() int64 { return b.e }

// Add returns b + o.
func (b Big) Add(o Big) Big {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	// Order so that b carries the larger exponent.
	if o.e > b.e {
		b, o = o, b
	}
	diff := b.e - o.e
	if diff > 17 {
		// The smaller term is below representable precision.
		return b
	}
	r := Big{m: b.m + o.m/math.Pow10(int(diff)), e: b.e}
	r.renorm()
	return r
}

// Sub returns b - o, clamped at zero. Callers that must not lose value
// (resource deduction) pre-check affordability with GTE before subtracting.
func (b Big) Sub(o Big) Big {
	if o.IsZero() {
		return b
	}
	if !b.GT(o) {
		return Big{}
	}
	diff := b.e - o.e
	if diff > 17 {
		return b
	}
	r := Big{m: b.m - o.m/math.Pow10(int(diff)), e: b.e}
	if r.m <= 0 {
		return Big{}
	}
	r.renorm()
	return r
}

// Mul returns b * o.
func (b Big) Mul(o Big) Big {
	if b.IsZero() || o.IsZero() {
		return Big{}
	}
	r := Big{m: b.m * o.m, e: b.e + o.e}
	r.renorm()
	return r
}

// MulF returns b scaled by a plain float factor. Negative factors clamp to
// zero; boost multipliers are non-negative by contract.
func (b Big) MulF(f float64) Big {
	if b.IsZero() || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return Big{}
	}
	r := Big{m: b.m * f, e: b.e}
	r.renorm()
	return r
}

// Div returns b / o. Division by zero returns zero; the degenerate cases in
// cost formulas are guarded before dividing.
func (b Big) Div(o Big) Big {
	if b.IsZero() || o.IsZero() {
		return Big{}
	}
	r := Big{m: b.m / o.m, e: b.e - o.e}
	r.renorm()
	return r
}

// Pow returns b^p. Non-negative integral exponents below 1e6 use exact
// repeated squaring; everything else (root formulas for prestige) goes
// through logarithms.
func (b Big) Pow(p float64) Big {
	if p == 0 {
		return One()
	}
	if b.IsZero() {
		return Big{}
	}
	if p > 0 && p < 1e6 && p == math.Trunc(p) {
		return b.PowInt(int64(p))
	}
	lg := math.Log10(b.m) + float64(b.e)
	r := lg * p
	e := math.Floor(r)
	return FromParts(math.Pow(10, r-e), int64(e))
}

// PowInt returns b^n for n >= 0 by repeated squaring.
func (b Big) PowInt(n int64) Big {
	if n <= 0 {
		return One()
	}
	acc := One()
	base := b
	for n > 0 {
		if n&1 == 1 {
			acc = acc.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return acc
}

// Cmp returns -1, 0 or +1 comparing b against o. Comparisons stay
// well-ordered far beyond 1e300 because only exponents are compared first.
func (b Big) Cmp(o Big) int {
	if b.IsZero() && o.IsZero() {
		return 0
	}
	if b.IsZero() {
		return -1
	}
	if o.IsZero() {
		return 1
	}
	if b.e != o.e {
		if b.e < o.e {
			return -1
		}
		return 1
	}
	if b.m < o.m {
		return -1
	}
	if b.m > o.m {
		return 1
	}
	return 0
}

func (b Big) LT(o Big) bool  { return b.Cmp(o) < 0 }
func (b Big) LTE(o Big) bool { return b.Cmp(o) <= 0 }
func (b Big) GT(o Big) bool  { return b.Cmp(o) > 0 }
func (b Big) GTE(o Big) bool { return b.Cmp(o) >= 0 }
func (b Big) Eq(o Big) bool  { return b.Cmp(o) == 0 }

// Max returns the larger of b and o.
func (b Big) Max(o Big) Big {
	if b.GTE(o) {
		return b
	}
	return o
}

// Min returns the smaller of b and o.
func (b Big) Min(o Big) Big {
	if b.LTE(o) {
		return b
	}
	return o
}

// Clamp bounds b into [min, max].
func (b Big) Clamp(min, max Big) Big {
	if b.LT(min) {
		return min
	}
	if b.GT(max) {
		return max
	}
	return b
}

// Floor drops the fractional part. Values at exponent 15 and above are
// already integral at double precision.
func (b Big) Floor() Big {
	if b.IsZero() || b.e >= 15 {
		return b
	}
	if b.e < 0 {
		return Big{}
	}
	return New(math.Floor(b.m * math.Pow10(int(b.e))))
}

// Float64 converts to a plain float. Overflows to +Inf past ~1e308; use only
// for display ratios and small counts.
func (b Big) Float64() float64 {
	if b.IsZero() {
		return 0
	}
	return b.m * math.Pow10(int(b.e))
}

// PercentOf returns the fraction of target reached, clamped to [0, 1].
// Used for achievement progress bars.
func (b Big) PercentOf(target Big) float64 {
	if target.IsZero() {
		return 1
	}
	if b.GTE(target) {
		return 1
	}
	diff := target.e - b.e
	if b.IsZero() || diff > 17 {
		return 0
	}
	return (b.m / target.m) / math.Pow10(int(diff))
}

// ApproxEqual reports whether b and o agree within a relative tolerance.
// Test helper for closed-form vs iterated-sum comparisons.
func (b Big) ApproxEqual(o Big, relTol float64) bool {
	if b.IsZero() || o.IsZero() {
		return b.Cmp(o) == 0
	}
	if b.e != o.e {
		// Exponent off by one can still be near-equal at the mantissa edge.
		if b.e == o.e+1 {
			return math.Abs(b.m*10-o.m) <= relTol*o.m
		}
		if o.e == b.e+1 {
			return math.Abs(o.m*10-b.m) <= relTol*b.m
		}
		return false
	}
	return math.Abs(b.m-o.m) <= relTol*math.Max(b.m, o.m)
}

// String renders the canonical serialized form: the shortest mantissa,
// followed by "e<exp>" when the exponent is non-zero. Parse(String()) is an
// exact round trip because mantissa and exponent travel separately.
func (b Big) String() string {
	if b.IsZero() {
		return "0"
	}
	ms := strconv.FormatFloat(b.m, 'g', -1, 64)
	if b.e == 0 {
		return ms
	}
	return ms + "e" + strconv.FormatInt(b.e, 10)
}

// Parse decodes the canonical form, plus human-friendly inputs like "100",
// "8e12" or "2.5E3". Negative values are rejected.
func Parse(s string) (Big, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Big{}, fmt.Errorf("bignum: empty string")
	}
	if s == "0" {
		return Big{}, nil
	}
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Big{}, fmt.Errorf("bignum: parse %q: %w", s, err)
		}
		if v < 0 {
			return Big{}, fmt.Errorf("bignum: negative value %q", s)
		}
		return New(v), nil
	}
	m, err := strconv.ParseFloat(s[:idx], 64)
	if err != nil {
		return Big{}, fmt.Errorf("bignum: parse mantissa of %q: %w", s, err)
	}
	if m < 0 {
		return Big{}, fmt.Errorf("bignum: negative value %q", s)
	}
	e, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil {
		return Big{}, fmt.Errorf("bignum: parse exponent of %q: %w", s, err)
	}
	return FromParts(m, e), nil
}

// MustParse is Parse for static content definitions; it panics on bad input,
// which is a content-author error caught at boot.
func MustParse(s string) Big {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MarshalJSON encodes as the canonical quoted string.
func (b Big) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(b.String())), nil
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers
// (pre-v2 save documents stored plain numbers).
func (b *Big) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		var err error
		s, err = strconv.Unquote(s)
		if err != nil {
			return err
		}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
