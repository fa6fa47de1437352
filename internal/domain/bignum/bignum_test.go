package bignum

import (
	"encoding/json"
	"testing"
)

func TestAddAcrossMagnitudes(t *testing.T) {
	// Setup
	a := New(90)
	b := New(10)

	// Act
	sum := a.Add(b)

	// Assert
	if !sum.Eq(New(100)) {
		t.Errorf("Expected 90+10 = 100, got %s", sum)
	}

	// A term 20 orders of magnitude below the other must vanish.
	huge := FromParts(1, 40)
	tiny := New(5)
	if !huge.Add(tiny).Eq(huge) {
		t.Errorf("Expected 1e40 + 5 = 1e40, got %s", huge.Add(tiny))
	}
}

func TestSubClampsAtZero(t *testing.T) {
	a := New(10)
	b := New(25)

	if got := a.Sub(b); !got.IsZero() {
		t.Errorf("Expected 10-25 clamped to 0, got %s", got)
	}
	if got := b.Sub(a); !got.Eq(New(15)) {
		t.Errorf("Expected 25-10 = 15, got %s", got)
	}
}

func TestArithmeticStaysIntegerExact(t *testing.T) {
	// Subtraction across an exponent boundary: 100 - 90 = 10, not 9.999...
	if got := New(100).Sub(New(90)); !got.Eq(New(10)) {
		t.Errorf("Expected 100-90 = 10 exactly, got %s", got)
	}

	// A multiply chain of integers must not pick up mantissa dust.
	acc := One()
	for i := 0; i < 10; i++ {
		acc = acc.Mul(New(2))
	}
	if !acc.Eq(New(1024)) {
		t.Errorf("Expected ten doublings = 1024 exactly, got %s", acc)
	}

	// Repeated addition of equal terms lands on the exact total.
	sum := Zero()
	for i := 0; i < 100; i++ {
		sum = sum.Add(New(0.1))
	}
	if !sum.Eq(New(10)) {
		t.Errorf("Expected 100 x 0.1 = 10 exactly, got %s", sum)
	}
}

func TestComparisonsBeyondFloatRange(t *testing.T) {
	// 1e300-scale economies must stay well-ordered.
	a := FromParts(2, 300)
	b := FromParts(1.9, 300)
	c := FromParts(1, 301)

	if !a.GT(b) {
		t.Errorf("Expected 2e300 > 1.9e300")
	}
	if !c.GT(a) {
		t.Errorf("Expected 1e301 > 2e300")
	}
	if !a.GTE(a) || !a.LTE(a) || !a.Eq(a) {
		t.Errorf("Expected reflexive comparisons on 2e300")
	}

	// Past float64 entirely.
	d := FromParts(1, 500)
	e := FromParts(9.99, 499)
	if !d.GT(e) {
		t.Errorf("Expected 1e500 > 9.99e499")
	}
}

func TestPowIntegerAndFractional(t *testing.T) {
	if got := New(1.15).Pow(2); !got.ApproxEqual(New(1.3225), 1e-12) {
		t.Errorf("Expected 1.15^2 = 1.3225, got %s", got)
	}
	if got := New(8).Pow(1.0 / 3.0); !got.ApproxEqual(New(2), 1e-9) {
		t.Errorf("Expected 8^(1/3) = 2, got %s", got)
	}
	if got := New(2).PowInt(10); !got.Eq(New(1024)) {
		t.Errorf("Expected 2^10 = 1024, got %s", got)
	}
	if got := Zero().Pow(3); !got.IsZero() {
		t.Errorf("Expected 0^3 = 0, got %s", got)
	}
	if got := New(5).Pow(0); !got.Eq(One()) {
		t.Errorf("Expected 5^0 = 1, got %s", got)
	}
}

func TestFloor(t *testing.T) {
	if got := New(2.7).Floor(); !got.Eq(New(2)) {
		t.Errorf("Expected floor(2.7) = 2, got %s", got)
	}
	if got := New(0.4).Floor(); !got.IsZero() {
		t.Errorf("Expected floor(0.4) = 0, got %s", got)
	}
	// Huge values are already integral.
	huge := FromParts(1.5, 20)
	if got := huge.Floor(); !got.Eq(huge) {
		t.Errorf("Expected floor(1.5e20) = 1.5e20, got %s", got)
	}
}

func TestClampAndPercentOf(t *testing.T) {
	v := New(150)
	if got := v.Clamp(Zero(), New(100)); !got.Eq(New(100)) {
		t.Errorf("Expected clamp(150, 0, 100) = 100, got %s", got)
	}

	if got := New(50).PercentOf(New(200)); got != 0.25 {
		t.Errorf("Expected 50/200 = 0.25, got %f", got)
	}
	if got := New(500).PercentOf(New(200)); got != 1 {
		t.Errorf("Expected progress capped at 1, got %f", got)
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	cases := []Big{
		Zero(),
		One(),
		New(10),
		New(11.5),
		New(1.15),
		FromParts(1.5, 300),
		FromParts(9.999999, 42),
		New(0.001),
	}
	for _, c := range cases {
		parsed, err := Parse(c.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.String(), err)
		}
		if parsed.Mantissa() != c.Mantissa() || parsed.Exponent() != c.Exponent() {
			t.Errorf("Round trip of %q changed value: got %q", c.String(), parsed.String())
		}
	}
}

func TestParseHumanInputs(t *testing.T) {
	if got := MustParse("8e12"); !got.Eq(FromParts(8, 12)) {
		t.Errorf("Expected 8e12, got %s", got)
	}
	if got := MustParse("100"); !got.Eq(New(100)) {
		t.Errorf("Expected 100, got %s", got)
	}
	if _, err := Parse("-5"); err == nil {
		t.Errorf("Expected negative input to be rejected")
	}
	if _, err := Parse(""); err == nil {
		t.Errorf("Expected empty input to be rejected")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := FromParts(3.5, 120)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Big
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Eq(v) {
		t.Errorf("Expected %s after JSON round trip, got %s", v, back)
	}

	// Legacy save documents stored bare numbers.
	var legacy Big
	if err := json.Unmarshal([]byte("42.5"), &legacy); err != nil {
		t.Fatalf("Unmarshal of bare number failed: %v", err)
	}
	if !legacy.Eq(New(42.5)) {
		t.Errorf("Expected 42.5 from bare number, got %s", legacy)
	}
}
