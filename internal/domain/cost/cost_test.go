package cost

import (
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

func oreBase(v float64) map[string]bignum.Big {
	return map[string]bignum.Big{"ore": bignum.New(v)}
}

func TestExponentialConcreteScenario(t *testing.T) {
	// Setup: baseCost={ore:10}, multiplier=1.15, level 0.
	s, err := NewExponential(1.15)
	if err != nil {
		t.Fatalf("NewExponential failed: %v", err)
	}
	base := oreBase(10)

	// Act + Assert: one level from 0 costs exactly 10.
	c0 := s.Calculate(base, 0, 1)
	if !c0["ore"].ApproxEqual(bignum.New(10), 1e-9) {
		t.Errorf("Expected level 0->1 to cost 10 ore, got %s", c0["ore"])
	}

	// One more at level 1 costs 11.5.
	c1 := s.Calculate(base, 1, 1)
	if !c1["ore"].ApproxEqual(bignum.New(11.5), 1e-9) {
		t.Errorf("Expected level 1->2 to cost 11.5 ore, got %s", c1["ore"])
	}

	// Two levels from 0 cost 21.5 via the closed form.
	c2 := s.Calculate(base, 0, 2)
	if !c2["ore"].ApproxEqual(bignum.New(21.5), 1e-9) {
		t.Errorf("Expected bulk 0->2 to cost 21.5 ore, got %s", c2["ore"])
	}
}

func TestExponentialDegenerateMultiplierOne(t *testing.T) {
	s, _ := NewExponential(1)
	c := s.Calculate(oreBase(10), 7, 5)
	if !c["ore"].Eq(bignum.New(50)) {
		t.Errorf("Expected flat 10*5 = 50 at multiplier 1, got %s", c["ore"])
	}
}

func TestBulkEqualsSum(t *testing.T) {
	exp, _ := NewExponential(1.15)
	lin, _ := NewLinear(0.5)
	poly, _ := NewPolynomial(2)
	step, _ := NewStep(3, 2)
	hybrid, _ := NewHybrid(5, exp, step)

	strategies := map[string]Strategy{
		"exponential": exp,
		"linear":      lin,
		"polynomial":  poly,
		"step":        step,
		"hybrid":      hybrid,
	}

	base := oreBase(10)
	for name, s := range strategies {
		// Bulk of 8 from level 2 spans the hybrid threshold at 5.
		bulk := s.Calculate(base, 2, 8)["ore"]

		sum := bignum.Zero()
		for i := 0; i < 8; i++ {
			sum = sum.Add(s.Calculate(base, 2+i, 1)["ore"])
		}

		if !bulk.ApproxEqual(sum, 1e-9) {
			t.Errorf("%s: bulk %s != summed singles %s", name, bulk, sum)
		}
	}
}

func TestMonotonicMarginalCost(t *testing.T) {
	exp, _ := NewExponential(1.15)
	lin, _ := NewLinear(0.25)
	poly, _ := NewPolynomial(1.5)
	step, _ := NewStep(4, 3)

	base := oreBase(5)
	for name, s := range map[string]Strategy{"exponential": exp, "linear": lin, "polynomial": poly, "step": step} {
		prev := s.Calculate(base, 0, 1)["ore"]
		for l := 1; l < 30; l++ {
			cur := s.Calculate(base, l, 1)["ore"]
			if cur.LT(prev) {
				t.Errorf("%s: cost decreased from %s to %s at level %d", name, prev, cur, l)
			}
			prev = cur
		}
	}
}

func TestZeroLevelsIsFree(t *testing.T) {
	s, _ := NewExponential(1.15)
	c := s.Calculate(oreBase(10), 4, 0)
	if !c["ore"].IsZero() {
		t.Errorf("Expected zero cost for zero levels, got %s", c["ore"])
	}
}

func TestHybridNeverCrossesBoundaryWithOneStrategy(t *testing.T) {
	// Early curve is flat 10, late curve doubles every level. If a single
	// strategy were applied across the boundary the totals would differ.
	early, _ := NewExponential(1)
	late, _ := NewExponential(2)
	h, _ := NewHybrid(3, early, late)

	base := oreBase(10)
	// Levels 1,2 early (10+10), levels 3,4 late (10*2^3 + 10*2^4 = 240).
	got := h.Calculate(base, 1, 4)["ore"]
	want := bignum.New(260)
	if !got.ApproxEqual(want, 1e-9) {
		t.Errorf("Expected split cost 260, got %s", got)
	}
}

func TestConstructionRejectsNegativeParams(t *testing.T) {
	if _, err := NewExponential(-1); err == nil {
		t.Errorf("Expected error for negative exponential multiplier")
	}
	if _, err := NewLinear(-0.1); err == nil {
		t.Errorf("Expected error for negative linear increment")
	}
	if _, err := NewPolynomial(-2); err == nil {
		t.Errorf("Expected error for negative polynomial exponent")
	}
	if _, err := NewStep(0, 2); err == nil {
		t.Errorf("Expected error for zero step size")
	}
	if _, err := NewStep(5, -1); err == nil {
		t.Errorf("Expected error for negative step multiplier")
	}
	if _, err := NewHybrid(-1, nil, nil); err == nil {
		t.Errorf("Expected error for invalid hybrid")
	}
}

func TestFactoryFromSpec(t *testing.T) {
	s, err := New(&Spec{Kind: "hybrid", Threshold: 10,
		Early: &Spec{Kind: "linear", Increment: 0.2},
		Late:  &Spec{Kind: "exponential", Multiplier: 1.5},
	})
	if err != nil {
		t.Fatalf("Factory failed on valid hybrid spec: %v", err)
	}
	if _, ok := s.(*Hybrid); !ok {
		t.Errorf("Expected *Hybrid, got %T", s)
	}

	if _, err := New(&Spec{Kind: "fibonacci"}); err == nil {
		t.Errorf("Expected error for unknown strategy kind")
	}

	// Nil spec falls back to the default exponential curve.
	def, err := New(nil)
	if err != nil {
		t.Fatalf("Factory failed on nil spec: %v", err)
	}
	if e, ok := def.(*Exponential); !ok || e.Multiplier != DefaultMultiplier {
		t.Errorf("Expected default exponential x1.15, got %#v", def)
	}
}
