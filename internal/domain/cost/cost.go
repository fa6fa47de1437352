// Package cost implements the pluggable cost curves for purchasable
// entities. Content packs pick a curve by name; invalid parameters are a
// content-author mistake and fail at construction, never at runtime.
// This package is PURE and must NOT import any infrastructure packages.
package cost

import (
	"fmt"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// Strategy computes the price of buying `levels` additional levels starting
// from `currentLevel`, per resource. levels == 0 always yields a zero cost.
type Strategy interface {
	Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big
	Description() string
}

// zeroCost returns an all-zero cost map over the same resources.
func zeroCost(baseCost map[string]bignum.Big) map[string]bignum.Big {
	out := make(map[string]bignum.Big, len(baseCost))
	for id := range baseCost {
		out[id] = bignum.Zero()
	}
	return out
}

// ---------------------------------------------------------
// Exponential: cost(L) = base * multiplier^L
// ---------------------------------------------------------

// Exponential is the classic idle curve. Bulk purchases use the closed-form
// geometric sum base * mult^L * (mult^n - 1) / (mult - 1).
type Exponential struct {
	Multiplier float64
}

// NewExponential validates and builds an exponential curve.
func NewExponential(multiplier float64) (*Exponential, error) {
	if multiplier < 0 {
		return nil, fmt.Errorf("cost: exponential multiplier must be >= 0, got %f", multiplier)
	}
	return &Exponential{Multiplier: multiplier}, nil
}

func (s *Exponential) Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big {
	out := zeroCost(baseCost)
	if levels <= 0 {
		return out
	}
	mult := bignum.New(s.Multiplier)
	for id, base := range baseCost {
		if s.Multiplier == 1 {
			// Degenerate case: flat price, avoid dividing by mult-1 = 0.
			out[id] = base.MulF(float64(levels))
			continue
		}
		start := base.Mul(mult.PowInt(int64(currentLevel)))
		numer := mult.PowInt(int64(levels)).Sub(bignum.One())
		denom := mult.Sub(bignum.One())
		if s.Multiplier < 1 {
			// Sub clamps at zero, so flip the ratio for shrinking curves.
			numer = bignum.One().Sub(mult.PowInt(int64(levels)))
			denom = bignum.One().Sub(mult)
		}
		out[id] = start.Mul(numer.Div(denom))
	}
	return out
}

func (s *Exponential) Description() string {
	return fmt.Sprintf("exponential x%.2f per level", s.Multiplier)
}

// ---------------------------------------------------------
// Linear: cost(L) = base * (1 + increment*L)
// ---------------------------------------------------------

// Linear grows by a fixed increment fraction per level. Bulk purchases use
// the arithmetic series closed form.
type Linear struct {
	Increment float64
}

// NewLinear validates and builds a linear curve.
func NewLinear(increment float64) (*Linear, error) {
	if increment < 0 {
		return nil, fmt.Errorf("cost: linear increment must be >= 0, got %f", increment)
	}
	return &Linear{Increment: increment}, nil
}

func (s *Linear) Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big {
	out := zeroCost(baseCost)
	if levels <= 0 {
		return out
	}
	// Sum over L in [current, current+n): n + inc * (n*L + n(n-1)/2)
	n := float64(levels)
	l := float64(currentLevel)
	factor := n + s.Increment*(n*l+n*(n-1)/2)
	for id, base := range baseCost {
		out[id] = base.MulF(factor)
	}
	return out
}

func (s *Linear) Description() string {
	return fmt.Sprintf("linear +%.0f%% of base per level", s.Increment*100)
}

// ---------------------------------------------------------
// Polynomial: cost(L) = base * (L+1)^exponent
// ---------------------------------------------------------

// Polynomial sums per level; bulk purchase counts are bounded by the
// max-affordable scan ceiling, so no closed form is needed.
type Polynomial struct {
	Exponent float64
}

// NewPolynomial validates and builds a polynomial curve.
func NewPolynomial(exponent float64) (*Polynomial, error) {
	if exponent < 0 {
		return nil, fmt.Errorf("cost: polynomial exponent must be >= 0, got %f", exponent)
	}
	return &Polynomial{Exponent: exponent}, nil
}

func (s *Polynomial) Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big {
	out := zeroCost(baseCost)
	if levels <= 0 {
		return out
	}
	for id, base := range baseCost {
		total := bignum.Zero()
		for i := 0; i < levels; i++ {
			total = total.Add(base.Mul(bignum.New(float64(currentLevel + i + 1)).Pow(s.Exponent)))
		}
		out[id] = total
	}
	return out
}

func (s *Polynomial) Description() string {
	return fmt.Sprintf("polynomial (L+1)^%.2f", s.Exponent)
}

// ---------------------------------------------------------
// Step: cost(L) = base * stepMultiplier^floor(L / stepSize)
// ---------------------------------------------------------

// Step holds the price flat within a band of levels, then jumps.
type Step struct {
	StepSize       int
	StepMultiplier float64
}

// NewStep validates and builds a step curve.
func NewStep(stepSize int, stepMultiplier float64) (*Step, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("cost: step size must be > 0, got %d", stepSize)
	}
	if stepMultiplier < 0 {
		return nil, fmt.Errorf("cost: step multiplier must be >= 0, got %f", stepMultiplier)
	}
	return &Step{StepSize: stepSize, StepMultiplier: stepMultiplier}, nil
}

func (s *Step) Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big {
	out := zeroCost(baseCost)
	if levels <= 0 {
		return out
	}
	mult := bignum.New(s.StepMultiplier)
	for id, base := range baseCost {
		total := bignum.Zero()
		for i := 0; i < levels; i++ {
			band := int64((currentLevel + i) / s.StepSize)
			total = total.Add(base.Mul(mult.PowInt(band)))
		}
		out[id] = total
	}
	return out
}

func (s *Step) Description() string {
	return fmt.Sprintf("step x%.2f every %d levels", s.StepMultiplier, s.StepSize)
}

// ---------------------------------------------------------
// Hybrid: early strategy below a threshold, late strategy at/above
// ---------------------------------------------------------

// Hybrid delegates to two curves around a level threshold. A bulk purchase
// spanning the threshold is split and summed; a single strategy is never
// applied across the boundary.
type Hybrid struct {
	Threshold int
	Early     Strategy
	Late      Strategy
}

// NewHybrid validates and builds a hybrid curve.
func NewHybrid(threshold int, early, late Strategy) (*Hybrid, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("cost: hybrid threshold must be >= 0, got %d", threshold)
	}
	if early == nil || late == nil {
		return nil, fmt.Errorf("cost: hybrid requires both early and late strategies")
	}
	return &Hybrid{Threshold: threshold, Early: early, Late: late}, nil
}

func (s *Hybrid) Calculate(baseCost map[string]bignum.Big, currentLevel, levels int) map[string]bignum.Big {
	if levels <= 0 {
		return zeroCost(baseCost)
	}
	if currentLevel >= s.Threshold {
		return s.Late.Calculate(baseCost, currentLevel, levels)
	}
	if currentLevel+levels <= s.Threshold {
		return s.Early.Calculate(baseCost, currentLevel, levels)
	}

	earlyLevels := s.Threshold - currentLevel
	earlyCost := s.Early.Calculate(baseCost, currentLevel, earlyLevels)
	lateCost := s.Late.Calculate(baseCost, s.Threshold, levels-earlyLevels)

	out := zeroCost(baseCost)
	for id := range baseCost {
		out[id] = earlyCost[id].Add(lateCost[id])
	}
	return out
}

func (s *Hybrid) Description() string {
	return fmt.Sprintf("hybrid: %s below level %d, then %s", s.Early.Description(), s.Threshold, s.Late.Description())
}
