// Package rules holds the pure balance math of the game: prestige point
// formulas, crit rolls and the offline time clamp. No state, no side
// effects, no infrastructure imports.
package rules

import (
	"fmt"
	"math"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// PrestigeFormula converts the prestige currency into points earned.
// Every formula returns zero below the minimum requirement and floors the
// result to an integer point count.
type PrestigeFormula interface {
	Points(amount, minRequirement bignum.Big) bignum.Big
	Description() string
}

// LinearFormula grants one point per multiple of the requirement.
type LinearFormula struct{}

func (LinearFormula) Points(amount, min bignum.Big) bignum.Big {
	if amount.LT(min) {
		return bignum.Zero()
	}
	return snapFloor(amount.Div(min))
}

func (LinearFormula) Description() string { return "floor(amount / requirement)" }

// SqrtFormula grants points on the square root of the ratio.
type SqrtFormula struct{}

func (SqrtFormula) Points(amount, min bignum.Big) bignum.Big {
	if amount.LT(min) {
		return bignum.Zero()
	}
	return snapFloor(amount.Div(min).Pow(0.5))
}

func (SqrtFormula) Description() string { return "floor(sqrt(amount / requirement))" }

// CubeRootFormula grants points on the cube root of the ratio. The gentlest
// curve of the family, used for late-game prestige currencies.
type CubeRootFormula struct{}

func (CubeRootFormula) Points(amount, min bignum.Big) bignum.Big {
	if amount.LT(min) {
		return bignum.Zero()
	}
	return snapFloor(amount.Div(min).Pow(1.0 / 3.0))
}

func (CubeRootFormula) Description() string { return "floor(cbrt(amount / requirement))" }

// LogFormula grants floor(log10(ratio)) + 1 points: one point at the
// requirement, one more per order of magnitude beyond it.
type LogFormula struct{}

func (LogFormula) Points(amount, min bignum.Big) bignum.Big {
	if amount.LT(min) {
		return bignum.Zero()
	}
	ratio := amount.Div(min)
	lg := math.Log10(ratio.Mantissa()) + float64(ratio.Exponent())
	return bignum.New(math.Floor(lg+1e-9) + 1)
}

func (LogFormula) Description() string { return "floor(log10(amount / requirement)) + 1" }

// NewPrestigeFormula builds a formula by its content-pack name.
func NewPrestigeFormula(kind string) (PrestigeFormula, error) {
	switch kind {
	case "", "linear":
		return LinearFormula{}, nil
	case "sqrt":
		return SqrtFormula{}, nil
	case "cbrt", "cube_root":
		return CubeRootFormula{}, nil
	case "log", "logarithmic":
		return LogFormula{}, nil
	default:
		return nil, fmt.Errorf("rules: unknown prestige formula %q", kind)
	}
}

// snapFloor floors b, but first snaps values sitting within 1e-9 below an
// integer back onto it. Root formulas computed through logarithms land at
// 1.9999999999999996 where the exact answer is 2; plain flooring would
// silently eat a point.
func snapFloor(b bignum.Big) bignum.Big {
	if b.IsZero() || b.Exponent() >= 15 {
		return b
	}
	v := b.Float64()
	n := math.Floor(v)
	if v-n > 1-1e-9 {
		n++
	}
	return bignum.New(n)
}
