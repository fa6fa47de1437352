package entity

import (
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/rules"
)

func TestCanPrestigeRequiresCurrencyAndPoints(t *testing.T) {
	// Setup
	gems := NewResource("gems", "Gemas")
	ctx := newTestContext()
	ctx.Resources["gems"] = gems

	p := NewPrestige("gems", bignum.New(1000), 0.02, rules.LinearFormula{})
	ctx.Prestige = p

	// Below the requirement: zero points is an expected outcome, not an error.
	gems.Add(bignum.New(999))
	if p.CanPrestige(ctx) {
		t.Errorf("Expected CanPrestige false below the requirement")
	}
	if !p.PointsFor(gems.Amount).IsZero() {
		t.Errorf("Expected zero points below the requirement")
	}

	// At the requirement.
	gems.Add(bignum.One())
	if !p.CanPrestige(ctx) {
		t.Errorf("Expected CanPrestige true at the requirement")
	}
	if !p.PointsFor(gems.Amount).Eq(bignum.One()) {
		t.Errorf("Expected 1 point at the requirement, got %s", p.PointsFor(gems.Amount))
	}
}

func TestPrestigeMultiplierContract(t *testing.T) {
	p := NewPrestige("gems", bignum.New(1000), 0.02, rules.LinearFormula{})
	p.ResetBoost()

	if got := p.Multiplier(); got != 1 {
		t.Errorf("Expected multiplier 1 at zero points, got %f", got)
	}

	p.Points = bignum.New(50)
	// 1 + 0.02 * 50 = 2
	if got := p.Multiplier(); got != 2 {
		t.Errorf("Expected multiplier 2 at 50 points, got %f", got)
	}
}

func TestCanPrestigeMissingCurrency(t *testing.T) {
	ctx := newTestContext()
	p := NewPrestige("gems", bignum.New(1000), 0.02, rules.LinearFormula{})

	if p.CanPrestige(ctx) {
		t.Errorf("Expected CanPrestige false when the currency resource is absent")
	}
}
