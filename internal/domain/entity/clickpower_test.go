package entity

import (
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

func TestClickValueScalesWithLevelAndMultiplier(t *testing.T) {
	// Setup
	c := NewClickPower("pickaxe", "Pico", bignum.New(2))
	c.Level = 3
	c.ResetMultiplier()
	c.ApplyBoost(5)

	// Act
	amount, wasCrit := c.Click(0.99)

	// Assert: 2 * 3 * 5 = 30, no crit at 0% chance.
	if !amount.Eq(bignum.New(30)) {
		t.Errorf("Expected click value 30, got %s", amount)
	}
	if wasCrit {
		t.Errorf("Expected no crit with zero crit chance")
	}
}

func TestClickCritRollIsDeterministicGivenTheRoll(t *testing.T) {
	c := NewClickPower("pickaxe", "Pico", bignum.New(10))
	c.BaseCritChance = 0.2
	c.BaseCritMultiplier = 3
	c.ResetMultiplier()

	// Roll below the chance crits and scales the payout.
	amount, wasCrit := c.Click(0.1)
	if !wasCrit {
		t.Errorf("Expected crit at roll 0.1 vs chance 0.2")
	}
	if !amount.Eq(bignum.New(30)) {
		t.Errorf("Expected crit payout 30, got %s", amount)
	}

	// Roll at the boundary does not crit.
	amount, wasCrit = c.Click(0.2)
	if wasCrit {
		t.Errorf("Expected no crit at roll 0.2 vs chance 0.2")
	}
	if !amount.Eq(bignum.New(10)) {
		t.Errorf("Expected base payout 10, got %s", amount)
	}
}

func TestCritChanceClampedToOne(t *testing.T) {
	c := NewClickPower("pickaxe", "Pico", bignum.One())
	c.BaseCritChance = 0.9
	c.ResetMultiplier()
	c.ApplyCritChance(EffectAdditive, 0.5)

	if got := c.CritChance(); got != 1 {
		t.Errorf("Expected crit chance clamped to 1, got %f", got)
	}
}

func TestClickResetClearsCritBoosts(t *testing.T) {
	c := NewClickPower("pickaxe", "Pico", bignum.One())
	c.BaseCritChance = 0.05
	c.ResetMultiplier()
	c.ApplyCritChance(EffectAdditive, 0.1)
	c.ApplyCritMultiplier(EffectMultiplier, 2)

	c.ResetMultiplier()

	if got := c.CritChance(); got != 0.05 {
		t.Errorf("Expected boosts cleared, crit chance back to 0.05, got %f", got)
	}
	if got := c.CritMultiplier(); got != 1 {
		t.Errorf("Expected crit multiplier back to base, got %f", got)
	}
}
