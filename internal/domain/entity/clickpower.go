package entity

import "github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"

// ClickPower is the value of the manual pickaxe swing. Like producer
// multipliers, every derived stat here is reset and rebuilt each tick.
type ClickPower struct {
	Purchasable
	BaseClickValue bignum.Big `json:"base_click_value"`
	Multiplier     bignum.Big `json:"multiplier"`

	BaseCritChance     float64 `json:"crit_chance"`     // in [0, 1]
	BaseCritMultiplier float64 `json:"crit_multiplier"` // >= 1

	critChanceFactor float64
	critChanceBonus  float64
	critMultFactor   float64
	critMultBonus    float64
}

// NewClickPower builds the click power at level 1; the manual swing always
// produces something even before any upgrade.
func NewClickPower(id, name string, baseValue bignum.Big) *ClickPower {
	c := &ClickPower{
		Purchasable:        Purchasable{Entity: Entity{ID: id, Name: name}, Level: 1},
		BaseClickValue:     baseValue,
		Multiplier:         bignum.One(),
		BaseCritChance:     0,
		BaseCritMultiplier: 1,
		critChanceFactor:   1,
		critMultFactor:     1,
	}
	c.Unlock()
	return c
}

// ResetMultiplier begins a fresh multiplier pass, clearing the click
// multiplier and all crit boosts.
func (c *ClickPower) ResetMultiplier() {
	c.Multiplier = bignum.One()
	c.critChanceFactor = 1
	c.critChanceBonus = 0
	c.critMultFactor = 1
	c.critMultBonus = 0
}

// ApplyBoost multiplies the click multiplier in place.
func (c *ClickPower) ApplyBoost(factor float64) {
	c.Multiplier = c.Multiplier.MulF(factor)
}

// AddBonus adds an additive term to the click multiplier.
func (c *ClickPower) AddBonus(v float64) {
	c.Multiplier = c.Multiplier.Add(bignum.New(v))
}

// ApplyCritChance folds an upgrade effect into the effective crit chance.
func (c *ClickPower) ApplyCritChance(et EffectType, v float64) {
	if et == EffectMultiplier {
		c.critChanceFactor *= v
	} else {
		c.critChanceBonus += v
	}
}

// ApplyCritMultiplier folds an upgrade effect into the crit multiplier.
func (c *ClickPower) ApplyCritMultiplier(et EffectType, v float64) {
	if et == EffectMultiplier {
		c.critMultFactor *= v
	} else {
		c.critMultBonus += v
	}
}

// CritChance returns the effective crit probability, clamped to [0, 1].
func (c *ClickPower) CritChance() float64 {
	chance := c.BaseCritChance*c.critChanceFactor + c.critChanceBonus
	if chance < 0 {
		return 0
	}
	if chance > 1 {
		return 1
	}
	return chance
}

// CritMultiplier returns the effective crit payout factor, at least 1.
func (c *ClickPower) CritMultiplier() float64 {
	m := c.BaseCritMultiplier*c.critMultFactor + c.critMultBonus
	if m < 1 {
		return 1
	}
	return m
}

// Value returns the non-crit click amount: base * level * multiplier.
func (c *ClickPower) Value() bignum.Big {
	return c.BaseClickValue.MulF(float64(c.Level)).Mul(c.Multiplier)
}

// Click resolves one manual swing. The roll is a uniform draw in [0, 1)
// from the engine's injectable RNG, the only nondeterminism in the game.
func (c *ClickPower) Click(roll float64) (amount bignum.Big, wasCrit bool) {
	amount = c.Value()
	if roll < c.CritChance() {
		return amount.MulF(c.CritMultiplier()), true
	}
	return amount, false
}
