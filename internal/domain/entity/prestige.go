package entity

import (
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/rules"
)

// Prestige converts accumulated currency into permanent points. One of
// these exists per run; it is not an Entity and survives every reset.
type Prestige struct {
	MinRequirement bignum.Big            `json:"min_requirement"`
	CurrencyID     string                `json:"currency_id"`
	BonusPerPoint  float64               `json:"bonus_per_point"`
	Points         bignum.Big            `json:"points"`
	TotalResets    int                   `json:"total_resets"`
	KeepProducers  map[string]bool       `json:"keep_producers,omitempty"`
	KeepUpgrades   map[string]bool       `json:"keep_upgrades,omitempty"`
	Formula        rules.PrestigeFormula `json:"-"`

	// Per-tick upgrade boosts on the prestige bonus itself.
	boostFactor float64
	boostBonus  float64
}

// NewPrestige builds a prestige tracker with the given formula.
func NewPrestige(currencyID string, minReq bignum.Big, bonusPerPoint float64, formula rules.PrestigeFormula) *Prestige {
	return &Prestige{
		MinRequirement: minReq,
		CurrencyID:     currencyID,
		BonusPerPoint:  bonusPerPoint,
		Points:         bignum.Zero(),
		KeepProducers:  make(map[string]bool),
		KeepUpgrades:   make(map[string]bool),
		Formula:        formula,
		boostFactor:    1,
	}
}

// ResetBoost begins a fresh multiplier pass.
func (p *Prestige) ResetBoost() {
	p.boostFactor = 1
	p.boostBonus = 0
}

// ApplyBoost folds a prestige-targeted upgrade effect into this tick.
func (p *Prestige) ApplyBoost(et EffectType, v float64) {
	if et == EffectMultiplier {
		p.boostFactor *= v
	} else {
		p.boostBonus += v
	}
}

// PointsFor computes the points a prestige at the given currency amount
// would earn. Zero below the requirement is an expected outcome, not an
// error.
func (p *Prestige) PointsFor(amount bignum.Big) bignum.Big {
	return p.Formula.Points(amount, p.MinRequirement)
}

// CanPrestige reports whether a reset would earn at least one point.
func (p *Prestige) CanPrestige(ctx *Context) bool {
	r, ok := ctx.Resources[p.CurrencyID]
	if !ok {
		return false
	}
	if r.Amount.LT(p.MinRequirement) {
		return false
	}
	return !p.PointsFor(r.Amount).IsZero()
}

// Multiplier returns the permanent production bonus applied every tick:
// 1 + bonusPerPoint * points, scaled by this tick's prestige boosts.
func (p *Prestige) Multiplier() float64 {
	return 1 + p.BonusPerPoint*p.boostFactor*p.Points.Float64() + p.boostBonus
}
