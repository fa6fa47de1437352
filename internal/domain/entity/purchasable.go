package entity

import (
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/cost"
)

// UnboundedMaxLevel marks a purchasable with no level ceiling.
const UnboundedMaxLevel = 0

// Purchasable is a leveled entity bought with resources via a cost curve.
// Level only ever increases, except on prestige reset.
type Purchasable struct {
	Entity
	Level    int                   `json:"level"`
	BaseCost map[string]bignum.Big `json:"base_cost"`
	MaxLevel int                   `json:"max_level"` // UnboundedMaxLevel = no ceiling

	Strategy cost.Strategy `json:"-"`
}

// AtMaxLevel reports whether no further levels can be bought.
func (p *Purchasable) AtMaxLevel() bool {
	return p.MaxLevel != UnboundedMaxLevel && p.Level >= p.MaxLevel
}

// RemainingLevels returns how many levels are still buyable, or -1 when
// unbounded.
func (p *Purchasable) RemainingLevels() int {
	if p.MaxLevel == UnboundedMaxLevel {
		return -1
	}
	if p.Level >= p.MaxLevel {
		return 0
	}
	return p.MaxLevel - p.Level
}

// CostFor prices buying `levels` more levels from the current one.
func (p *Purchasable) CostFor(levels int) map[string]bignum.Big {
	return p.Strategy.Calculate(p.BaseCost, p.Level, levels)
}

// MaxAffordable returns the largest n such that CostFor(n) fits the given
// stocks, bounded by remaining levels and by the iteration ceiling. Marginal
// cost is non-decreasing for every strategy, so the scan stops at the first
// unaffordable n. Hitting the ceiling returns the count found so far; a
// cheap late-game purchase must never turn into an error.
func (p *Purchasable) MaxAffordable(stocks map[string]*Resource, ceiling int) int {
	remaining := p.RemainingLevels()
	if remaining == 0 {
		return 0
	}
	for n := 1; n <= ceiling; n++ {
		if remaining > 0 && n > remaining {
			return remaining
		}
		c := p.CostFor(n)
		for id, amount := range c {
			res, ok := stocks[id]
			if !ok || !res.CanAfford(amount) {
				return n - 1
			}
		}
	}
	return ceiling
}
