package entity

import "github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"

// Predicate is the declarative unlock check every gated entity carries.
type Predicate func(ctx *Context) bool

// Stats are the per-run counters. Lifetime production doubles as the
// accumulator behind cumulative achievements, so it travels with saves.
type Stats struct {
	TotalPlayTime  float64               `json:"total_play_time"` // seconds
	TotalClicks    int64                 `json:"total_clicks"`
	TotalPrestiges int64                 `json:"total_prestiges"`
	Lifetime       map[string]bignum.Big `json:"lifetime"` // per-resource cumulative production
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{Lifetime: make(map[string]bignum.Big)}
}

// RecordProduction credits produced (post-clamp) amounts.
func (s *Stats) RecordProduction(resourceID string, amount bignum.Big) {
	s.Lifetime[resourceID] = s.Lifetime[resourceID].Add(amount)
}

// LifetimeProduced returns the cumulative production of a resource.
func (s *Stats) LifetimeProduced(resourceID string) bignum.Big {
	return s.Lifetime[resourceID]
}

// Context is the read view over all live collections, handed to every
// predicate, formula and effect. It holds references, not copies: entity
// mutations are visible immediately, and only membership changes require a
// rebuild (the engine tracks that with a generation counter).
type Context struct {
	Resources     map[string]*Resource
	ResourceOrder []string

	Producers     map[string]*Producer
	ProducerOrder []string

	Upgrades     map[string]*Upgrade
	UpgradeOrder []string

	Achievements     map[string]*Achievement
	AchievementOrder []string

	Click    *ClickPower
	Prestige *Prestige
	Stats    *Stats
}

// unlockByID forces an entity visible+unlocked, for unlock rewards.
func (c *Context) unlockByID(id string) {
	if p, ok := c.Producers[id]; ok {
		p.Unlock()
		return
	}
	if u, ok := c.Upgrades[id]; ok {
		u.Unlock()
		return
	}
	if r, ok := c.Resources[id]; ok {
		r.Unlock()
		return
	}
	if a, ok := c.Achievements[id]; ok {
		a.Unlock()
	}
}
