// Package engine - view.go
// Read-only projection of the live game state for the network layer.
package engine

import (
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// ResourceView is the UI-facing shape of a resource.
type ResourceView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Max      string `json:"max,omitempty"`
	RatePerS string `json:"rate_per_s"`
	Unlocked bool   `json:"unlocked"`
	Visible  bool   `json:"visible"`
}

// ProducerView is the UI-facing shape of a producer, next cost included.
type ProducerView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Level         int               `json:"level"`
	MaxLevel      int               `json:"max_level,omitempty"`
	NextCost      map[string]string `json:"next_cost,omitempty"`
	MaxAffordable int               `json:"max_affordable"`
	Unlocked      bool              `json:"unlocked"`
	Visible       bool              `json:"visible"`
}

// UpgradeView is the UI-facing shape of an upgrade.
type UpgradeView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Level     int               `json:"level"`
	MaxLevel  int               `json:"max_level,omitempty"`
	Purchased bool              `json:"purchased"`
	NextCost  map[string]string `json:"next_cost,omitempty"`
	Unlocked  bool              `json:"unlocked"`
	Visible   bool              `json:"visible"`
}

// AchievementView is the UI-facing shape of an achievement.
type AchievementView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Completed bool    `json:"completed"`
	Progress  float64 `json:"progress"`
}

// ClickView describes the manual swing.
type ClickView struct {
	Level          int               `json:"level"`
	Value          string            `json:"value"`
	CritChance     float64           `json:"crit_chance"`
	CritMultiplier float64           `json:"crit_multiplier"`
	NextCost       map[string]string `json:"next_cost,omitempty"`
}

// PrestigeView describes the reset layer.
type PrestigeView struct {
	CurrencyID      string `json:"currency_id"`
	Points          string `json:"points"`
	TotalResets     int    `json:"total_resets"`
	PointsAvailable string `json:"points_available"`
	CanPrestige     bool   `json:"can_prestige"`
	Multiplier      float64 `json:"multiplier"`
}

// StatsView carries the lifetime counters.
type StatsView struct {
	TotalPlayTime  float64           `json:"total_play_time"`
	TotalClicks    int64             `json:"total_clicks"`
	TotalPrestiges int64             `json:"total_prestiges"`
	Lifetime       map[string]string `json:"lifetime"`
}

// StateView is the complete snapshot the clients render from.
type StateView struct {
	GameID       string            `json:"game_id"`
	TickNumber   int64             `json:"tick_number"`
	Resources    []ResourceView    `json:"resources"`
	Producers    []ProducerView    `json:"producers"`
	Upgrades     []UpgradeView     `json:"upgrades"`
	Achievements []AchievementView `json:"achievements"`
	Click        *ClickView        `json:"click,omitempty"`
	Prestige     *PrestigeView     `json:"prestige,omitempty"`
	Stats        StatsView         `json:"stats"`
}

// StateView builds a consistent snapshot under the engine lock. Entities
// appear in registration order so two calls with no tick in between render
// identically.
func (e *Engine) StateView() StateView {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := e.gameContext()
	rates := e.totalRate(ctx)

	view := StateView{
		GameID:     GameID,
		TickNumber: e.tickNumber,
		Stats: StatsView{
			TotalPlayTime:  e.stats.TotalPlayTime,
			TotalClicks:    e.stats.TotalClicks,
			TotalPrestiges: e.stats.TotalPrestiges,
			Lifetime:       make(map[string]string, len(e.stats.Lifetime)),
		},
	}
	for id, amt := range e.stats.Lifetime {
		view.Stats.Lifetime[id] = amt.String()
	}

	for _, id := range e.resourceOrder {
		r := e.resources[id]
		rv := ResourceView{
			ID:       r.ID,
			Name:     r.Name,
			Amount:   r.Amount.String(),
			RatePerS: rateString(rates, r.ID),
			Unlocked: r.Unlocked,
			Visible:  r.Visible,
		}
		if r.Capped {
			rv.Max = r.MaxAmount.String()
		}
		view.Resources = append(view.Resources, rv)
	}

	for _, id := range e.producerOrder {
		p := e.producers[id]
		pv := ProducerView{
			ID:       p.ID,
			Name:     p.Name,
			Level:    p.Level,
			MaxLevel: p.MaxLevel,
			Unlocked: p.Unlocked,
			Visible:  p.Visible,
		}
		if p.Unlocked && !p.AtMaxLevel() {
			pv.NextCost = costStrings(p.CostFor(1))
			pv.MaxAffordable = p.MaxAffordable(e.resources, e.cfg.MaxAffordableIterations)
		}
		view.Producers = append(view.Producers, pv)
	}

	for _, id := range e.upgradeOrder {
		u := e.upgrades[id]
		uv := UpgradeView{
			ID:        u.ID,
			Name:      u.Name,
			Level:     u.Level,
			MaxLevel:  u.MaxLevel,
			Purchased: u.Purchased,
			Unlocked:  u.Unlocked,
			Visible:   u.Visible,
		}
		if u.Unlocked && !u.AtMaxLevel() {
			uv.NextCost = costStrings(u.CostFor(1))
		}
		view.Upgrades = append(view.Upgrades, uv)
	}

	for _, id := range e.achievementOrder {
		a := e.achievements[id]
		view.Achievements = append(view.Achievements, AchievementView{
			ID:        a.ID,
			Name:      a.Name,
			Completed: a.Completed,
			Progress:  a.Progress,
		})
	}

	if e.click != nil {
		cv := &ClickView{
			Level:          e.click.Level,
			Value:          e.click.Value().String(),
			CritChance:     e.click.CritChance(),
			CritMultiplier: e.click.CritMultiplier(),
		}
		if !e.click.AtMaxLevel() && e.click.Strategy != nil {
			cv.NextCost = costStrings(e.click.CostFor(1))
		}
		view.Click = cv
	}

	if e.prestige != nil {
		pv := &PrestigeView{
			CurrencyID:  e.prestige.CurrencyID,
			Points:      e.prestige.Points.String(),
			TotalResets: e.prestige.TotalResets,
			CanPrestige: e.prestige.CanPrestige(ctx),
			Multiplier:  e.prestige.Multiplier(),
		}
		if cur, ok := e.resources[e.prestige.CurrencyID]; ok {
			pv.PointsAvailable = e.prestige.PointsFor(cur.Amount).String()
		}
		view.Prestige = pv
	}

	return view
}

func rateString(rates map[string]bignum.Big, id string) string {
	if r, ok := rates[id]; ok {
		return r.String()
	}
	return "0"
}

func costStrings(costs map[string]bignum.Big) map[string]string {
	out := make(map[string]string, len(costs))
	for id, c := range costs {
		out[id] = c.String()
	}
	return out
}
