package engine

import (
	"strconv"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
)

// ClickResult is what a single manual swing earned.
type ClickResult struct {
	Amount  bignum.Big `json:"amount"`
	WasCrit bool       `json:"was_crit"`
}

// HandleClick processes one manual click against the primary resource.
// The crit roll comes from the injected RNG; at the multipliers of the
// most recent tick.
func (e *Engine) HandleClick() ClickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.click == nil || e.primaryResourceID == "" {
		return ClickResult{Amount: bignum.Zero()}
	}
	r, ok := e.resources[e.primaryResourceID]
	if !ok {
		return ClickResult{Amount: bignum.Zero()}
	}

	amount, crit := e.click.Click(e.rng())
	added := r.Add(amount)
	e.stats.TotalClicks++
	if !added.IsZero() {
		e.stats.RecordProduction(e.primaryResourceID, added)
	}

	// One event per click would drown the ledger; sample in batches.
	if e.stats.TotalClicks%100 == 0 {
		e.emit(events.EventTypeClickBatch, "PLAYER", e.primaryResourceID, map[string]interface{}{
			"total_clicks": e.stats.TotalClicks,
		})
	}
	metrics.Get().RecordClicks(1)

	return ClickResult{Amount: added, WasCrit: crit}
}

// PurchaseProducer buys up to `amount` levels of a producer, spending every
// cost resource atomically. Requests past the level ceiling are clamped to
// it; an unaffordable total leaves all balances untouched and returns false.
func (e *Engine) PurchaseProducer(id string, amount int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.producers[id]
	if !ok || !p.Unlocked || amount <= 0 {
		return false
	}
	if p.AtMaxLevel() {
		return false
	}
	if remaining := p.RemainingLevels(); remaining >= 0 && amount > remaining {
		amount = remaining
	}

	if !e.spend(p.CostFor(amount)) {
		return false
	}
	p.Level += amount

	e.emit(events.EventTypePurchase, "PLAYER", id, events.PurchasePayload{
		EntityID: id,
		Levels:   amount,
		NewLevel: p.Level,
	})
	e.logger.Event(string(events.EventTypePurchase), "PLAYER", "producer "+id+" now at level "+strconv.Itoa(p.Level))
	metrics.Get().RecordPurchase(false)
	return true
}

// MaxAffordableProducer reports how many levels of a producer the player
// could buy right now, bounded by the configured scan ceiling.
func (e *Engine) MaxAffordableProducer(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.producers[id]
	if !ok || !p.Unlocked {
		return 0
	}
	return p.MaxAffordable(e.resources, e.cfg.MaxAffordableIterations)
}

// PurchaseUpgrade buys one level of an upgrade. Its effect lands on the
// next tick's multiplier pass, not immediately.
func (e *Engine) PurchaseUpgrade(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.upgrades[id]
	if !ok || !u.Unlocked || u.AtMaxLevel() {
		return false
	}

	if !e.spend(u.CostFor(1)) {
		return false
	}
	u.Purchase()

	e.emit(events.EventTypeUpgradePurchase, "PLAYER", id, events.PurchasePayload{
		EntityID: id,
		Levels:   1,
		NewLevel: u.Level,
	})
	e.logger.Event(string(events.EventTypeUpgradePurchase), "PLAYER", "upgrade "+id+" now at level "+strconv.Itoa(u.Level))
	metrics.Get().RecordPurchase(true)
	return true
}

// PurchaseClickPower buys one level of the manual swing. A click power
// without a cost curve cannot be leveled.
func (e *Engine) PurchaseClickPower() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.click
	if c == nil || c.Strategy == nil || len(c.BaseCost) == 0 || c.AtMaxLevel() {
		return false
	}

	if !e.spend(c.CostFor(1)) {
		return false
	}
	c.Level++

	e.emit(events.EventTypeUpgradePurchase, "PLAYER", c.ID, events.PurchasePayload{
		EntityID: c.ID,
		Levels:   1,
		NewLevel: c.Level,
	})
	e.logger.Event(string(events.EventTypeUpgradePurchase), "PLAYER", "click power now at level "+strconv.Itoa(c.Level))
	metrics.Get().RecordPurchase(true)
	return true
}

// PerformPrestige converts the prestige currency into points and resets the
// run. Producers and upgrades outside the keep sets drop to level zero;
// achievements, stats and the click power level survive.
func (e *Engine) PerformPrestige() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.prestige == nil {
		return false
	}
	ctx := e.gameContext()
	if !e.prestige.CanPrestige(ctx) {
		return false
	}

	currency := e.resources[e.prestige.CurrencyID]
	points := e.prestige.PointsFor(currency.Amount)
	if points.IsZero() {
		return false
	}

	e.prestige.Points = e.prestige.Points.Add(points)
	e.prestige.TotalResets++
	e.stats.TotalPrestiges++

	for _, id := range e.resourceOrder {
		e.resources[id].ResetForPrestige()
	}
	for _, id := range e.producerOrder {
		p := e.producers[id]
		if !e.prestige.KeepProducers[id] {
			p.Level = 0
		}
		// Multipliers reset even on kept producers; they rebuild next tick.
		p.SetMultiplier(bignum.One())
	}
	for _, id := range e.upgradeOrder {
		if e.prestige.KeepUpgrades[id] {
			continue
		}
		e.upgrades[id].ResetForPrestige()
	}
	if e.click != nil {
		// The swing keeps its level; its boosts rebuild next tick.
		e.click.ResetMultiplier()
	}

	// Membership is unchanged but downstream caches key off the
	// generation, so bump it anyway.
	e.ctxGen++

	e.emit(events.EventTypePrestige, "PLAYER", "", events.PrestigePayload{
		PointsGained: points.String(),
		TotalPoints:  e.prestige.Points.String(),
		TotalResets:  e.prestige.TotalResets,
	})
	e.logger.Event(string(events.EventTypePrestige), "PLAYER",
		"prestige #"+strconv.Itoa(e.prestige.TotalResets)+" earned "+points.String()+" points")
	metrics.Get().RecordPrestige()
	return true
}

// spend deducts a multi-resource cost atomically. Either every resource is
// debited or none are. Caller must hold the lock.
func (e *Engine) spend(costs map[string]bignum.Big) bool {
	for resID, c := range costs {
		r, ok := e.resources[resID]
		if !ok || !r.CanAfford(c) {
			return false
		}
	}
	for resID, c := range costs {
		e.resources[resID].Subtract(c)
	}
	return true
}
