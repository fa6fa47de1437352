// Package engine contains the simulation loop of "Mina Profunda".
//
// ARCHITECTURAL RULE: all mutation happens under the engine's lock, on the
// tick goroutine or inside a boundary call (click, purchase, prestige,
// save, load). Domain entities never lock; the engine is the single writer.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/optimization"
)

// AchievementHook is notified after an achievement completes. The call is
// fire-and-forget: a panicking or slow observer must not stall the tick.
type AchievementHook func(a *entity.Achievement)

// Engine is the central orchestrator. It owns every live collection and
// advances the world one tick at a time.
type Engine struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      *optimization.Config
	ticker   *Ticker

	// Live collections. The Order slices preserve registration order;
	// every deterministic pass iterates those, never the maps.
	resources        map[string]*entity.Resource
	resourceOrder    []string
	producers        map[string]*entity.Producer
	producerOrder    []string
	upgrades         map[string]*entity.Upgrade
	upgradeOrder     []string
	achievements     map[string]*entity.Achievement
	achievementOrder []string

	click    *entity.ClickPower
	prestige *entity.Prestige
	stats    *entity.Stats

	primaryResourceID string

	// rng drives crit rolls. Swappable so tests and the sim runner can
	// replay a run deterministically.
	rng func() float64

	onAchievement AchievementHook

	// ctx is rebuilt lazily whenever membership changes.
	ctx      *entity.Context
	ctxGen   uint64
	builtGen uint64

	tickNumber int64

	mu sync.Mutex
}

// NewEngine initializes the simulation with its dependencies. A nil config
// falls back to the production defaults.
func NewEngine(eventLog *events.EventLog, log *logger.Logger, cfg *optimization.Config) *Engine {
	if cfg == nil {
		cfg = optimization.DefaultConfig()
	}

	src := rand.New(rand.NewSource(time.Now().UnixNano()))

	e := &Engine{
		eventLog: eventLog,
		logger:   log,
		cfg:      cfg,

		resources:    make(map[string]*entity.Resource),
		producers:    make(map[string]*entity.Producer),
		upgrades:     make(map[string]*entity.Upgrade),
		achievements: make(map[string]*entity.Achievement),

		stats: entity.NewStats(),

		rng: src.Float64,
	}
	e.ticker = NewTicker(e, log)
	e.ctxGen = 1 // force the first build

	return e
}

// SetRNG replaces the crit roll source. Tests inject a fixed sequence here.
func (e *Engine) SetRNG(rng func() float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = rng
}

// SetAchievementHook registers the completion observer.
func (e *Engine) SetAchievementHook(hook AchievementHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAchievement = hook
}

// SetPrimaryResource nominates the resource manual clicks are credited to.
func (e *Engine) SetPrimaryResource(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primaryResourceID = id
}

// AddResource registers a resource. Re-registering an ID replaces it.
func (e *Engine) AddResource(r *entity.Resource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.resources[r.ID]; !exists {
		e.resourceOrder = append(e.resourceOrder, r.ID)
	}
	e.resources[r.ID] = r
	e.ctxGen++
}

// AddProducer registers a producer.
func (e *Engine) AddProducer(p *entity.Producer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.producers[p.ID]; !exists {
		e.producerOrder = append(e.producerOrder, p.ID)
	}
	e.producers[p.ID] = p
	e.ctxGen++
}

// AddUpgrade registers an upgrade. Registration order is also the order
// effects apply in the multiplier pass.
func (e *Engine) AddUpgrade(u *entity.Upgrade) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.upgrades[u.ID]; !exists {
		e.upgradeOrder = append(e.upgradeOrder, u.ID)
	}
	e.upgrades[u.ID] = u
	e.ctxGen++
}

// AddAchievement registers an achievement.
func (e *Engine) AddAchievement(a *entity.Achievement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.achievements[a.ID]; !exists {
		e.achievementOrder = append(e.achievementOrder, a.ID)
	}
	e.achievements[a.ID] = a
	e.ctxGen++
}

// SetClickPower installs the manual click entity.
func (e *Engine) SetClickPower(c *entity.ClickPower) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.click = c
	e.ctxGen++
}

// SetPrestige installs the prestige tracker.
func (e *Engine) SetPrestige(p *entity.Prestige) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prestige = p
	e.ctxGen++
}

// gameContext returns the current context, rebuilding it only when the
// membership generation moved. Caller must hold the lock.
func (e *Engine) gameContext() *entity.Context {
	if e.ctx != nil && e.builtGen == e.ctxGen {
		return e.ctx
	}

	ctx := &entity.Context{
		Resources:        e.resources,
		ResourceOrder:    append([]string(nil), e.resourceOrder...),
		Producers:        e.producers,
		ProducerOrder:    append([]string(nil), e.producerOrder...),
		Upgrades:         e.upgrades,
		UpgradeOrder:     append([]string(nil), e.upgradeOrder...),
		Achievements:     e.achievements,
		AchievementOrder: append([]string(nil), e.achievementOrder...),
		Click:            e.click,
		Prestige:         e.prestige,
		Stats:            e.stats,
	}

	e.ctx = ctx
	e.builtGen = e.ctxGen
	return ctx
}

// GameContext exposes the live context for read-only callers (API state
// handlers, the sim runner). Mutating through it bypasses the engine lock.
func (e *Engine) GameContext() *entity.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameContext()
}

// TickNumber returns the count of completed ticks.
func (e *Engine) TickNumber() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickNumber
}

// Config exposes the tuning parameters the engine runs with.
func (e *Engine) Config() *optimization.Config {
	return e.cfg
}

// GetEventLog exposes the event log for the network layer.
func (e *Engine) GetEventLog() *events.EventLog {
	return e.eventLog
}

// Start spawns the tick loop. Call once; cancel the context to stop.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting mine engine...")
	go e.ticker.Start(ctx)
}

// Stop halts the tick loop without cancelling the surrounding context.
func (e *Engine) Stop() {
	e.ticker.Stop()
}

// emit appends an event stamped with the current tick.
func (e *Engine) emit(t events.EventType, actorID, targetID string, payload interface{}) {
	if e.eventLog == nil {
		return
	}
	e.eventLog.Append(events.GameEvent{
		ID:         events.GenerateEventID(),
		Timestamp:  time.Now(),
		Type:       t,
		ActorID:    actorID,
		TargetID:   targetID,
		Payload:    payload,
		TickNumber: e.tickNumber,
	})
}

// totalRate sums the per-second production of every active producer at the
// multipliers of the most recent tick. Caller must hold the lock.
func (e *Engine) totalRate(ctx *entity.Context) map[string]bignum.Big {
	rates := make(map[string]bignum.Big)
	for _, id := range ctx.ProducerOrder {
		p := ctx.Producers[id]
		if !p.Unlocked || p.Level == 0 {
			continue
		}
		for res, r := range p.ProductionRate(ctx) {
			rates[res] = rates[res].Add(r)
		}
	}
	return rates
}

// ProductionRates reports the current per-second output per resource.
func (e *Engine) ProductionRates() map[string]bignum.Big {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalRate(e.gameContext())
}
