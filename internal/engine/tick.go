package engine

import (
	"fmt"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
)

// Tick advances the world by deltaTime seconds. The pass order is fixed:
// playtime, unlocks, multipliers, production, achievements. Reordering any
// of these changes observable results, so nothing here is parallel.
func (e *Engine) Tick(deltaTime float64) {
	if deltaTime < 0 {
		deltaTime = 0
	}

	start := time.Now()

	e.mu.Lock()
	ctx := e.gameContext()

	e.tickNumber++
	ctx.Stats.TotalPlayTime += deltaTime

	e.unlockPass(ctx)
	e.multiplierPass(ctx)
	e.productionPass(ctx, deltaTime)
	completed := e.achievementPass(ctx)
	hook := e.onAchievement

	e.mu.Unlock()

	// Notify outside the lock; the hook may call back into the engine.
	for _, a := range completed {
		e.notifyAchievement(hook, a)
	}

	metrics.Get().RecordTick(time.Since(start))
}

// unlockPass evaluates every locked entity's condition. Unlocks are
// permanent: a condition turning false later never re-locks.
func (e *Engine) unlockPass(ctx *entity.Context) {
	for _, id := range ctx.ProducerOrder {
		p := ctx.Producers[id]
		if !p.Unlocked && (p.UnlockCondition == nil || p.UnlockCondition(ctx)) {
			p.Unlock()
			e.emit(events.EventTypeUnlock, "SYSTEM", p.ID, nil)
			e.logger.Event(string(events.EventTypeUnlock), "SYSTEM", "producer unlocked: "+p.ID)
		}
	}
	for _, id := range ctx.UpgradeOrder {
		u := ctx.Upgrades[id]
		if !u.Unlocked && (u.UnlockCondition == nil || u.UnlockCondition(ctx)) {
			u.Unlock()
			e.emit(events.EventTypeUnlock, "SYSTEM", u.ID, nil)
			e.logger.Event(string(events.EventTypeUnlock), "SYSTEM", "upgrade unlocked: "+u.ID)
		}
	}
}

// multiplierPass rebuilds every transient multiplier from scratch. Resetting
// first is what keeps repeated ticks from compounding the same upgrades.
func (e *Engine) multiplierPass(ctx *entity.Context) {
	for _, id := range ctx.ProducerOrder {
		ctx.Producers[id].ResetMultiplier()
	}
	if ctx.Click != nil {
		ctx.Click.ResetMultiplier()
	}
	if ctx.Prestige != nil {
		ctx.Prestige.ResetBoost()
	}

	// Upgrades first: a prestige-targeted upgrade must land before the
	// prestige multiplier is read.
	for _, id := range ctx.UpgradeOrder {
		ctx.Upgrades[id].Apply(ctx)
	}

	if ctx.Prestige != nil && !ctx.Prestige.Points.IsZero() {
		boost := ctx.Prestige.Multiplier()
		for _, id := range ctx.ProducerOrder {
			ctx.Producers[id].ApplyBoost(boost)
		}
		if ctx.Click != nil {
			ctx.Click.ApplyBoost(boost)
		}
	}

	// Completed achievements contribute their multiplier rewards here,
	// every tick, rather than mutating producers once at completion time.
	for _, id := range ctx.AchievementOrder {
		a := ctx.Achievements[id]
		if !a.Completed || a.Reward == nil || a.Reward.Kind != entity.RewardMultiplier {
			continue
		}
		if a.Reward.TargetID != "" {
			if p, ok := ctx.Producers[a.Reward.TargetID]; ok {
				p.ApplyBoost(a.Reward.Value)
			}
			continue
		}
		for _, pid := range ctx.ProducerOrder {
			ctx.Producers[pid].ApplyBoost(a.Reward.Value)
		}
	}
}

// productionPass credits each active producer's output, honoring caps.
func (e *Engine) productionPass(ctx *entity.Context, deltaTime float64) {
	if deltaTime == 0 {
		return
	}
	for _, id := range ctx.ProducerOrder {
		p := ctx.Producers[id]
		if !p.Unlocked || p.Level == 0 {
			continue
		}
		for resID, amount := range p.Produce(ctx, deltaTime) {
			r, ok := ctx.Resources[resID]
			if !ok {
				continue
			}
			added := r.Add(amount)
			if !added.IsZero() {
				ctx.Stats.RecordProduction(resID, added)
			}
		}
	}
}

// achievementPass refreshes progress and completes anything whose condition
// holds. Returns the newly completed achievements for notification.
func (e *Engine) achievementPass(ctx *entity.Context) []*entity.Achievement {
	var completed []*entity.Achievement
	for _, id := range ctx.AchievementOrder {
		a := ctx.Achievements[id]
		if a.Completed {
			continue
		}
		a.UpdateProgress(ctx)
		if !a.Condition.Check(ctx) {
			continue
		}
		if a.Complete(ctx) {
			completed = append(completed, a)
			e.emit(events.EventTypeAchievementComplete, "SYSTEM", a.ID, nil)
			e.logger.Event(string(events.EventTypeAchievementComplete), "SYSTEM", "achievement completed: "+a.Name)
			metrics.Get().RecordAchievement()
		}
	}
	return completed
}

// notifyAchievement calls the registered hook, swallowing panics so a broken
// observer cannot take the tick loop down with it.
func (e *Engine) notifyAchievement(hook AchievementHook, a *entity.Achievement) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(fmt.Sprintf("achievement hook panicked for %s: %v", a.ID, r))
		}
	}()
	hook(a)
}
