package entity

import (
	"fmt"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// Condition is the pluggable check behind an achievement. Progress is a
// fraction in [0, 1] for the UI; Check decides completion.
type Condition interface {
	Progress(ctx *Context) float64
	Check(ctx *Context) bool
	Description() string
}

// ResourceMilestone completes when a resource stock reaches a threshold.
type ResourceMilestone struct {
	ResourceID string
	Threshold  bignum.Big
}

func (c ResourceMilestone) Progress(ctx *Context) float64 {
	r, ok := ctx.Resources[c.ResourceID]
	if !ok {
		return 0
	}
	return r.Amount.PercentOf(c.Threshold)
}

func (c ResourceMilestone) Check(ctx *Context) bool {
	r, ok := ctx.Resources[c.ResourceID]
	return ok && r.Amount.GTE(c.Threshold)
}

func (c ResourceMilestone) Description() string {
	return fmt.Sprintf("hold %s of %s", c.Threshold, c.ResourceID)
}

// CumulativeProduction completes when lifetime production of a resource
// reaches a threshold. The accumulator lives in the run statistics, which
// are part of every save document, so the condition itself stays stateless.
type CumulativeProduction struct {
	ResourceID string
	Threshold  bignum.Big
}

func (c CumulativeProduction) Progress(ctx *Context) float64 {
	return ctx.Stats.LifetimeProduced(c.ResourceID).PercentOf(c.Threshold)
}

func (c CumulativeProduction) Check(ctx *Context) bool {
	return ctx.Stats.LifetimeProduced(c.ResourceID).GTE(c.Threshold)
}

func (c CumulativeProduction) Description() string {
	return fmt.Sprintf("produce %s of %s in total", c.Threshold, c.ResourceID)
}

// PurchaseLevel completes when a producer or upgrade reaches a level.
type PurchaseLevel struct {
	TargetID string
	Level    int
}

func (c PurchaseLevel) currentLevel(ctx *Context) int {
	if p, ok := ctx.Producers[c.TargetID]; ok {
		return p.Level
	}
	if u, ok := ctx.Upgrades[c.TargetID]; ok {
		return u.Level
	}
	if ctx.Click != nil && ctx.Click.ID == c.TargetID {
		return ctx.Click.Level
	}
	return 0
}

func (c PurchaseLevel) Progress(ctx *Context) float64 {
	if c.Level <= 0 {
		return 1
	}
	p := float64(c.currentLevel(ctx)) / float64(c.Level)
	if p > 1 {
		return 1
	}
	return p
}

func (c PurchaseLevel) Check(ctx *Context) bool {
	return c.currentLevel(ctx) >= c.Level
}

func (c PurchaseLevel) Description() string {
	return fmt.Sprintf("raise %s to level %d", c.TargetID, c.Level)
}

// RewardKind classifies what completing an achievement grants.
type RewardKind string

const (
	RewardMultiplier RewardKind = "multiplier" // global producer boost, applied by the engine's tick pass
	RewardResource   RewardKind = "resource"   // immediate one-time grant
	RewardUnlock     RewardKind = "unlock"     // forces a target entity visible and unlocked
)

// Reward is the one-time grant attached to an achievement.
type Reward struct {
	Kind       RewardKind `json:"kind"`
	Value      float64    `json:"value,omitempty"`       // multiplier factor
	ResourceID string     `json:"resource_id,omitempty"` // resource grant
	Amount     bignum.Big `json:"amount,omitempty"`      // resource grant
	TargetID   string     `json:"target_id,omitempty"`   // unlock target
}

// Achievement transitions pending -> completed exactly once and never back.
type Achievement struct {
	Entity
	Completed bool      `json:"completed"`
	Progress  float64   `json:"progress"`
	Condition Condition `json:"-"`
	Reward    *Reward   `json:"reward,omitempty"`
}

// UpdateProgress recomputes the progress fraction while pending.
func (a *Achievement) UpdateProgress(ctx *Context) {
	if a.Completed {
		return
	}
	a.Progress = a.Condition.Progress(ctx)
}

// Complete finishes the achievement and applies its immediate reward.
// Idempotent: a second call is a no-op and returns false. Multiplier
// rewards are not applied here; the engine's multiplier pass reads the
// completed flag every tick.
func (a *Achievement) Complete(ctx *Context) bool {
	if a.Completed {
		return false
	}
	a.Completed = true
	a.Progress = 1

	if a.Reward != nil {
		switch a.Reward.Kind {
		case RewardResource:
			if r, ok := ctx.Resources[a.Reward.ResourceID]; ok {
				r.Add(a.Reward.Amount)
			}
		case RewardUnlock:
			ctx.unlockByID(a.Reward.TargetID)
		}
	}
	return true
}
