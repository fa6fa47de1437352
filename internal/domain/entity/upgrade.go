package entity

// EffectType determines how an upgrade's value combines with its target.
type EffectType string

const (
	EffectMultiplier EffectType = "multiplier" // value^level, multiplied in
	EffectAdditive   EffectType = "additive"   // value*level, added on
	EffectFlat       EffectType = "flat"       // value once, level-independent
)

// TargetKind routes an upgrade's effect. The old escape hatch of opaque
// callbacks is gone: the click-power wirings it was used for are first-class
// kinds now, so upgrade definitions stay pure data.
type TargetKind string

const (
	TargetProducer      TargetKind = "producer"
	TargetAllProducers  TargetKind = "all_producers"
	TargetCategory      TargetKind = "category"
	TargetPrestige      TargetKind = "prestige"
	TargetClickValue    TargetKind = "click_value"
	TargetClickCritOdds TargetKind = "click_crit_chance"
	TargetClickCritMult TargetKind = "click_crit_multiplier"
)

// Target is the structured descriptor of what an upgrade modifies.
type Target struct {
	Kind       TargetKind `json:"kind"`
	ProducerID string     `json:"producer_id,omitempty"`
	Category   string     `json:"category,omitempty"`
}

// Upgrade is a purchasable modifier. One-shot upgrades have MaxLevel 1 and
// track the Purchased flag independently of level.
type Upgrade struct {
	Purchasable
	EffectType  EffectType `json:"effect_type"`
	EffectValue float64    `json:"effect_value"`
	Target      Target     `json:"target"`
	Purchased   bool       `json:"purchased"`

	UnlockCondition Predicate `json:"-"`
}

// Effect returns the scalar contribution at the current level. Neutral
// (1 for multiplier, 0 otherwise) until leveled or purchased.
func (u *Upgrade) Effect() float64 {
	if u.Level == 0 && !u.Purchased {
		if u.EffectType == EffectMultiplier {
			return 1
		}
		return 0
	}
	switch u.EffectType {
	case EffectMultiplier:
		v := 1.0
		for i := 0; i < u.Level; i++ {
			v *= u.EffectValue
		}
		return v
	case EffectAdditive:
		return u.EffectValue * float64(u.Level)
	case EffectFlat:
		return u.EffectValue
	default:
		return 0
	}
}

// Purchase raises the level by one and marks the upgrade bought. Returns
// false without mutation at max level; cost deduction is the engine's job.
func (u *Upgrade) Purchase() bool {
	if u.AtMaxLevel() {
		return false
	}
	u.Level++
	u.Purchased = true
	return true
}

// Apply routes the current effect into the context. Called once per tick
// during the multiplier pass, after every multiplier has been reset to 1.
func (u *Upgrade) Apply(ctx *Context) {
	if u.Level == 0 && !u.Purchased {
		return
	}
	effect := u.Effect()

	switch u.Target.Kind {
	case TargetProducer:
		if p, ok := ctx.Producers[u.Target.ProducerID]; ok {
			u.applyToProducer(p, effect)
		}
	case TargetAllProducers:
		for _, id := range ctx.ProducerOrder {
			u.applyToProducer(ctx.Producers[id], effect)
		}
	case TargetCategory:
		for _, id := range ctx.ProducerOrder {
			if p := ctx.Producers[id]; p.Category == u.Target.Category {
				u.applyToProducer(p, effect)
			}
		}
	case TargetPrestige:
		if ctx.Prestige != nil {
			ctx.Prestige.ApplyBoost(u.EffectType, effect)
		}
	case TargetClickValue:
		if ctx.Click != nil {
			if u.EffectType == EffectMultiplier {
				ctx.Click.ApplyBoost(effect)
			} else {
				ctx.Click.AddBonus(effect)
			}
		}
	case TargetClickCritOdds:
		if ctx.Click != nil {
			ctx.Click.ApplyCritChance(u.EffectType, effect)
		}
	case TargetClickCritMult:
		if ctx.Click != nil {
			ctx.Click.ApplyCritMultiplier(u.EffectType, effect)
		}
	}
}

func (u *Upgrade) applyToProducer(p *Producer, effect float64) {
	if u.EffectType == EffectMultiplier {
		p.ApplyBoost(effect)
	} else {
		p.AddBonus(effect)
	}
}

// ResetForPrestige clears the level and the purchased flag.
func (u *Upgrade) ResetForPrestige() {
	u.Level = 0
	u.Purchased = false
}
