package content

import (
	"fmt"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/cost"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/rules"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
)

var validVariants = map[string]bool{
	"":                             true,
	string(entity.VariantStandard): true,
	string(entity.VariantDrill):    true,
	string(entity.VariantComplex):  true,
	string(entity.VariantQuantum):  true,
}

var validEffectTypes = map[string]bool{
	string(entity.EffectMultiplier): true,
	string(entity.EffectAdditive):   true,
	string(entity.EffectFlat):       true,
}

var validTargetKinds = map[string]bool{
	string(entity.TargetProducer):      true,
	string(entity.TargetAllProducers):  true,
	string(entity.TargetCategory):      true,
	string(entity.TargetPrestige):      true,
	string(entity.TargetClickValue):    true,
	string(entity.TargetClickCritOdds): true,
	string(entity.TargetClickCritMult): true,
}

// Validate checks the pack for internal consistency. Every ID reference
// must resolve and every quantity must parse.
func (p *Pack) Validate() error {
	ids := make(map[string]string) // id -> kind, the unlock namespace is global
	resources := make(map[string]bool)

	claim := func(id, kind string) error {
		if id == "" {
			return fmt.Errorf("content: %s with empty id", kind)
		}
		if prev, dup := ids[id]; dup {
			return fmt.Errorf("content: id %q used by both %s and %s", id, prev, kind)
		}
		ids[id] = kind
		return nil
	}

	for _, r := range p.Resources {
		if err := claim(r.ID, "resource"); err != nil {
			return err
		}
		resources[r.ID] = true
		for _, field := range []string{r.MaxAmount, r.InitialAmount} {
			if field == "" {
				continue
			}
			if _, err := bignum.Parse(field); err != nil {
				return fmt.Errorf("content: resource %q: %w", r.ID, err)
			}
		}
	}

	if p.PrimaryResource == "" || !resources[p.PrimaryResource] {
		return fmt.Errorf("content: primary_resource %q is not a declared resource", p.PrimaryResource)
	}

	for _, d := range p.Producers {
		if err := claim(d.ID, "producer"); err != nil {
			return err
		}
		if !validVariants[d.Variant] {
			return fmt.Errorf("content: producer %q: unknown variant %q", d.ID, d.Variant)
		}
		if len(d.Production) == 0 {
			return fmt.Errorf("content: producer %q produces nothing", d.ID)
		}
		if err := checkAmounts(d.BaseCost, resources, "producer "+d.ID+" base_cost"); err != nil {
			return err
		}
		if err := checkAmounts(d.Production, resources, "producer "+d.ID+" production"); err != nil {
			return err
		}
		if _, err := cost.New(d.Cost); err != nil {
			return fmt.Errorf("content: producer %q: %w", d.ID, err)
		}
		if err := p.checkUnlock(d.Unlock, resources, "producer "+d.ID); err != nil {
			return err
		}
	}

	producerExists := func(id string) bool { return ids[id] == "producer" }

	for _, d := range p.Upgrades {
		if err := claim(d.ID, "upgrade"); err != nil {
			return err
		}
		if !validEffectTypes[d.Effect.Type] {
			return fmt.Errorf("content: upgrade %q: unknown effect type %q", d.ID, d.Effect.Type)
		}
		if !validTargetKinds[d.Target.Kind] {
			return fmt.Errorf("content: upgrade %q: unknown target kind %q", d.ID, d.Target.Kind)
		}
		if d.Target.Kind == string(entity.TargetProducer) && !producerExists(d.Target.ProducerID) {
			return fmt.Errorf("content: upgrade %q targets unknown producer %q", d.ID, d.Target.ProducerID)
		}
		if d.Target.Kind == string(entity.TargetCategory) && d.Target.Category == "" {
			return fmt.Errorf("content: upgrade %q targets an empty category", d.ID)
		}
		if err := checkAmounts(d.BaseCost, resources, "upgrade "+d.ID+" base_cost"); err != nil {
			return err
		}
		if _, err := cost.New(d.Cost); err != nil {
			return fmt.Errorf("content: upgrade %q: %w", d.ID, err)
		}
		if err := p.checkUnlock(d.Unlock, resources, "upgrade "+d.ID); err != nil {
			return err
		}
	}

	for _, d := range p.Achievements {
		if err := claim(d.ID, "achievement"); err != nil {
			return err
		}
		switch d.Condition.Kind {
		case "resource_milestone", "cumulative_production":
			if !resources[d.Condition.Resource] {
				return fmt.Errorf("content: achievement %q: unknown resource %q", d.ID, d.Condition.Resource)
			}
			if _, err := bignum.Parse(d.Condition.Amount); err != nil {
				return fmt.Errorf("content: achievement %q: %w", d.ID, err)
			}
		case "purchase_level":
			if d.Condition.Entity == "" || d.Condition.Level <= 0 {
				return fmt.Errorf("content: achievement %q: purchase_level needs entity and level", d.ID)
			}
		default:
			return fmt.Errorf("content: achievement %q: unknown condition kind %q", d.ID, d.Condition.Kind)
		}
		if d.Reward != nil {
			switch d.Reward.Kind {
			case "multiplier":
				if d.Reward.Value <= 0 {
					return fmt.Errorf("content: achievement %q: multiplier reward needs a positive value", d.ID)
				}
			case "resource":
				if !resources[d.Reward.Resource] {
					return fmt.Errorf("content: achievement %q: reward references unknown resource %q", d.ID, d.Reward.Resource)
				}
				if _, err := bignum.Parse(d.Reward.Amount); err != nil {
					return fmt.Errorf("content: achievement %q: %w", d.ID, err)
				}
			case "unlock":
				if d.Reward.Target == "" {
					return fmt.Errorf("content: achievement %q: unlock reward needs a target", d.ID)
				}
			default:
				return fmt.Errorf("content: achievement %q: unknown reward kind %q", d.ID, d.Reward.Kind)
			}
		}
	}

	if p.ClickPower != nil {
		c := p.ClickPower
		if err := claim(c.ID, "click_power"); err != nil {
			return err
		}
		if _, err := bignum.Parse(c.BaseValue); err != nil {
			return fmt.Errorf("content: click_power: %w", err)
		}
		if c.CritChance < 0 || c.CritChance > 1 {
			return fmt.Errorf("content: click_power: crit_chance %v outside [0, 1]", c.CritChance)
		}
		if c.CritMultiplier != 0 && c.CritMultiplier < 1 {
			return fmt.Errorf("content: click_power: crit_multiplier %v below 1", c.CritMultiplier)
		}
		if err := checkAmounts(c.BaseCost, resources, "click_power base_cost"); err != nil {
			return err
		}
		if _, err := cost.New(c.Cost); err != nil {
			return fmt.Errorf("content: click_power: %w", err)
		}
	}

	if p.Prestige != nil {
		pr := p.Prestige
		if !resources[pr.Currency] {
			return fmt.Errorf("content: prestige currency %q is not a declared resource", pr.Currency)
		}
		if _, err := bignum.Parse(pr.Requirement); err != nil {
			return fmt.Errorf("content: prestige requirement: %w", err)
		}
		if _, err := rules.NewPrestigeFormula(pr.Formula); err != nil {
			return fmt.Errorf("content: prestige: %w", err)
		}
		if pr.BonusPerPoint < 0 {
			return fmt.Errorf("content: prestige bonus_per_point %v is negative", pr.BonusPerPoint)
		}
	}

	return nil
}

func checkAmounts(m map[string]string, resources map[string]bool, where string) error {
	for resID, amount := range m {
		if !resources[resID] {
			return fmt.Errorf("content: %s references unknown resource %q", where, resID)
		}
		if _, err := bignum.Parse(amount); err != nil {
			return fmt.Errorf("content: %s: %w", where, err)
		}
	}
	return nil
}

func (p *Pack) checkUnlock(u *UnlockDef, resources map[string]bool, where string) error {
	if u == nil {
		return nil
	}
	if u.Resource != "" {
		if !resources[u.Resource] {
			return fmt.Errorf("content: %s unlock references unknown resource %q", where, u.Resource)
		}
		if _, err := bignum.Parse(u.Amount); err != nil {
			return fmt.Errorf("content: %s unlock: %w", where, err)
		}
	}
	if u.Producer != "" && u.Level <= 0 {
		return fmt.Errorf("content: %s unlock needs a positive producer level", where)
	}
	return nil
}

// Install builds every definition into a live entity and registers it with
// the engine. Call Validate first (Load and Parse already do).
func (p *Pack) Install(e *engine.Engine) error {
	for _, d := range p.Resources {
		r := entity.NewResource(d.ID, d.Name)
		r.Description = d.Description
		r.Icon = d.Icon
		if d.StartLocked {
			r.Unlocked = false
			r.Visible = d.StartVisible
		}
		if d.MaxAmount != "" {
			r.SetCap(bignum.MustParse(d.MaxAmount))
		}
		if d.InitialAmount != "" {
			r.Add(bignum.MustParse(d.InitialAmount))
		}
		e.AddResource(r)
	}
	e.SetPrimaryResource(p.PrimaryResource)

	for _, d := range p.Producers {
		strategy, err := cost.New(d.Cost)
		if err != nil {
			return err
		}
		variant := entity.Variant(d.Variant)
		if d.Variant == "" {
			variant = entity.VariantStandard
		}
		prod := &entity.Producer{
			Purchasable: entity.Purchasable{
				Entity:   entity.Entity{ID: d.ID, Name: d.Name, Description: d.Description, Icon: d.Icon},
				BaseCost: parseAmounts(d.BaseCost),
				MaxLevel: d.MaxLevel,
				Strategy: strategy,
			},
			BaseProduction: parseAmounts(d.Production),
			Multiplier:     bignum.One(),
			Tier:           d.Tier,
			Category:       d.Category,
			Variant:        variant,
			Depth:          d.Depth,
			DepthBonus:     d.DepthBonus,
			SynergyBonus:   d.SynergyBonus,
			QuantumLevel:   d.QuantumLevel,
			QuantumScaling: d.QuantumScaling,
			Instability:    d.Instability,
		}
		if d.Unlock == nil {
			prod.Unlock()
		} else {
			prod.UnlockCondition = buildPredicate(d.Unlock)
		}
		e.AddProducer(prod)
	}

	for _, d := range p.Upgrades {
		strategy, err := cost.New(d.Cost)
		if err != nil {
			return err
		}
		maxLevel := d.MaxLevel
		if maxLevel == 0 {
			maxLevel = 1 // upgrades are one-shot unless said otherwise
		}
		up := &entity.Upgrade{
			Purchasable: entity.Purchasable{
				Entity:   entity.Entity{ID: d.ID, Name: d.Name, Description: d.Description, Icon: d.Icon},
				BaseCost: parseAmounts(d.BaseCost),
				MaxLevel: maxLevel,
				Strategy: strategy,
			},
			EffectType:  entity.EffectType(d.Effect.Type),
			EffectValue: d.Effect.Value,
			Target: entity.Target{
				Kind:       entity.TargetKind(d.Target.Kind),
				ProducerID: d.Target.ProducerID,
				Category:   d.Target.Category,
			},
		}
		if d.Unlock == nil {
			up.Unlock()
		} else {
			up.UnlockCondition = buildPredicate(d.Unlock)
		}
		e.AddUpgrade(up)
	}

	for _, d := range p.Achievements {
		a := &entity.Achievement{
			Entity:    entity.Entity{ID: d.ID, Name: d.Name, Description: d.Description, Icon: d.Icon},
			Condition: buildCondition(d.Condition),
			Reward:    buildReward(d.Reward),
		}
		a.Unlock()
		e.AddAchievement(a)
	}

	if p.ClickPower != nil {
		d := p.ClickPower
		click := entity.NewClickPower(d.ID, d.Name, bignum.MustParse(d.BaseValue))
		click.BaseCritChance = d.CritChance
		if d.CritMultiplier > 0 {
			click.BaseCritMultiplier = d.CritMultiplier
		}
		if len(d.BaseCost) > 0 {
			strategy, err := cost.New(d.Cost)
			if err != nil {
				return err
			}
			click.BaseCost = parseAmounts(d.BaseCost)
			click.MaxLevel = d.MaxLevel
			click.Strategy = strategy
		}
		e.SetClickPower(click)
	}

	if p.Prestige != nil {
		d := p.Prestige
		formula, err := rules.NewPrestigeFormula(d.Formula)
		if err != nil {
			return err
		}
		prestige := entity.NewPrestige(d.Currency, bignum.MustParse(d.Requirement), d.BonusPerPoint, formula)
		for _, id := range d.KeepProducers {
			prestige.KeepProducers[id] = true
		}
		for _, id := range d.KeepUpgrades {
			prestige.KeepUpgrades[id] = true
		}
		e.SetPrestige(prestige)
	}

	return nil
}

func parseAmounts(m map[string]string) map[string]bignum.Big {
	out := make(map[string]bignum.Big, len(m))
	for k, v := range m {
		out[k] = bignum.MustParse(v)
	}
	return out
}

// buildPredicate compiles an unlock gate. Clauses AND together.
func buildPredicate(u *UnlockDef) entity.Predicate {
	resource := u.Resource
	producer := u.Producer
	level := u.Level
	prestiges := u.Prestiges
	var amount bignum.Big
	if resource != "" {
		amount = bignum.MustParse(u.Amount)
	}

	return func(ctx *entity.Context) bool {
		if resource != "" {
			r, ok := ctx.Resources[resource]
			if !ok || r.Amount.LT(amount) {
				return false
			}
		}
		if producer != "" {
			prod, ok := ctx.Producers[producer]
			if !ok || prod.Level < level {
				return false
			}
		}
		if prestiges > 0 {
			if ctx.Prestige == nil || ctx.Prestige.TotalResets < prestiges {
				return false
			}
		}
		return true
	}
}

func buildCondition(d ConditionDef) entity.Condition {
	switch d.Kind {
	case "cumulative_production":
		return entity.CumulativeProduction{ResourceID: d.Resource, Threshold: bignum.MustParse(d.Amount)}
	case "purchase_level":
		return entity.PurchaseLevel{TargetID: d.Entity, Level: d.Level}
	default:
		return entity.ResourceMilestone{ResourceID: d.Resource, Threshold: bignum.MustParse(d.Amount)}
	}
}

func buildReward(d *RewardDef) *entity.Reward {
	if d == nil {
		return nil
	}
	r := &entity.Reward{
		Kind:       entity.RewardKind(d.Kind),
		Value:      d.Value,
		ResourceID: d.Resource,
		TargetID:   d.Target,
	}
	if d.Kind == "resource" {
		r.Amount = bignum.MustParse(d.Amount)
	}
	if d.Kind == "multiplier" && d.Target != "" {
		r.TargetID = d.Target
	}
	return r
}
