package entity

import (
	"math"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// Variant selects how a producer scales its base rate. One concrete record
// with a behavior tag instead of a subclass per machine: adding a variant is
// adding a case.
type Variant string

const (
	VariantStandard Variant = "standard" // plain miners
	VariantDrill    Variant = "drill"    // geometric bonus per depth unit
	VariantComplex  Variant = "complex"  // synergy with lower-tier producers
	VariantQuantum  Variant = "quantum"  // quantum scaling with instability penalty
)

// Producer converts time into resource output. The multiplier is transient:
// reset to 1 and rebuilt by the engine every tick so boosts never compound.
type Producer struct {
	Purchasable
	BaseProduction map[string]bignum.Big `json:"base_production"` // per level per second
	Multiplier     bignum.Big            `json:"multiplier"`
	Tier           int                   `json:"tier"`
	Category       string                `json:"category"`

	Variant        Variant `json:"variant"`
	Depth          int     `json:"depth"`
	DepthBonus     float64 `json:"depth_bonus"`
	SynergyBonus   float64 `json:"synergy_bonus"`
	QuantumLevel   int     `json:"quantum_level"`
	QuantumScaling float64 `json:"quantum_scaling"`
	Instability    float64 `json:"instability"`

	UnlockCondition Predicate `json:"-"`
}

// ResetMultiplier begins a fresh multiplier pass.
func (p *Producer) ResetMultiplier() {
	p.Multiplier = bignum.One()
}

// ApplyBoost multiplies the current multiplier in place.
func (p *Producer) ApplyBoost(factor float64) {
	p.Multiplier = p.Multiplier.MulF(factor)
}

// AddBonus adds an additive term to the current multiplier.
func (p *Producer) AddBonus(v float64) {
	p.Multiplier = p.Multiplier.Add(bignum.New(v))
}

// SetMultiplier replaces the multiplier outright. Used on restore and reset.
func (p *Producer) SetMultiplier(m bignum.Big) {
	p.Multiplier = m
}

// variantFactor computes the specialization multiplier. Synergy reads the
// live context at call time so it always reflects current sibling levels.
func (p *Producer) variantFactor(ctx *Context) float64 {
	switch p.Variant {
	case VariantDrill:
		return math.Pow(1+p.DepthBonus, float64(p.Depth))
	case VariantComplex:
		lowerLevels := 0
		for _, id := range ctx.ProducerOrder {
			other := ctx.Producers[id]
			if other.Tier < p.Tier {
				lowerLevels += other.Level
			}
		}
		return 1 + p.SynergyBonus*float64(lowerLevels)
	case VariantQuantum:
		return math.Pow(p.QuantumScaling, float64(p.QuantumLevel)) * (1 - p.Instability)
	default:
		return 1
	}
}

// ProductionRate returns output per second per resource:
// baseProduction * level * multiplier * variant factor.
func (p *Producer) ProductionRate(ctx *Context) map[string]bignum.Big {
	out := make(map[string]bignum.Big, len(p.BaseProduction))
	factor := p.variantFactor(ctx)
	for id, base := range p.BaseProduction {
		out[id] = base.MulF(float64(p.Level)).Mul(p.Multiplier).MulF(factor)
	}
	return out
}

// Produce returns the output for deltaTime seconds. Callers skip producers
// at level 0; the rate would be zero anyway, this just avoids the work.
func (p *Producer) Produce(ctx *Context, deltaTime float64) map[string]bignum.Big {
	rate := p.ProductionRate(ctx)
	out := make(map[string]bignum.Big, len(rate))
	for id, perSecond := range rate {
		out[id] = perSecond.MulF(deltaTime)
	}
	return out
}
