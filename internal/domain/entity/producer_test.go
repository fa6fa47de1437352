package entity

import (
	"math"
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
)

// newTestContext builds a minimal live context around the given producers.
func newTestContext(producers ...*Producer) *Context {
	ctx := &Context{
		Resources:    make(map[string]*Resource),
		Producers:    make(map[string]*Producer),
		Upgrades:     make(map[string]*Upgrade),
		Achievements: make(map[string]*Achievement),
		Stats:        NewStats(),
	}
	for _, p := range producers {
		ctx.Producers[p.ID] = p
		ctx.ProducerOrder = append(ctx.ProducerOrder, p.ID)
	}
	return ctx
}

func newTestProducer(id string, tier, level int, perSecond float64) *Producer {
	p := &Producer{
		Purchasable:    Purchasable{Entity: Entity{ID: id, Name: id}, Level: level},
		BaseProduction: map[string]bignum.Big{"ore": bignum.New(perSecond)},
		Multiplier:     bignum.One(),
		Tier:           tier,
		Variant:        VariantStandard,
	}
	p.Unlock()
	return p
}

func TestStandardProductionRate(t *testing.T) {
	// Setup: 2/s base at level 3 with multiplier 2.
	p := newTestProducer("miner", 1, 3, 2)
	p.ApplyBoost(2)

	// Act
	rate := p.ProductionRate(newTestContext(p))

	// Assert: 2 * 3 * 2 = 12/s.
	if !rate["ore"].Eq(bignum.New(12)) {
		t.Errorf("Expected 12 ore/s, got %s", rate["ore"])
	}

	// Produce for half a second.
	out := p.Produce(newTestContext(p), 0.5)
	if !out["ore"].Eq(bignum.New(6)) {
		t.Errorf("Expected 6 ore for 0.5s, got %s", out["ore"])
	}
}

func TestDrillDepthBonus(t *testing.T) {
	p := newTestProducer("drill", 2, 1, 10)
	p.Variant = VariantDrill
	p.Depth = 3
	p.DepthBonus = 0.5

	rate := p.ProductionRate(newTestContext(p))

	// 10 * (1.5)^3 = 33.75
	if !rate["ore"].ApproxEqual(bignum.New(33.75), 1e-12) {
		t.Errorf("Expected 33.75 ore/s at depth 3, got %s", rate["ore"])
	}
}

func TestComplexSynergyReadsLiveContext(t *testing.T) {
	// Setup: complex at tier 3, siblings at tiers 1 and 2.
	low1 := newTestProducer("miner", 1, 4, 1)
	low2 := newTestProducer("drill", 2, 6, 1)
	high := newTestProducer("complejo", 3, 1, 100)
	high.Variant = VariantComplex
	high.SynergyBonus = 0.1
	ctx := newTestContext(low1, low2, high)

	// Act
	rate := high.ProductionRate(ctx)

	// Assert: 100 * (1 + 0.1*(4+6)) = 200.
	if !rate["ore"].ApproxEqual(bignum.New(200), 1e-12) {
		t.Errorf("Expected 200 ore/s with 10 lower-tier levels, got %s", rate["ore"])
	}

	// Level up a sibling: the synergy must move without any recompute step.
	low1.Level = 14
	rate = high.ProductionRate(ctx)
	if !rate["ore"].ApproxEqual(bignum.New(300), 1e-12) {
		t.Errorf("Expected 300 ore/s after sibling leveled, got %s", rate["ore"])
	}
}

func TestQuantumInstabilityPenalty(t *testing.T) {
	p := newTestProducer("quantum", 5, 1, 8)
	p.Variant = VariantQuantum
	p.QuantumLevel = 2
	p.QuantumScaling = 3
	p.Instability = 0.25

	rate := p.ProductionRate(newTestContext(p))

	// 8 * 3^2 * 0.75 = 54
	want := 8 * math.Pow(3, 2) * 0.75
	if !rate["ore"].ApproxEqual(bignum.New(want), 1e-12) {
		t.Errorf("Expected %v ore/s, got %s", want, rate["ore"])
	}
}

func TestMultiplierResetDoesNotCompound(t *testing.T) {
	p := newTestProducer("miner", 1, 1, 1)

	// Two tick cycles of reset + boost must land on the same multiplier.
	p.ResetMultiplier()
	p.ApplyBoost(3)
	first := p.Multiplier

	p.ResetMultiplier()
	p.ApplyBoost(3)

	if !p.Multiplier.Eq(first) {
		t.Errorf("Expected multiplier %s after second cycle, got %s", first, p.Multiplier)
	}
	if !p.Multiplier.Eq(bignum.New(3)) {
		t.Errorf("Expected multiplier 3, got %s", p.Multiplier)
	}
}

func TestAdditiveBonusStacksWithBoost(t *testing.T) {
	p := newTestProducer("miner", 1, 1, 1)
	p.ResetMultiplier()
	p.ApplyBoost(2)
	p.AddBonus(0.5)

	if !p.Multiplier.Eq(bignum.New(2.5)) {
		t.Errorf("Expected multiplier 2.5, got %s", p.Multiplier)
	}
}
