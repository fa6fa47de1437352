package engine

import (
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/cost"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/rules"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/optimization"
)

func newTestEngine() *Engine {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	e := NewEngine(el, log, optimization.LowResourceConfig())
	return e
}

func defaultStrategy() cost.Strategy {
	s, _ := cost.NewExponential(cost.DefaultMultiplier)
	return s
}

func addOre(e *Engine) *entity.Resource {
	ore := entity.NewResource("ore", "Ore")
	e.AddResource(ore)
	e.SetPrimaryResource("ore")
	return ore
}

func addMiner(e *Engine, level int) *entity.Producer {
	p := &entity.Producer{
		Purchasable: entity.Purchasable{
			Entity:   entity.Entity{ID: "miner", Name: "Miner"},
			Level:    level,
			BaseCost: map[string]bignum.Big{"ore": bignum.New(10)},
			Strategy: defaultStrategy(),
		},
		BaseProduction: map[string]bignum.Big{"ore": bignum.New(2)},
		Multiplier:     bignum.One(),
		Variant:        entity.VariantStandard,
		Category:       "mining",
	}
	p.Unlock()
	e.AddProducer(p)
	return p
}

func TestTickProducesIntoResource(t *testing.T) {
	// Setup
	e := newTestEngine()
	ore := addOre(e)
	addMiner(e, 3)

	// Act: one second of production at 2/sec/level
	e.Tick(1.0)

	// Assert
	if got := ore.Amount.Float64(); got != 6 {
		t.Errorf("Expected 6 ore after 1s, got %v", got)
	}
	if got := e.GameContext().Stats.TotalPlayTime; got != 1.0 {
		t.Errorf("Expected 1s play time, got %v", got)
	}
}

func TestMultipliersDoNotCompoundAcrossTicks(t *testing.T) {
	// Setup: a doubling upgrade already purchased
	e := newTestEngine()
	ore := addOre(e)
	miner := addMiner(e, 1)

	boost := &entity.Upgrade{
		Purchasable: entity.Purchasable{
			Entity:   entity.Entity{ID: "sharp-picks", Name: "Sharp Picks"},
			BaseCost: map[string]bignum.Big{"ore": bignum.New(1)},
			MaxLevel: 1,
			Strategy: defaultStrategy(),
		},
		EffectType:  entity.EffectMultiplier,
		EffectValue: 2,
		Target:      entity.Target{Kind: entity.TargetProducer, ProducerID: "miner"},
	}
	boost.Unlock()
	boost.Purchase()
	e.AddUpgrade(boost)

	// Act: three ticks
	e.Tick(1.0)
	afterOne := ore.Amount.Float64()
	e.Tick(1.0)
	e.Tick(1.0)

	// Assert: rate stays 4/sec; 2 base * 2 upgrade, never 8 or 16
	if afterOne != 4 {
		t.Errorf("Expected 4 ore after first tick, got %v", afterOne)
	}
	if got := ore.Amount.Float64(); got != 12 {
		t.Errorf("Expected 12 ore after three ticks, got %v", got)
	}
	if got := miner.Multiplier.Float64(); got != 2 {
		t.Errorf("Expected multiplier 2 after tick, got %v", got)
	}
}

func TestUnlockIsPermanent(t *testing.T) {
	// Setup: a producer gated on 100 ore
	e := newTestEngine()
	ore := addOre(e)

	drill := &entity.Producer{
		Purchasable: entity.Purchasable{
			Entity:   entity.Entity{ID: "drill", Name: "Drill"},
			BaseCost: map[string]bignum.Big{"ore": bignum.New(100)},
			Strategy: defaultStrategy(),
		},
		BaseProduction: map[string]bignum.Big{"ore": bignum.New(10)},
		Multiplier:     bignum.One(),
		UnlockCondition: func(ctx *entity.Context) bool {
			return ctx.Resources["ore"].Amount.GTE(bignum.New(100))
		},
	}
	e.AddProducer(drill)

	// Act: below threshold, then above, then below again
	e.Tick(0.1)
	locked := drill.Unlocked
	ore.Add(bignum.New(150))
	e.Tick(0.1)
	ore.Subtract(bignum.New(150))
	e.Tick(0.1)

	// Assert
	if locked {
		t.Errorf("Expected drill locked below threshold")
	}
	if !drill.Unlocked {
		t.Errorf("Expected drill to stay unlocked after condition turned false")
	}
}

func TestPurchaseProducerIsAtomic(t *testing.T) {
	// Setup: a producer costing ore and crystal
	e := newTestEngine()
	ore := addOre(e)
	crystal := entity.NewResource("crystal", "Crystal")
	e.AddResource(crystal)

	rig := &entity.Producer{
		Purchasable: entity.Purchasable{
			Entity: entity.Entity{ID: "rig", Name: "Rig"},
			BaseCost: map[string]bignum.Big{
				"ore":     bignum.New(10),
				"crystal": bignum.New(5),
			},
			Strategy: defaultStrategy(),
		},
		BaseProduction: map[string]bignum.Big{"ore": bignum.New(1)},
		Multiplier:     bignum.One(),
	}
	rig.Unlock()
	e.AddProducer(rig)

	ore.Add(bignum.New(100))
	crystal.Add(bignum.New(2)) // not enough

	// Act
	ok := e.PurchaseProducer("rig", 1)

	// Assert: nothing was spent
	if ok {
		t.Errorf("Expected purchase to fail on missing crystal")
	}
	if got := ore.Amount.Float64(); got != 100 {
		t.Errorf("Expected ore untouched at 100, got %v", got)
	}
	if rig.Level != 0 {
		t.Errorf("Expected rig at level 0, got %d", rig.Level)
	}

	// Act: top up and retry
	crystal.Add(bignum.New(10))
	if !e.PurchaseProducer("rig", 1) {
		t.Fatalf("Expected purchase to succeed")
	}

	// Assert
	if got := ore.Amount.Float64(); got != 90 {
		t.Errorf("Expected 90 ore after purchase, got %v", got)
	}
	if got := crystal.Amount.Float64(); got != 7 {
		t.Errorf("Expected 7 crystal after purchase, got %v", got)
	}
	if rig.Level != 1 {
		t.Errorf("Expected rig at level 1, got %d", rig.Level)
	}
}

func TestPurchaseClampsToMaxLevel(t *testing.T) {
	// Setup
	e := newTestEngine()
	ore := addOre(e)
	ore.Add(bignum.New(1e6))

	miner := addMiner(e, 0)
	miner.MaxLevel = 3

	// Act: ask for far more than the ceiling allows
	ok := e.PurchaseProducer("miner", 100)

	// Assert
	if !ok {
		t.Fatalf("Expected clamped purchase to succeed")
	}
	if miner.Level != 3 {
		t.Errorf("Expected level clamped to 3, got %d", miner.Level)
	}
	if e.PurchaseProducer("miner", 1) {
		t.Errorf("Expected purchase at max level to fail")
	}
}

func TestClickUsesInjectedRolls(t *testing.T) {
	// Setup: crit chance 100% via upgrade, fixed rolls
	e := newTestEngine()
	ore := addOre(e)

	click := entity.NewClickPower("pickaxe", "Pickaxe", bignum.New(5))
	click.BaseCritChance = 0.5
	click.BaseCritMultiplier = 3
	e.SetClickPower(click)

	rolls := []float64{0.4, 0.9} // crit, then normal
	i := 0
	e.SetRNG(func() float64 {
		r := rolls[i%len(rolls)]
		i++
		return r
	})
	e.Tick(0) // build click multipliers

	// Act
	first := e.HandleClick()
	second := e.HandleClick()

	// Assert
	if !first.WasCrit || first.Amount.Float64() != 15 {
		t.Errorf("Expected crit for 15, got crit=%v amount=%v", first.WasCrit, first.Amount.Float64())
	}
	if second.WasCrit || second.Amount.Float64() != 5 {
		t.Errorf("Expected normal click for 5, got crit=%v amount=%v", second.WasCrit, second.Amount.Float64())
	}
	if got := ore.Amount.Float64(); got != 20 {
		t.Errorf("Expected 20 ore from both clicks, got %v", got)
	}
	if got := e.GameContext().Stats.TotalClicks; got != 2 {
		t.Errorf("Expected 2 recorded clicks, got %d", got)
	}
}

func TestPurchaseClickPowerLevelsAndSpends(t *testing.T) {
	// Setup: a click power with a cost curve, starting at level 1
	e := newTestEngine()
	ore := addOre(e)

	click := entity.NewClickPower("pickaxe", "Pickaxe", bignum.New(5))
	click.BaseCost = map[string]bignum.Big{"ore": bignum.New(10)}
	click.Strategy = defaultStrategy()
	e.SetClickPower(click)

	// Act: broke
	if e.PurchaseClickPower() {
		t.Errorf("Expected purchase without funds to fail")
	}
	if click.Level != 1 {
		t.Errorf("Expected level unchanged at 1, got %d", click.Level)
	}

	// Act: funded
	ore.Add(bignum.New(100))
	if !e.PurchaseClickPower() {
		t.Fatalf("Expected funded purchase to succeed")
	}

	// Assert: level 2, 10 * 1.15^1 = 11.5 ore spent
	if click.Level != 2 {
		t.Errorf("Expected level 2 after purchase, got %d", click.Level)
	}
	if got := ore.Amount.Float64(); got != 88.5 {
		t.Errorf("Expected 88.5 ore after purchase, got %v", got)
	}
}

func TestPurchaseClickPowerWithoutCurveIsRejected(t *testing.T) {
	// Setup: the bare swing has no cost curve and cannot be leveled
	e := newTestEngine()
	ore := addOre(e)
	ore.Add(bignum.New(1e9))
	e.SetClickPower(entity.NewClickPower("pickaxe", "Pickaxe", bignum.New(1)))

	// Act
	ok := e.PurchaseClickPower()

	// Assert
	if ok {
		t.Errorf("Expected purchase without a cost curve to fail")
	}
	if got := ore.Amount.Float64(); got != 1e9 {
		t.Errorf("Expected ore untouched, got %v", got)
	}
}

func TestAchievementCompletesOnceAndBoosts(t *testing.T) {
	// Setup: milestone at 100 ore with a global x2 reward
	e := newTestEngine()
	ore := addOre(e)
	miner := addMiner(e, 1)

	ach := &entity.Achievement{
		Entity:    entity.Entity{ID: "first-vein", Name: "First Vein"},
		Condition: entity.ResourceMilestone{ResourceID: "ore", Threshold: bignum.New(100)},
		Reward:    &entity.Reward{Kind: entity.RewardMultiplier, Value: 2},
	}
	ach.Unlock()
	e.AddAchievement(ach)

	notified := 0
	e.SetAchievementHook(func(a *entity.Achievement) { notified++ })

	// Act
	ore.Add(bignum.New(150))
	e.Tick(1.0)
	e.Tick(1.0)

	// Assert
	if !ach.Completed {
		t.Fatalf("Expected achievement completed")
	}
	if notified != 1 {
		t.Errorf("Expected exactly one notification, got %d", notified)
	}
	// Reward applies every tick: 2 base * 2 achievement = 4/sec
	if got := miner.Multiplier.Float64(); got != 2 {
		t.Errorf("Expected producer multiplier 2 from reward, got %v", got)
	}
}

func TestPrestigeRoundTrip(t *testing.T) {
	// Setup: 1 point per 1e6 prestige currency, 10% bonus per point
	e := newTestEngine()
	ore := addOre(e)
	miner := addMiner(e, 5)

	keeper := &entity.Upgrade{
		Purchasable: entity.Purchasable{
			Entity:   entity.Entity{ID: "legacy-tools", Name: "Legacy Tools"},
			BaseCost: map[string]bignum.Big{"ore": bignum.New(1)},
			MaxLevel: 1,
			Strategy: defaultStrategy(),
		},
		EffectType:  entity.EffectMultiplier,
		EffectValue: 2,
		Target:      entity.Target{Kind: entity.TargetAllProducers},
	}
	keeper.Unlock()
	keeper.Purchase()
	e.AddUpgrade(keeper)

	formula, _ := rules.NewPrestigeFormula("linear")
	prestige := entity.NewPrestige("ore", bignum.New(1e6), 0.1, formula)
	prestige.KeepUpgrades["legacy-tools"] = true
	e.SetPrestige(prestige)

	// Act: not enough currency yet
	if e.PerformPrestige() {
		t.Fatalf("Expected prestige below requirement to fail")
	}

	ore.Add(bignum.New(3e6))
	if !e.PerformPrestige() {
		t.Fatalf("Expected prestige to succeed")
	}

	// Assert: 3 points, run reset, keep set honored
	if got := prestige.Points.Float64(); got != 3 {
		t.Errorf("Expected 3 prestige points, got %v", got)
	}
	if prestige.TotalResets != 1 {
		t.Errorf("Expected 1 reset, got %d", prestige.TotalResets)
	}
	if got := ore.Amount.Float64(); got != 0 {
		t.Errorf("Expected ore reset to 0, got %v", got)
	}
	if miner.Level != 0 {
		t.Errorf("Expected miner level reset, got %d", miner.Level)
	}
	if !keeper.Purchased {
		t.Errorf("Expected kept upgrade to survive prestige")
	}

	// Assert: next tick carries the permanent bonus
	miner.Level = 1
	e.Tick(1.0)
	// 2 base * 2 upgrade * (1 + 0.1*3) = 5.2/sec
	want := 5.2
	if got := ore.Amount.Float64(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Expected %v ore with prestige bonus, got %v", want, got)
	}
}

func TestPrestigeResetsKeptProducerMultiplier(t *testing.T) {
	// Setup: a kept producer carrying a boosted multiplier from the last tick
	e := newTestEngine()
	ore := addOre(e)
	miner := addMiner(e, 4)
	miner.ApplyBoost(3)

	formula, _ := rules.NewPrestigeFormula("linear")
	prestige := entity.NewPrestige("ore", bignum.New(1e6), 0.1, formula)
	prestige.KeepProducers["miner"] = true
	e.SetPrestige(prestige)
	ore.Add(bignum.New(1e6))

	// Act
	if !e.PerformPrestige() {
		t.Fatalf("Expected prestige to succeed")
	}

	// Assert: the level survives, the multiplier does not
	if miner.Level != 4 {
		t.Errorf("Expected kept miner to stay at level 4, got %d", miner.Level)
	}
	if !miner.Multiplier.Eq(bignum.One()) {
		t.Errorf("Expected kept miner multiplier reset to 1, got %s", miner.Multiplier)
	}
}

func TestOfflineProgressClampsAndSkipsCrits(t *testing.T) {
	// Setup: 2/sec producer, 1 hour cap
	e := newTestEngine()
	cfg := e.Config()
	cfg.OfflineMinSeconds = 60
	cfg.OfflineLimitSeconds = 3600

	ore := addOre(e)
	addMiner(e, 1)

	// Act: short absence is ignored
	short := e.CalculateOfflineProgress(30)
	long := e.CalculateOfflineProgress(10_000)

	// Assert
	if short.SimulatedSeconds != 0 {
		t.Errorf("Expected sub-minute absence ignored, got %v", short.SimulatedSeconds)
	}
	if long.SimulatedSeconds != 3600 {
		t.Errorf("Expected absence clamped to 3600s, got %v", long.SimulatedSeconds)
	}
	if got := long.Gains["ore"].Float64(); got != 7200 {
		t.Errorf("Expected 7200 ore from offline progress, got %v", got)
	}
	if got := ore.Amount.Float64(); got != 7200 {
		t.Errorf("Expected 7200 ore banked, got %v", got)
	}
}

func TestSaveRoundTripThroughEngine(t *testing.T) {
	// Setup: a run with some progress
	e := newTestEngine()
	ore := addOre(e)
	miner := addMiner(e, 4)
	ore.Add(bignum.MustParse("2.5e30"))

	data, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Act: load into a fresh engine with the same definitions
	e2 := newTestEngine()
	ore2 := addOre(e2)
	miner2 := addMiner(e2, 0)

	res := e2.Deserialize(data)

	// Assert
	if !res.Success {
		t.Fatalf("Expected load to succeed, got %s", res.Error)
	}
	if !ore2.Amount.Eq(ore.Amount) {
		t.Errorf("Expected restored amount %s, got %s", ore.Amount, ore2.Amount)
	}
	if miner2.Level != miner.Level {
		t.Errorf("Expected restored level %d, got %d", miner.Level, miner2.Level)
	}
}
