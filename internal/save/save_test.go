package save

import (
	"strings"
	"testing"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
)

func newTestContext() *entity.Context {
	ore := entity.NewResource("ore", "Ore")
	miner := &entity.Producer{
		Purchasable: entity.Purchasable{
			Entity: entity.Entity{ID: "miner", Name: "Miner"},
		},
		BaseProduction: map[string]bignum.Big{"ore": bignum.New(1)},
		Multiplier:     bignum.One(),
	}
	upgrade := &entity.Upgrade{
		Purchasable: entity.Purchasable{
			Entity:   entity.Entity{ID: "picks", Name: "Picks"},
			MaxLevel: 1,
		},
		EffectType:  entity.EffectMultiplier,
		EffectValue: 2,
		Target:      entity.Target{Kind: entity.TargetAllProducers},
	}
	ach := &entity.Achievement{
		Entity:    entity.Entity{ID: "first", Name: "First"},
		Condition: entity.ResourceMilestone{ResourceID: "ore", Threshold: bignum.New(10)},
	}

	return &entity.Context{
		Resources:        map[string]*entity.Resource{"ore": ore},
		ResourceOrder:    []string{"ore"},
		Producers:        map[string]*entity.Producer{"miner": miner},
		ProducerOrder:    []string{"miner"},
		Upgrades:         map[string]*entity.Upgrade{"picks": upgrade},
		UpgradeOrder:     []string{"picks"},
		Achievements:     map[string]*entity.Achievement{"first": ach},
		AchievementOrder: []string{"first"},
		Click:            entity.NewClickPower("pickaxe", "Pickaxe", bignum.New(1)),
		Stats:            entity.NewStats(),
	}
}

func TestCaptureApplyRoundTrip(t *testing.T) {
	// Setup
	ctx := newTestContext()
	ctx.Resources["ore"].Add(bignum.MustParse("1.25e42"))
	ctx.Producers["miner"].Level = 7
	ctx.Producers["miner"].Unlock()
	ctx.Upgrades["picks"].Level = 1
	ctx.Upgrades["picks"].Purchased = true
	ctx.Achievements["first"].Completed = true
	ctx.Achievements["first"].Progress = 1
	ctx.Click.Level = 3
	ctx.Stats.TotalClicks = 42
	ctx.Stats.RecordProduction("ore", bignum.New(5000))

	// Act
	snap := Capture(ctx, "test")
	fresh := newTestContext()
	snap.Apply(fresh, logger.NewLogger())

	// Assert
	if !fresh.Resources["ore"].Amount.Eq(ctx.Resources["ore"].Amount) {
		t.Errorf("Expected ore %s, got %s", ctx.Resources["ore"].Amount, fresh.Resources["ore"].Amount)
	}
	if fresh.Producers["miner"].Level != 7 || !fresh.Producers["miner"].Unlocked {
		t.Errorf("Expected miner level 7 unlocked, got level %d", fresh.Producers["miner"].Level)
	}
	if !fresh.Upgrades["picks"].Purchased {
		t.Errorf("Expected picks purchased after restore")
	}
	if !fresh.Achievements["first"].Completed {
		t.Errorf("Expected achievement completed after restore")
	}
	if fresh.Click.Level != 3 {
		t.Errorf("Expected click level 3, got %d", fresh.Click.Level)
	}
	if fresh.Stats.TotalClicks != 42 {
		t.Errorf("Expected 42 clicks, got %d", fresh.Stats.TotalClicks)
	}
	if got := fresh.Stats.LifetimeProduced("ore").Float64(); got != 5000 {
		t.Errorf("Expected lifetime production 5000, got %v", got)
	}
}

func TestApplySkipsUnknownIDs(t *testing.T) {
	// Setup: a document referencing an entity the pack no longer defines
	ctx := newTestContext()
	snap := Capture(ctx, "test")
	snap.Producers["retired-machine"] = ProducerState{Level: 99}
	snap.Resources["old-gem"] = ResourceState{Amount: bignum.New(123)}

	// Act
	fresh := newTestContext()
	snap.Apply(fresh, logger.NewLogger())

	// Assert: known entities restored, unknown entries ignored
	if _, ok := fresh.Producers["retired-machine"]; ok {
		t.Errorf("Expected no producer materialized for unknown ID")
	}
	if fresh.Producers["miner"].Level != 0 {
		t.Errorf("Expected miner untouched at level 0, got %d", fresh.Producers["miner"].Level)
	}
}

func TestDecodeMigratesV1Numbers(t *testing.T) {
	// Setup: v1 stored amounts and points as bare JSON numbers
	doc := `{
		"version": 1,
		"timestamp": 1700000000,
		"resources": {"ore": {"amount": 12500, "unlocked": true, "visible": true}},
		"producers": {"miner": {"level": 2, "unlocked": true, "visible": true}},
		"upgrades": {},
		"achievements": {},
		"prestige": {"points": 4, "total_resets": 1},
		"stats": {"total_play_time": 60, "total_clicks": 9, "lifetime": {"ore": 99000}}
	}`

	// Act
	snap, err := Decode([]byte(doc))

	// Assert
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if snap.Version != CurrentVersion {
		t.Errorf("Expected version %d after migration, got %d", CurrentVersion, snap.Version)
	}
	if got := snap.Resources["ore"].Amount.Float64(); got != 12500 {
		t.Errorf("Expected 12500 ore, got %v", got)
	}
	if got := snap.Prestige.Points.Float64(); got != 4 {
		t.Errorf("Expected 4 prestige points, got %v", got)
	}
	if got := snap.Stats.Lifetime["ore"].Float64(); got != 99000 {
		t.Errorf("Expected 99000 lifetime ore, got %v", got)
	}
}

func TestDecodeMigratesV2Multipliers(t *testing.T) {
	// Setup: v2 still persisted producer multipliers
	doc := `{
		"version": 2,
		"timestamp": 1700000000,
		"resources": {"ore": {"amount": "3.5e12", "unlocked": true, "visible": true}},
		"producers": {"miner": {"level": 5, "unlocked": true, "visible": true, "production_multiplier": "8"}},
		"upgrades": {},
		"achievements": {},
		"stats": {}
	}`

	// Act
	snap, err := Decode([]byte(doc))

	// Assert: the stale multiplier is gone, everything else survives
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if snap.Producers["miner"].Level != 5 {
		t.Errorf("Expected miner level 5, got %d", snap.Producers["miner"].Level)
	}
	if got := snap.Resources["ore"].Amount; !got.Eq(bignum.MustParse("3.5e12")) {
		t.Errorf("Expected 3.5e12 ore, got %s", got)
	}
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	// Act / Assert: future version
	if _, err := Decode([]byte(`{"version": 99}`)); err == nil {
		t.Errorf("Expected error for future version")
	} else if !strings.Contains(err.Error(), "newer") {
		t.Errorf("Expected version error, got %v", err)
	}

	// Act / Assert: missing version
	if _, err := Decode([]byte(`{"resources": {}}`)); err == nil {
		t.Errorf("Expected error for missing version")
	}

	// Act / Assert: not JSON
	if _, err := Decode([]byte(`garbage`)); err == nil {
		t.Errorf("Expected error for malformed document")
	}
}
