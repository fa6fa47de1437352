// Package content loads game definitions from YAML. Definitions are pure
// data; this package turns them into live entities and wires them into an
// engine. Validation is fail-fast: a bad pack stops the boot, it never
// limps into a running game.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/cost"
)

// Pack is a full set of game definitions.
type Pack struct {
	Name            string `yaml:"name"`
	PrimaryResource string `yaml:"primary_resource"`

	Resources    []ResourceDef    `yaml:"resources"`
	Producers    []ProducerDef    `yaml:"producers"`
	Upgrades     []UpgradeDef     `yaml:"upgrades"`
	Achievements []AchievementDef `yaml:"achievements"`

	ClickPower *ClickPowerDef `yaml:"click_power"`
	Prestige   *PrestigeDef   `yaml:"prestige"`
}

// ResourceDef declares a currency or material.
type ResourceDef struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description,omitempty"`
	Icon          string `yaml:"icon,omitempty"`
	MaxAmount     string `yaml:"max_amount,omitempty"` // empty = uncapped
	StartLocked   bool   `yaml:"start_locked,omitempty"`
	StartVisible  bool   `yaml:"start_visible,omitempty"`
	InitialAmount string `yaml:"initial_amount,omitempty"`
}

// ProducerDef declares an automatic generator.
type ProducerDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty"`

	Variant  string `yaml:"variant,omitempty"` // standard when empty
	Tier     int    `yaml:"tier,omitempty"`
	Category string `yaml:"category,omitempty"`

	BaseCost   map[string]string `yaml:"base_cost"`
	Cost       *cost.Spec        `yaml:"cost,omitempty"`
	Production map[string]string `yaml:"production"`
	MaxLevel   int               `yaml:"max_level,omitempty"`

	// Variant tuning
	Depth          int     `yaml:"depth,omitempty"`
	DepthBonus     float64 `yaml:"depth_bonus,omitempty"`
	SynergyBonus   float64 `yaml:"synergy_bonus,omitempty"`
	QuantumLevel   int     `yaml:"quantum_level,omitempty"`
	QuantumScaling float64 `yaml:"quantum_scaling,omitempty"`
	Instability    float64 `yaml:"instability,omitempty"`

	Unlock *UnlockDef `yaml:"unlock,omitempty"`
}

// UpgradeDef declares a purchasable modifier.
type UpgradeDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty"`

	BaseCost map[string]string `yaml:"base_cost"`
	Cost     *cost.Spec        `yaml:"cost,omitempty"`
	MaxLevel int               `yaml:"max_level,omitempty"` // 1 when omitted

	Effect EffectDef  `yaml:"effect"`
	Target TargetDef  `yaml:"target"`
	Unlock *UnlockDef `yaml:"unlock,omitempty"`
}

// EffectDef is the scalar effect of an upgrade.
type EffectDef struct {
	Type  string  `yaml:"type"` // multiplier, additive, flat
	Value float64 `yaml:"value"`
}

// TargetDef routes an upgrade effect.
type TargetDef struct {
	Kind       string `yaml:"kind"`
	ProducerID string `yaml:"producer_id,omitempty"`
	Category   string `yaml:"category,omitempty"`
}

// AchievementDef declares a milestone.
type AchievementDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty"`

	Condition ConditionDef `yaml:"condition"`
	Reward    *RewardDef   `yaml:"reward,omitempty"`
}

// ConditionDef declares when an achievement completes.
type ConditionDef struct {
	Kind     string `yaml:"kind"` // resource_milestone, cumulative_production, purchase_level
	Resource string `yaml:"resource,omitempty"`
	Amount   string `yaml:"amount,omitempty"`
	Entity   string `yaml:"entity,omitempty"`
	Level    int    `yaml:"level,omitempty"`
}

// RewardDef declares what completing an achievement grants.
type RewardDef struct {
	Kind     string  `yaml:"kind"` // multiplier, resource, unlock
	Value    float64 `yaml:"value,omitempty"`
	Resource string  `yaml:"resource,omitempty"`
	Amount   string  `yaml:"amount,omitempty"`
	Target   string  `yaml:"target,omitempty"`
}

// ClickPowerDef declares the manual click.
type ClickPowerDef struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	BaseValue      string            `yaml:"base_value"`
	BaseCost       map[string]string `yaml:"base_cost,omitempty"`
	Cost           *cost.Spec        `yaml:"cost,omitempty"`
	MaxLevel       int               `yaml:"max_level,omitempty"`
	CritChance     float64           `yaml:"crit_chance,omitempty"`
	CritMultiplier float64           `yaml:"crit_multiplier,omitempty"`
}

// PrestigeDef declares the reset layer.
type PrestigeDef struct {
	Currency      string   `yaml:"currency"`
	Requirement   string   `yaml:"requirement"`
	Formula       string   `yaml:"formula,omitempty"` // linear when empty
	BonusPerPoint float64  `yaml:"bonus_per_point"`
	KeepProducers []string `yaml:"keep_producers,omitempty"`
	KeepUpgrades  []string `yaml:"keep_upgrades,omitempty"`
}

// UnlockDef declares a gate. All present clauses must hold.
type UnlockDef struct {
	Resource  string `yaml:"resource,omitempty"`
	Amount    string `yaml:"amount,omitempty"`
	Producer  string `yaml:"producer,omitempty"`
	Level     int    `yaml:"level,omitempty"`
	Prestiges int    `yaml:"prestiges,omitempty"`
}

// Load reads and validates a pack from a YAML file.
func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a pack from YAML bytes.
func Parse(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("content: parse pack: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
