// Package save turns a live run into a versioned JSON document and back.
// Only player progress travels in the document; definitions (costs, rates,
// conditions) always come from the loaded content pack.
package save

import (
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/entity"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
)

// CurrentVersion is the save document version this build writes.
const CurrentVersion = 3

// Snapshot is the serialized form of a run.
type Snapshot struct {
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds at save time
	GameID    string `json:"game_id,omitempty"`

	Resources    map[string]ResourceState    `json:"resources"`
	Producers    map[string]ProducerState    `json:"producers"`
	Upgrades     map[string]UpgradeState     `json:"upgrades"`
	Achievements map[string]AchievementState `json:"achievements"`

	ClickPower *ClickPowerState `json:"click_power,omitempty"`
	Prestige   *PrestigeState   `json:"prestige,omitempty"`
	Stats      StatsState       `json:"stats"`
}

// ResourceState is the persisted slice of a resource.
type ResourceState struct {
	Amount   bignum.Big `json:"amount"`
	Unlocked bool       `json:"unlocked"`
	Visible  bool       `json:"visible"`
}

// ProducerState is the persisted slice of a producer. Multipliers are
// deliberately absent since v3: the first tick after load rebuilds them.
type ProducerState struct {
	Level        int  `json:"level"`
	Unlocked     bool `json:"unlocked"`
	Visible      bool `json:"visible"`
	Depth        int  `json:"depth,omitempty"`
	QuantumLevel int  `json:"quantum_level,omitempty"`
}

// UpgradeState is the persisted slice of an upgrade.
type UpgradeState struct {
	Level     int  `json:"level"`
	Purchased bool `json:"purchased"`
	Unlocked  bool `json:"unlocked"`
	Visible   bool `json:"visible"`
}

// AchievementState is the persisted slice of an achievement.
type AchievementState struct {
	Completed bool    `json:"completed"`
	Progress  float64 `json:"progress"`
}

// ClickPowerState is the persisted slice of the manual click.
type ClickPowerState struct {
	Level int `json:"level"`
}

// PrestigeState is the persisted slice of the prestige tracker.
type PrestigeState struct {
	Points      bignum.Big `json:"points"`
	TotalResets int        `json:"total_resets"`
}

// StatsState mirrors entity.Stats.
type StatsState struct {
	TotalPlayTime  float64               `json:"total_play_time"`
	TotalClicks    int64                 `json:"total_clicks"`
	TotalPrestiges int64                 `json:"total_prestiges"`
	Lifetime       map[string]bignum.Big `json:"lifetime,omitempty"`
}

// Result reports the outcome of a load.
type Result struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// Capture builds a snapshot of the current run state.
func Capture(ctx *entity.Context, gameID string) *Snapshot {
	s := &Snapshot{
		Version:   CurrentVersion,
		Timestamp: time.Now().UnixMilli(),
		GameID:    gameID,

		Resources:    make(map[string]ResourceState, len(ctx.Resources)),
		Producers:    make(map[string]ProducerState, len(ctx.Producers)),
		Upgrades:     make(map[string]UpgradeState, len(ctx.Upgrades)),
		Achievements: make(map[string]AchievementState, len(ctx.Achievements)),
	}

	for id, r := range ctx.Resources {
		s.Resources[id] = ResourceState{Amount: r.Amount, Unlocked: r.Unlocked, Visible: r.Visible}
	}
	for id, p := range ctx.Producers {
		s.Producers[id] = ProducerState{
			Level:        p.Level,
			Unlocked:     p.Unlocked,
			Visible:      p.Visible,
			Depth:        p.Depth,
			QuantumLevel: p.QuantumLevel,
		}
	}
	for id, u := range ctx.Upgrades {
		s.Upgrades[id] = UpgradeState{Level: u.Level, Purchased: u.Purchased, Unlocked: u.Unlocked, Visible: u.Visible}
	}
	for id, a := range ctx.Achievements {
		s.Achievements[id] = AchievementState{Completed: a.Completed, Progress: a.Progress}
	}

	if ctx.Click != nil {
		s.ClickPower = &ClickPowerState{Level: ctx.Click.Level}
	}
	if ctx.Prestige != nil {
		s.Prestige = &PrestigeState{Points: ctx.Prestige.Points, TotalResets: ctx.Prestige.TotalResets}
	}
	if ctx.Stats != nil {
		s.Stats = StatsState{
			TotalPlayTime:  ctx.Stats.TotalPlayTime,
			TotalClicks:    ctx.Stats.TotalClicks,
			TotalPrestiges: ctx.Stats.TotalPrestiges,
			Lifetime:       cloneLifetime(ctx.Stats.Lifetime),
		}
	}
	return s
}

// Apply restores a snapshot onto live entities. Persisted state whose ID no
// longer exists in the content pack is logged and skipped; missing entries
// leave the entity at its definition defaults.
func (s *Snapshot) Apply(ctx *entity.Context, log *logger.Logger) {
	for id, rs := range s.Resources {
		r, ok := ctx.Resources[id]
		if !ok {
			warnUnknown(log, "resource", id)
			continue
		}
		r.Amount = rs.Amount
		if r.Capped {
			r.Amount = r.Amount.Min(r.MaxAmount)
		}
		r.Unlocked = rs.Unlocked
		r.Visible = rs.Visible
	}

	for id, ps := range s.Producers {
		p, ok := ctx.Producers[id]
		if !ok {
			warnUnknown(log, "producer", id)
			continue
		}
		p.Level = ps.Level
		p.Unlocked = ps.Unlocked
		p.Visible = ps.Visible
		if ps.Depth > 0 {
			p.Depth = ps.Depth
		}
		if ps.QuantumLevel > 0 {
			p.QuantumLevel = ps.QuantumLevel
		}
		p.SetMultiplier(bignum.One())
	}

	for id, us := range s.Upgrades {
		u, ok := ctx.Upgrades[id]
		if !ok {
			warnUnknown(log, "upgrade", id)
			continue
		}
		u.Level = us.Level
		u.Purchased = us.Purchased
		u.Unlocked = us.Unlocked
		u.Visible = us.Visible
	}

	for id, as := range s.Achievements {
		a, ok := ctx.Achievements[id]
		if !ok {
			warnUnknown(log, "achievement", id)
			continue
		}
		a.Completed = as.Completed
		a.Progress = as.Progress
	}

	if s.ClickPower != nil && ctx.Click != nil {
		ctx.Click.Level = s.ClickPower.Level
		if ctx.Click.Level < 1 {
			ctx.Click.Level = 1
		}
		ctx.Click.ResetMultiplier()
	}
	if s.Prestige != nil && ctx.Prestige != nil {
		ctx.Prestige.Points = s.Prestige.Points
		ctx.Prestige.TotalResets = s.Prestige.TotalResets
	}
	if ctx.Stats != nil {
		ctx.Stats.TotalPlayTime = s.Stats.TotalPlayTime
		ctx.Stats.TotalClicks = s.Stats.TotalClicks
		ctx.Stats.TotalPrestiges = s.Stats.TotalPrestiges
		ctx.Stats.Lifetime = cloneLifetime(s.Stats.Lifetime)
		if ctx.Stats.Lifetime == nil {
			ctx.Stats.Lifetime = make(map[string]bignum.Big)
		}
	}
}

// SavedAt returns the document timestamp as a time.
func (s *Snapshot) SavedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

func cloneLifetime(src map[string]bignum.Big) map[string]bignum.Big {
	if src == nil {
		return nil
	}
	dst := make(map[string]bignum.Big, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func warnUnknown(log *logger.Logger, kind, id string) {
	if log != nil {
		log.Warn("Save references unknown " + kind + " '" + id + "', skipping.")
	}
}
