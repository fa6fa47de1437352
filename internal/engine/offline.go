package engine

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/rules"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
)

// OfflineReport summarizes what happened while the player was away.
type OfflineReport struct {
	TimeAwaySeconds  float64               `json:"time_away_seconds"`
	SimulatedSeconds float64               `json:"simulated_seconds"`
	CapSeconds       float64               `json:"cap_seconds"`
	Gains            map[string]bignum.Big `json:"gains"`
}

// CalculateOfflineProgress grants production for a real-time absence in one
// closed-form step: total rate at the restored multipliers times the clamped
// duration. No crit rolls happen and no achievements complete here; the
// first live tick picks those up.
func (e *Engine) CalculateOfflineProgress(timeAwaySeconds float64) OfflineReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := OfflineReport{
		TimeAwaySeconds: timeAwaySeconds,
		CapSeconds:      e.cfg.OfflineLimitSeconds,
		Gains:           make(map[string]bignum.Big),
	}

	simulated := rules.ClampOfflineSeconds(timeAwaySeconds, e.cfg.OfflineMinSeconds, e.cfg.OfflineLimitSeconds)
	report.SimulatedSeconds = simulated
	if simulated == 0 {
		return report
	}

	ctx := e.gameContext()

	// Rebuild multipliers once so a fresh load does not produce at the
	// neutral defaults.
	e.multiplierPass(ctx)

	for resID, rate := range e.totalRate(ctx) {
		r, ok := ctx.Resources[resID]
		if !ok {
			continue
		}
		added := r.Add(rate.MulF(simulated))
		if added.IsZero() {
			continue
		}
		report.Gains[resID] = added
		ctx.Stats.RecordProduction(resID, added)
	}

	e.emit(events.EventTypeOfflineProgress, "SYSTEM", "", events.OfflinePayload{
		TimeAwaySeconds:  timeAwaySeconds,
		SimulatedSeconds: simulated,
	})
	now := time.Now()
	e.logger.Info(fmt.Sprintf("Offline progress: away %s, simulated %s.",
		humanize.RelTime(now.Add(-time.Duration(timeAwaySeconds*float64(time.Second))), now, "", ""),
		humanize.RelTime(now.Add(-time.Duration(simulated*float64(time.Second))), now, "", "")))

	return report
}
