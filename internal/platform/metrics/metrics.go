// Package metrics provides observability for the mine server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Economy metrics
	ClicksProcessed    int64
	ProducersPurchased int64
	UpgradesPurchased  int64
	PrestigesPerformed int64
	AchievementsEarned int64

	// Save metrics
	SavesWritten    int64
	SaveWriteLatSum int64
	SaveWriteLatMax int64
	SaveWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordClicks records processed manual clicks.
func (c *Collector) RecordClicks(count int64) {
	atomic.AddInt64(&c.ClicksProcessed, count)
}

// RecordPurchase records a producer or upgrade purchase.
func (c *Collector) RecordPurchase(upgrade bool) {
	if upgrade {
		atomic.AddInt64(&c.UpgradesPurchased, 1)
	} else {
		atomic.AddInt64(&c.ProducersPurchased, 1)
	}
}

// RecordPrestige records a completed prestige reset.
func (c *Collector) RecordPrestige() {
	atomic.AddInt64(&c.PrestigesPerformed, 1)
}

// RecordAchievement records a completed achievement.
func (c *Collector) RecordAchievement() {
	atomic.AddInt64(&c.AchievementsEarned, 1)
}

// RecordSaveWrite records a save document write to the database.
func (c *Collector) RecordSaveWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.SavesWritten, 1)
	atomic.AddInt64(&c.SaveWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.SaveWriteLatMax) {
		atomic.StoreInt64(&c.SaveWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.SaveWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	savesWritten := atomic.LoadInt64(&c.SavesWritten)

	// Calculate averages
	var tickAvg, saveAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if savesWritten > 0 {
		saveAvg = float64(atomic.LoadInt64(&c.SaveWriteLatSum)) / float64(savesWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"economy": map[string]interface{}{
			"clicks":       atomic.LoadInt64(&c.ClicksProcessed),
			"producers":    atomic.LoadInt64(&c.ProducersPurchased),
			"upgrades":     atomic.LoadInt64(&c.UpgradesPurchased),
			"prestiges":    atomic.LoadInt64(&c.PrestigesPerformed),
			"achievements": atomic.LoadInt64(&c.AchievementsEarned),
		},

		"saves": map[string]interface{}{
			"written":          savesWritten,
			"avg_write_lat_ms": saveAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.SaveWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.SaveWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		// Tick metrics
		fmt.Fprintf(w, "# HELP mina_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE mina_tick_count counter\n")
		fmt.Fprintf(w, "mina_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP mina_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE mina_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "mina_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		// Economy metrics
		fmt.Fprintf(w, "# HELP mina_clicks_processed Total manual clicks processed\n")
		fmt.Fprintf(w, "# TYPE mina_clicks_processed counter\n")
		fmt.Fprintf(w, "mina_clicks_processed %d\n\n", atomic.LoadInt64(&c.ClicksProcessed))

		fmt.Fprintf(w, "# HELP mina_purchases_total Total purchases\n")
		fmt.Fprintf(w, "# TYPE mina_purchases_total counter\n")
		fmt.Fprintf(w, "mina_purchases_total{kind=\"producer\"} %d\n", atomic.LoadInt64(&c.ProducersPurchased))
		fmt.Fprintf(w, "mina_purchases_total{kind=\"upgrade\"} %d\n\n", atomic.LoadInt64(&c.UpgradesPurchased))

		fmt.Fprintf(w, "# HELP mina_prestiges_performed Total prestige resets\n")
		fmt.Fprintf(w, "# TYPE mina_prestiges_performed counter\n")
		fmt.Fprintf(w, "mina_prestiges_performed %d\n\n", atomic.LoadInt64(&c.PrestigesPerformed))

		fmt.Fprintf(w, "# HELP mina_achievements_earned Total achievements completed\n")
		fmt.Fprintf(w, "# TYPE mina_achievements_earned counter\n")
		fmt.Fprintf(w, "mina_achievements_earned %d\n\n", atomic.LoadInt64(&c.AchievementsEarned))

		// Save metrics
		fmt.Fprintf(w, "# HELP mina_saves_written Total save documents written\n")
		fmt.Fprintf(w, "# TYPE mina_saves_written counter\n")
		fmt.Fprintf(w, "mina_saves_written %d\n\n", atomic.LoadInt64(&c.SavesWritten))

		fmt.Fprintf(w, "# HELP mina_save_write_errors Total save write errors\n")
		fmt.Fprintf(w, "# TYPE mina_save_write_errors counter\n")
		fmt.Fprintf(w, "mina_save_write_errors %d\n\n", atomic.LoadInt64(&c.SaveWriteErrors))

		// WebSocket metrics
		fmt.Fprintf(w, "# HELP mina_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE mina_ws_connections gauge\n")
		fmt.Fprintf(w, "mina_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP mina_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE mina_ws_messages_total counter\n")
		fmt.Fprintf(w, "mina_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "mina_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
