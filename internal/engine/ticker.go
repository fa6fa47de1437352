package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
)

// heartbeatTicks is how often the loop drops a TIME_TICK marker into the
// event log. Every tick would flood it at a 100ms cadence.
const heartbeatTicks = 600

// Ticker drives the engine at a fixed cadence. It measures the real elapsed
// time between fires instead of assuming the interval, so a stalled host
// produces one long tick rather than losing time.
type Ticker struct {
	engine   *Engine
	logger   *logger.Logger
	stopChan chan struct{}
}

// NewTicker creates the game clock for an engine.
func NewTicker(e *Engine, log *logger.Logger) *Ticker {
	return &Ticker{
		engine:   e,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start begins the loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	interval := t.engine.Config().TickInterval
	t.logger.Info(fmt.Sprintf("Engine ticker started at %s cadence.", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Engine ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Engine ticker stopped manually.")
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now

			t.engine.Tick(delta)

			if n := t.engine.TickNumber(); n%heartbeatTicks == 0 {
				t.engine.emitHeartbeat(n)
			}
		}
	}
}

// Stop gracefully stops the ticker.
func (t *Ticker) Stop() {
	select {
	case <-t.stopChan:
	default:
		close(t.stopChan)
	}
}

// emitHeartbeat drops a sampled TIME_TICK marker into the ledger.
func (e *Engine) emitHeartbeat(tickNumber int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(events.EventTypeTimeTick, "SYSTEM", "", map[string]interface{}{
		"tick_number": tickNumber,
		"play_time":   e.stats.TotalPlayTime,
	})
}
