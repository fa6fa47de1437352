package save

import (
	"context"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/metrics"
)

// Serializer produces the current save document. The engine implements it.
type Serializer interface {
	Serialize() ([]byte, error)
}

// Store durably persists a save document. The storage repositories
// implement it.
type Store interface {
	Persist(ctx context.Context, data []byte, savedAt time.Time) error
}

// Autosaver periodically captures and persists the run in the background.
type Autosaver struct {
	src      Serializer
	store    Store
	interval time.Duration
	logger   *logger.Logger
	stopChan chan struct{}
}

// NewAutosaver wires a serializer to a store at the given cadence.
func NewAutosaver(src Serializer, store Store, interval time.Duration, log *logger.Logger) *Autosaver {
	return &Autosaver{
		src:      src,
		store:    store,
		interval: interval,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start begins the autosave loop. Call in a goroutine. A final save is
// attempted on shutdown so progress since the last interval survives.
func (a *Autosaver) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.flush(context.Background())
			a.logger.Info("Autosaver stopped by context.")
			return
		case <-a.stopChan:
			a.flush(context.Background())
			a.logger.Info("Autosaver stopped manually.")
			return
		case <-ticker.C:
			a.flush(ctx)
		}
	}
}

// Stop halts the loop after one last save.
func (a *Autosaver) Stop() {
	select {
	case <-a.stopChan:
	default:
		close(a.stopChan)
	}
}

// SaveNow performs an immediate save outside the normal cadence.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	return a.flush(ctx)
}

func (a *Autosaver) flush(ctx context.Context) error {
	data, err := a.src.Serialize()
	if err != nil {
		a.logger.Error("Autosave capture failed: " + err.Error())
		metrics.Get().RecordSaveWrite(0, err)
		return err
	}

	start := time.Now()
	err = a.store.Persist(ctx, data, start)
	metrics.Get().RecordSaveWrite(time.Since(start), err)
	if err != nil {
		a.logger.Error("Autosave write failed: " + err.Error())
		return err
	}
	return nil
}
