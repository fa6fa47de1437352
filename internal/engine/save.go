package engine

import (
	"encoding/json"
	"strconv"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/save"
)

// GameID tags save documents produced by this engine instance.
var GameID = "mina-profunda"

// Serialize captures the current run as a save document.
func (e *Engine) Serialize() ([]byte, error) {
	e.mu.Lock()
	snap := save.Capture(e.gameContext(), GameID)
	e.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.emit(events.EventTypeSave, "SYSTEM", "", nil)
	e.mu.Unlock()
	return data, nil
}

// Deserialize restores a run from a save document of any supported version.
// A failed decode leaves the current state untouched. The returned result
// carries the document's save time so the caller can grant offline progress.
func (e *Engine) Deserialize(data []byte) save.Result {
	snap, err := save.Decode(data)
	if err != nil {
		e.logger.Error("Save load failed: " + err.Error())
		return save.Result{Success: false, Error: err.Error()}
	}

	e.mu.Lock()
	ctx := e.gameContext()
	snap.Apply(ctx, e.logger)
	e.ctxGen++
	e.emit(events.EventTypeLoad, "SYSTEM", "", nil)
	e.mu.Unlock()

	e.logger.Info("Save document v" + strconv.Itoa(snap.Version) + " restored.")
	return save.Result{Success: true, SavedAt: snap.SavedAt()}
}
