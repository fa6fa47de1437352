// Package network - bridge.go
// REST bridge for clients that do not hold a WebSocket open: state reads,
// player actions, manual saves.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/infra/cache"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
)

// Saver triggers an immediate durable save.
type Saver interface {
	SaveNow(ctx context.Context) error
}

// Bridge exposes the game over plain HTTP.
type Bridge struct {
	engine *engine.Engine
	cache  *cache.StateCache
	saver  Saver
	logger *logger.Logger
}

// NewBridge creates the REST bridge. The cache may be nil; state reads then
// always hit the engine. The saver may be nil; /api/save then reports the
// backend as unavailable.
func NewBridge(e *engine.Engine, stateCache *cache.StateCache, saver Saver, log *logger.Logger) *Bridge {
	return &Bridge{
		engine: e,
		cache:  stateCache,
		saver:  saver,
		logger: log,
	}
}

// RegisterRoutes sets up the REST API routes.
func (b *Bridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", b.HandleState)
	mux.HandleFunc("/api/rates", b.HandleRates)
	mux.HandleFunc("/api/click", b.HandleClick)
	mux.HandleFunc("/api/buy/producer", b.HandleBuyProducer)
	mux.HandleFunc("/api/buy/upgrade", b.HandleBuyUpgrade)
	mux.HandleFunc("/api/buy/click", b.HandleBuyClickPower)
	mux.HandleFunc("/api/prestige", b.HandlePrestige)
	mux.HandleFunc("/api/save", b.HandleSave)
}

// HandleState returns the full game state.
// GET /api/state
func (b *Bridge) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if b.cache != nil {
		if doc, err := b.cache.GetState(r.Context(), engine.GameID); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(doc)
			return
		}
	}

	view := b.engine.StateView()
	doc, err := json.Marshal(view)
	if err != nil {
		b.jsonError(w, "State serialization failed", http.StatusInternalServerError)
		return
	}
	if b.cache != nil {
		_ = b.cache.SetState(r.Context(), engine.GameID, doc)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

// HandleRates returns the current per-second production rates.
// GET /api/rates
func (b *Bridge) HandleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rates := b.engine.ProductionRates()
	out := make(map[string]string, len(rates))
	for id, rate := range rates {
		out[id] = rate.String()
	}
	b.jsonSuccess(w, map[string]interface{}{"rates": out})
}

// HandleClick processes manual clicks. The count field batches taps the
// client accumulated between requests.
// POST /api/click {"count": 5}
func (b *Bridge) HandleClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 100 {
		b.jsonError(w, "Click batch too large (max 100)", http.StatusBadRequest)
		return
	}

	crits := 0
	var last engine.ClickResult
	for i := 0; i < req.Count; i++ {
		last = b.engine.HandleClick()
		if last.WasCrit {
			crits++
		}
	}
	b.invalidateState(r)

	b.jsonSuccess(w, map[string]interface{}{
		"clicks":      req.Count,
		"crits":       crits,
		"last_amount": last.Amount.String(),
	})
}

// HandleBuyProducer purchases producer levels. Amount 0 buys the maximum
// affordable.
// POST /api/buy/producer {"entity_id": "miner", "amount": 10}
func (b *Bridge) HandleBuyProducer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BuyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
		b.jsonError(w, "Missing entity_id", http.StatusBadRequest)
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = b.engine.MaxAffordableProducer(req.EntityID)
		if amount == 0 {
			b.jsonError(w, "Cannot afford any levels of "+req.EntityID, http.StatusConflict)
			return
		}
	}

	if !b.engine.PurchaseProducer(req.EntityID, amount) {
		b.jsonError(w, "Purchase rejected for "+req.EntityID, http.StatusConflict)
		return
	}
	b.invalidateState(r)

	b.logger.Event("REST_PURCHASE", "PLAYER", req.EntityID+" x"+strconv.Itoa(amount))
	b.jsonSuccess(w, map[string]interface{}{
		"entity_id": req.EntityID,
		"levels":    amount,
	})
}

// HandleBuyUpgrade purchases one upgrade level.
// POST /api/buy/upgrade {"entity_id": "sharp-picks"}
func (b *Bridge) HandleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BuyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
		b.jsonError(w, "Missing entity_id", http.StatusBadRequest)
		return
	}

	if !b.engine.PurchaseUpgrade(req.EntityID) {
		b.jsonError(w, "Purchase rejected for "+req.EntityID, http.StatusConflict)
		return
	}
	b.invalidateState(r)

	b.jsonSuccess(w, map[string]interface{}{"entity_id": req.EntityID})
}

// HandleBuyClickPower levels the manual swing.
// POST /api/buy/click
func (b *Bridge) HandleBuyClickPower(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !b.engine.PurchaseClickPower() {
		b.jsonError(w, "Click power purchase rejected", http.StatusConflict)
		return
	}
	b.invalidateState(r)

	b.jsonSuccess(w, map[string]interface{}{"click": b.engine.StateView().Click})
}

// HandlePrestige performs a reset when the requirement is met.
// POST /api/prestige
func (b *Bridge) HandlePrestige(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !b.engine.PerformPrestige() {
		b.jsonError(w, "Prestige requirement not met", http.StatusConflict)
		return
	}
	b.invalidateState(r)

	view := b.engine.StateView()
	b.jsonSuccess(w, map[string]interface{}{"prestige": view.Prestige})
}

// HandleSave forces an immediate durable save.
// POST /api/save
func (b *Bridge) HandleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if b.saver == nil {
		b.jsonError(w, "No save backend configured", http.StatusServiceUnavailable)
		return
	}
	if err := b.saver.SaveNow(r.Context()); err != nil {
		b.jsonError(w, "Save failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	b.jsonSuccess(w, map[string]interface{}{"saved": true})
}

func (b *Bridge) invalidateState(r *http.Request) {
	if b.cache != nil {
		_ = b.cache.Invalidate(r.Context(), engine.GameID)
	}
}

func (b *Bridge) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

func (b *Bridge) jsonSuccess(w http.ResponseWriter, data map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	data["success"] = true
	json.NewEncoder(w).Encode(data)
}
