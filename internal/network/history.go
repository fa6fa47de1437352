// Package network - history.go
// JSON export of the run's event ledger, plus session recaps rebuilt from
// durable storage.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/infra/storage"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
)

// HistoryHandler provides the run-history API.
type HistoryHandler struct {
	eventLog *events.EventLog
	recapper *storage.Recapper
	logger   *logger.Logger
}

// NewHistoryHandler creates the history API. The recapper may be nil when
// no durable event store is configured; the recap endpoint then 503s.
func NewHistoryHandler(el *events.EventLog, recapper *storage.Recapper, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		eventLog: el,
		recapper: recapper,
		logger:   log,
	}
}

// HistoryEvent is the public shape of a ledger event.
type HistoryEvent struct {
	ID         string      `json:"id"`
	Timestamp  string      `json:"timestamp"`
	TickNumber int64       `json:"tick_number"`
	Type       string      `json:"type"`
	ActorID    string      `json:"actor_id"`
	TargetID   string      `json:"target_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
}

// HistoryResponse is the API response for the event list.
type HistoryResponse struct {
	TotalEvents int            `json:"total_events"`
	FilteredBy  string         `json:"filtered_by,omitempty"`
	GeneratedAt string         `json:"generated_at"`
	Events      []HistoryEvent `json:"events"`
}

// HandleEvents returns the ledger, newest last.
// GET /api/history/events?type=PURCHASE&since=2026-08-30T12:00:00Z&limit=100
func (hh *HistoryHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.URL.Query().Get("type")
	sinceStr := r.URL.Query().Get("since")
	limitStr := r.URL.Query().Get("limit")

	var since time.Time
	if sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			hh.jsonError(w, "Bad since timestamp, want RFC3339", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	limit := 0
	if limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	all := hh.eventLog.Replay()
	filterDesc := ""

	var out []HistoryEvent
	for _, e := range all {
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		if eventType != "" {
			filterDesc = "type=" + eventType
		}
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		out = append(out, HistoryEvent{
			ID:         e.ID,
			Timestamp:  e.Timestamp.Format(time.RFC3339),
			TickNumber: e.TickNumber,
			Type:       string(e.Type),
			ActorID:    e.ActorID,
			TargetID:   e.TargetID,
			Payload:    e.Payload,
		})
	}

	// Newest events are the interesting ones; the limit trims the front.
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}

	response := HistoryResponse{
		TotalEvents: len(out),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      out,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleStats returns aggregate counts over the ledger.
// GET /api/history/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := hh.eventLog.Replay()

	stats := map[string]int{
		"total_events": len(all),
		"purchases":    0,
		"upgrades":     0,
		"unlocks":      0,
		"achievements": 0,
		"prestiges":    0,
	}

	for _, e := range all {
		switch e.Type {
		case events.EventTypePurchase:
			stats["purchases"]++
		case events.EventTypeUpgradePurchase:
			stats["upgrades"]++
		case events.EventTypeUnlock:
			stats["unlocks"]++
		case events.EventTypeAchievementComplete:
			stats["achievements"]++
		case events.EventTypePrestige:
			stats["prestiges"]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// HandleRecap returns a human-readable summary of what happened since a
// point in time, rebuilt from the durable event store.
// GET /api/history/recap?since=2026-08-30T12:00:00Z
func (hh *HistoryHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if hh.recapper == nil {
		hh.jsonError(w, "No durable event store configured", http.StatusServiceUnavailable)
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			hh.jsonError(w, "Bad since timestamp, want RFC3339", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	recap, err := hh.recapper.GenerateRecap(r.Context(), engine.GameID, since)
	if err != nil {
		hh.logger.Error("Recap generation failed: " + err.Error())
		hh.jsonError(w, "Recap generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recap)
}

// RegisterRoutes sets up the history API routes.
func (hh *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history/events", hh.HandleEvents)
	mux.HandleFunc("/api/history/stats", hh.HandleStats)
	mux.HandleFunc("/api/history/recap", hh.HandleRecap)
}

func (hh *HistoryHandler) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
