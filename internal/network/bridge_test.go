package network

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/content"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/engine"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/infra/cache"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/logger"
	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/platform/optimization"
)

func newTestServer(t *testing.T) (*engine.Engine, *http.ServeMux) {
	t.Helper()

	log := logger.NewLogger()
	e := engine.NewEngine(events.NewEventLog(nil), log, optimization.LowResourceConfig())
	e.SetRNG(func() float64 { return 0.99 }) // never crit

	if err := content.DefaultPack().Install(e); err != nil {
		t.Fatalf("Pack installation failed: %v", err)
	}

	bridge := NewBridge(e, cache.NewStateCache(cache.NewMemoryClient()), nil, log)
	history := NewHistoryHandler(e.GetEventLog(), nil, log)

	mux := http.NewServeMux()
	bridge.RegisterRoutes(mux)
	history.RegisterRoutes(mux)
	return e, mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, mux *http.ServeMux, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("Failed to decode %s response: %v", path, err)
		}
	}
	return rec
}

func TestStateEndpointReturnsSnapshot(t *testing.T) {
	// Setup
	_, mux := newTestServer(t)

	// Act: fetch the initial state
	var view engine.StateView
	rec := getJSON(t, mux, "/api/state", &view)

	// Assert: full pack content is visible
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if len(view.Resources) != 3 {
		t.Errorf("Expected 3 resources in state, got %d", len(view.Resources))
	}
	if len(view.Producers) != 5 {
		t.Errorf("Expected 5 producers in state, got %d", len(view.Producers))
	}
	if view.Click == nil {
		t.Error("Expected click power in state view")
	}
}

func TestClickEndpointEarnsPrimaryResource(t *testing.T) {
	// Setup
	e, mux := newTestServer(t)

	// Act: five batched clicks
	rec := postJSON(t, mux, "/api/click", map[string]int{"count": 5})

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := e.StateView()
	if view.Stats.TotalClicks != 5 {
		t.Errorf("Expected 5 recorded clicks, got %d", view.Stats.TotalClicks)
	}
}

func TestClickEndpointRejectsOversizedBatch(t *testing.T) {
	// Setup
	_, mux := newTestServer(t)

	// Act
	rec := postJSON(t, mux, "/api/click", map[string]int{"count": 5000})

	// Assert
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized batch, got %d", rec.Code)
	}
}

func TestBuyProducerEndpoint(t *testing.T) {
	// Setup: enough clicks to afford one miner (10 ore at 1 per click)
	e, mux := newTestServer(t)
	for i := 0; i < 20; i++ {
		e.HandleClick()
	}

	// Act
	rec := postJSON(t, mux, "/api/buy/producer", BuyPayload{EntityID: "miner", Amount: 1})

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := e.StateView()
	miner := view.Producers[0]
	if miner.ID != "miner" || miner.Level != 1 {
		t.Errorf("Expected miner at level 1, got %s level %d", miner.ID, miner.Level)
	}
}

func TestBuyProducerRejectsUnaffordable(t *testing.T) {
	// Setup: no clicks, no ore
	_, mux := newTestServer(t)

	// Act
	rec := postJSON(t, mux, "/api/buy/producer", BuyPayload{EntityID: "miner", Amount: 1})

	// Assert
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for unaffordable purchase, got %d", rec.Code)
	}
}

func TestBuyClickPowerEndpoint(t *testing.T) {
	// Setup: pickaxe level 2 costs 25 * 1.5 = 37.5 ore
	e, mux := newTestServer(t)

	// Act: broke
	rec := postJSON(t, mux, "/api/buy/click", nil)

	// Assert
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for unaffordable click upgrade, got %d", rec.Code)
	}

	// Act: funded
	for i := 0; i < 60; i++ {
		e.HandleClick()
	}
	rec = postJSON(t, mux, "/api/buy/click", nil)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := e.StateView()
	if view.Click == nil || view.Click.Level != 2 {
		t.Errorf("Expected pickaxe at level 2 after purchase, got %+v", view.Click)
	}
}

func TestPrestigeEndpointRejectsBelowRequirement(t *testing.T) {
	// Setup
	_, mux := newTestServer(t)

	// Act
	rec := postJSON(t, mux, "/api/prestige", nil)

	// Assert
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 before the prestige requirement, got %d", rec.Code)
	}
}

func TestSaveEndpointWithoutBackend(t *testing.T) {
	// Setup: bridge constructed with a nil saver
	_, mux := newTestServer(t)

	// Act
	rec := postJSON(t, mux, "/api/save", nil)

	// Assert
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a save backend, got %d", rec.Code)
	}
}

func TestActionEndpointsRejectGET(t *testing.T) {
	// Setup
	_, mux := newTestServer(t)

	for _, path := range []string{"/api/click", "/api/buy/producer", "/api/buy/upgrade", "/api/buy/click", "/api/prestige", "/api/save"} {
		// Act
		rec := getJSON(t, mux, path, nil)

		// Assert
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405 for GET %s, got %d", path, rec.Code)
		}
	}
}

func TestHistoryEventsAndStats(t *testing.T) {
	// Setup: a purchase leaves PURCHASE and UNLOCK entries in the ledger
	e, mux := newTestServer(t)
	for i := 0; i < 20; i++ {
		e.HandleClick()
	}
	if !e.PurchaseProducer("miner", 1) {
		t.Fatal("Miner purchase should succeed after 20 clicks")
	}

	// Act: filtered event list
	var history HistoryResponse
	rec := getJSON(t, mux, "/api/history/events?type=PURCHASE", &history)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if history.TotalEvents != 1 {
		t.Errorf("Expected 1 purchase event, got %d", history.TotalEvents)
	}

	// Act: aggregate stats
	var stats struct {
		Stats map[string]int `json:"stats"`
	}
	getJSON(t, mux, "/api/history/stats", &stats)

	// Assert
	if stats.Stats["purchases"] != 1 {
		t.Errorf("Expected 1 purchase in stats, got %d", stats.Stats["purchases"])
	}
}

func TestHistoryRecapWithoutStore(t *testing.T) {
	// Setup
	_, mux := newTestServer(t)

	// Act
	rec := getJSON(t, mux, "/api/history/recap?since="+time.Now().Add(-time.Hour).Format(time.RFC3339), nil)

	// Assert
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a durable event store, got %d", rec.Code)
	}
}

func TestStateCacheInvalidationOnAction(t *testing.T) {
	// Setup: prime the cache with the initial state
	e, mux := newTestServer(t)
	var before engine.StateView
	getJSON(t, mux, "/api/state", &before)

	for i := 0; i < 20; i++ {
		e.HandleClick()
	}

	// Act: a purchase through the bridge must drop the cached snapshot
	postJSON(t, mux, "/api/buy/producer", BuyPayload{EntityID: "miner", Amount: 1})
	var after engine.StateView
	getJSON(t, mux, "/api/state", &after)

	// Assert
	if after.Producers[0].Level != 1 {
		t.Errorf("Expected fresh state after purchase, got miner level %d", after.Producers[0].Level)
	}
}
