// Package events provides the append-only ledger of everything that happens
// in a run: purchases, clicks, prestiges, unlocks, achievements. The live
// engine does not replay it to rebuild state (saves do that); the ws
// broadcast poller, the history API and the session recap read it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeTimeTick            EventType = "TIME_TICK" // periodic heartbeat, sampled, not every engine tick
	EventTypeClickBatch          EventType = "CLICK_BATCH"
	EventTypePurchase            EventType = "PURCHASE"
	EventTypeUpgradePurchase     EventType = "UPGRADE_PURCHASE"
	EventTypeUnlock              EventType = "UNLOCK"
	EventTypeAchievementComplete EventType = "ACHIEVEMENT_COMPLETE"
	EventTypePrestige            EventType = "PRESTIGE"
	EventTypeOfflineProgress     EventType = "OFFLINE_PROGRESS"
	EventTypeSave                EventType = "SAVE"
	EventTypeLoad                EventType = "LOAD"
)

// GameEvent is an immutable record of something that happened in the mine.
type GameEvent struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Type       EventType   `json:"type"`
	ActorID    string      `json:"actor_id"`  // "PLAYER" or "SYSTEM"
	TargetID   string      `json:"target_id"` // entity affected (optional)
	Payload    interface{} `json:"payload"`   // event-specific data
	TickNumber int64       `json:"tick_number"`
}

// PurchasePayload records a producer or upgrade buy.
type PurchasePayload struct {
	EntityID string `json:"entity_id"`
	Levels   int    `json:"levels"`
	NewLevel int    `json:"new_level"`
}

// PrestigePayload records a reset.
type PrestigePayload struct {
	PointsGained string `json:"points_gained"` // decimal string
	TotalPoints  string `json:"total_points"`
	TotalResets  int    `json:"total_resets"`
}

// OfflinePayload records an offline-progress simulation.
type OfflinePayload struct {
	TimeAwaySeconds  float64 `json:"time_away_seconds"`
	SimulatedSeconds float64 `json:"simulated_seconds"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log. Durable storage happens through
// the optional persister (SQLite or Postgres behind the interface).
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage off the caller's path.
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetSince returns all events at or after the given time.
func (el *EventLog) GetSince(since time.Time) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if !e.Timestamp.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Len returns the current number of events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
