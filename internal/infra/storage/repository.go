// Package storage provides the persistence layer for the mine server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// GameEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GameEvent struct {
	ID         string                 `json:"id" db:"id"`
	GameID     string                 `json:"game_id" db:"game_id"`
	Timestamp  time.Time              `json:"timestamp" db:"timestamp"`
	EventType  string                 `json:"event_type" db:"event_type"`
	ActorID    string                 `json:"actor_id" db:"actor_id"`
	TargetID   string                 `json:"target_id" db:"target_id"`
	Payload    map[string]interface{} `json:"payload" db:"payload"`
	TickNumber int64                  `json:"tick_number" db:"tick_number"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetByGameID retrieves all events for a run, oldest first.
	GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error)

	// GetSince retrieves events at or after a timestamp.
	GetSince(ctx context.Context, gameID string, since time.Time) ([]GameEvent, error)
}

// SaveRecord is one persisted save document.
type SaveRecord struct {
	ID       int64     `json:"id" db:"id"`
	GameID   string    `json:"game_id" db:"game_id"`
	SavedAt  time.Time `json:"saved_at" db:"saved_at"`
	Document []byte    `json:"document" db:"document"`
}

// SaveRepository defines the interface for save document persistence.
// Saves are append-only; Latest wins, older rows are the rollback history.
type SaveRepository interface {
	// Persist stores a new save document.
	Persist(ctx context.Context, data []byte, savedAt time.Time) error

	// Latest returns the most recent save, or nil when none exists.
	Latest(ctx context.Context) (*SaveRecord, error)

	// History returns up to limit saves, newest first.
	History(ctx context.Context, limit int) ([]SaveRecord, error)

	// Prune deletes all but the newest keep documents.
	Prune(ctx context.Context, keep int) error
}
