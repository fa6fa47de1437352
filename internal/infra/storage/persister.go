package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NRobledoSoto/MinaProfundaIdle/server/internal/events"
)

// EventPersisterAdapter bridges the in-memory event log's write-through
// hook to an EventRepository. It satisfies events.EventPersister.
type EventPersisterAdapter struct {
	repo    EventRepository
	gameID  string
	timeout time.Duration
}

// NewEventPersisterAdapter wraps a repository for a specific run.
func NewEventPersisterAdapter(repo EventRepository, gameID string) *EventPersisterAdapter {
	return &EventPersisterAdapter{
		repo:    repo,
		gameID:  gameID,
		timeout: 5 * time.Second,
	}
}

// Append converts and stores a domain event.
func (a *EventPersisterAdapter) Append(event events.GameEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	return a.repo.Append(ctx, GameEvent{
		ID:         event.ID,
		GameID:     a.gameID,
		Timestamp:  event.Timestamp,
		EventType:  string(event.Type),
		ActorID:    event.ActorID,
		TargetID:   event.TargetID,
		Payload:    payloadToMap(event.Payload),
		TickNumber: event.TickNumber,
	})
}

var _ events.EventPersister = (*EventPersisterAdapter)(nil)

// payloadToMap normalizes any payload struct into the generic map the
// repositories store. Round-tripping through JSON keeps the field names
// aligned with the wire format.
func payloadToMap(payload interface{}) map[string]interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}
	if m, ok := payload.(map[string]interface{}); ok {
		return m
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
