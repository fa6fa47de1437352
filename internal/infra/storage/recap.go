// Package storage - recap.go
// Session recap: a human-readable digest of what happened in a run,
// rebuilt from the event ledger. Shown when a player returns.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Recapper builds session recaps from the event ledger.
type Recapper struct {
	eventRepo EventRepository
}

// NewRecapper creates a recap builder over an event repository.
func NewRecapper(eventRepo EventRepository) *Recapper {
	return &Recapper{eventRepo: eventRepo}
}

// RecapEntry is one line of the recap screen.
type RecapEntry struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"`
}

// SessionRecap aggregates a stretch of play into headline numbers plus a
// chronological feed.
type SessionRecap struct {
	Since        string       `json:"since"`
	Purchases    int          `json:"purchases"`
	Upgrades     int          `json:"upgrades"`
	Unlocks      int          `json:"unlocks"`
	Achievements int          `json:"achievements"`
	Prestiges    int          `json:"prestiges"`
	Entries      []RecapEntry `json:"entries"`
}

// GenerateRecap digests everything since the given time.
func (r *Recapper) GenerateRecap(ctx context.Context, gameID string, since time.Time) (*SessionRecap, error) {
	events, err := r.eventRepo.GetSince(ctx, gameID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for recap: %w", err)
	}

	recap := &SessionRecap{
		Since:   humanize.Time(since),
		Entries: make([]RecapEntry, 0, len(events)),
	}

	for _, e := range events {
		summary := r.summarizeEvent(e)
		if summary == "" {
			continue // heartbeat noise
		}

		switch e.EventType {
		case "PURCHASE":
			recap.Purchases++
		case "UPGRADE_PURCHASE":
			recap.Upgrades++
		case "UNLOCK":
			recap.Unlocks++
		case "ACHIEVEMENT_COMPLETE":
			recap.Achievements++
		case "PRESTIGE":
			recap.Prestiges++
		}

		recap.Entries = append(recap.Entries, RecapEntry{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			EventType: e.EventType,
			Summary:   summary,
		})
	}

	return recap, nil
}

// summarizeEvent creates a human-readable line. An empty string drops the
// event from the recap.
func (r *Recapper) summarizeEvent(e GameEvent) string {
	switch e.EventType {
	case "PURCHASE":
		if levels, ok := e.Payload["levels"].(float64); ok && levels > 1 {
			return fmt.Sprintf("Bought %d levels of %s.", int(levels), e.TargetID)
		}
		return fmt.Sprintf("Bought %s.", e.TargetID)
	case "UPGRADE_PURCHASE":
		return fmt.Sprintf("Picked up the %s upgrade.", e.TargetID)
	case "UNLOCK":
		return fmt.Sprintf("Unlocked %s.", e.TargetID)
	case "ACHIEVEMENT_COMPLETE":
		return fmt.Sprintf("Earned the %s achievement.", e.TargetID)
	case "PRESTIGE":
		if points, ok := e.Payload["points_gained"].(string); ok {
			return fmt.Sprintf("Descended deeper for %s legacy shards.", points)
		}
		return "Descended deeper into the mine."
	case "OFFLINE_PROGRESS":
		if secs, ok := e.Payload["simulated_seconds"].(float64); ok {
			now := time.Now()
			return fmt.Sprintf("The mine kept working for %s while you were away.",
				humanize.RelTime(now.Add(-time.Duration(secs)*time.Second), now, "", ""))
		}
		return "The mine kept working while you were away."
	case "CLICK_BATCH":
		if total, ok := e.Payload["total_clicks"].(float64); ok {
			return fmt.Sprintf("Swung the pickaxe %s times in total.", humanize.Comma(int64(total)))
		}
		return ""
	default:
		return ""
	}
}
