package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.GameID, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, string(payloadBytes), event.TickNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.GameID, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &payloadStr, &e.TickNumber,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const eventColumns = `id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number`

func (r *SQLiteEventRepository) GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE game_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE game_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, eventType)
}

func (r *SQLiteEventRepository) GetSince(ctx context.Context, gameID string, since time.Time) ([]GameEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE game_id = ? AND timestamp >= ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, since)
}

var _ EventRepository = (*SQLiteEventRepository)(nil)

// ---------------------------------------------------------
// SQLiteSaveRepository
// ---------------------------------------------------------

// SQLiteSaveRepository implements SaveRepository for SQLite.
type SQLiteSaveRepository struct {
	db     *sql.DB
	gameID string
}

func NewSQLiteSaveRepository(db *sql.DB, gameID string) *SQLiteSaveRepository {
	return &SQLiteSaveRepository{db: db, gameID: gameID}
}

func (r *SQLiteSaveRepository) Persist(ctx context.Context, data []byte, savedAt time.Time) error {
	query := `INSERT INTO saves (game_id, saved_at, document) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, r.gameID, savedAt, string(data))
	if err != nil {
		return fmt.Errorf("failed to persist save: %w", err)
	}
	return nil
}

func (r *SQLiteSaveRepository) Latest(ctx context.Context) (*SaveRecord, error) {
	query := `SELECT id, game_id, saved_at, document FROM saves WHERE game_id = ? ORDER BY saved_at DESC, id DESC LIMIT 1`
	var rec SaveRecord
	var doc string
	err := r.db.QueryRowContext(ctx, query, r.gameID).Scan(&rec.ID, &rec.GameID, &rec.SavedAt, &doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.Document = []byte(doc)
	return &rec, nil
}

func (r *SQLiteSaveRepository) History(ctx context.Context, limit int) ([]SaveRecord, error) {
	query := `SELECT id, game_id, saved_at, document FROM saves WHERE game_id = ? ORDER BY saved_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, r.gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SaveRecord
	for rows.Next() {
		var rec SaveRecord
		var doc string
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.SavedAt, &doc); err != nil {
			return nil, err
		}
		rec.Document = []byte(doc)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteSaveRepository) Prune(ctx context.Context, keep int) error {
	query := `
		DELETE FROM saves WHERE game_id = ? AND id NOT IN (
			SELECT id FROM saves WHERE game_id = ? ORDER BY saved_at DESC, id DESC LIMIT ?
		)
	`
	_, err := r.db.ExecContext(ctx, query, r.gameID, r.gameID, keep)
	return err
}

var _ SaveRepository = (*SQLiteSaveRepository)(nil)
