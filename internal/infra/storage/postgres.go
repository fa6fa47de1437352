// Package storage - postgres.go
// PostgreSQL implementations of the event and save repositories, for
// deployments where the mine outgrows a local SQLite file.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// InitPostgres opens a PostgreSQL connection and ensures the schemas exist.
func InitPostgres(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			id BIGSERIAL PRIMARY KEY,
			game_id TEXT NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL,
			document JSONB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saves_game_id ON saves(game_id, saved_at DESC);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			tick_number BIGINT NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_game_id ON events(game_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(game_id, event_type);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("failed to create postgres schemas: %w", err)
		}
	}

	return db, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Append inserts a new event into the immutable ledger.
func (r *PostgresEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.GameID,
		event.Timestamp,
		event.EventType,
		event.ActorID,
		event.TargetID,
		payloadJSON,
		event.TickNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// GetByGameID retrieves all events for a run, oldest first.
func (r *PostgresEventRepository) GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error) {
	query := `
		SELECT id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number
		FROM events
		WHERE game_id = $1
		ORDER BY timestamp ASC
	`
	return r.queryEvents(ctx, query, gameID)
}

// GetByEventType retrieves all events of a specific type.
func (r *PostgresEventRepository) GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error) {
	query := `
		SELECT id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number
		FROM events
		WHERE game_id = $1 AND event_type = $2
		ORDER BY timestamp ASC
	`
	return r.queryEvents(ctx, query, gameID, eventType)
}

// GetSince retrieves events at or after a timestamp.
func (r *PostgresEventRepository) GetSince(ctx context.Context, gameID string, since time.Time) ([]GameEvent, error) {
	query := `
		SELECT id, game_id, timestamp, event_type, actor_id, target_id, payload, tick_number
		FROM events
		WHERE game_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`
	return r.queryEvents(ctx, query, gameID, since)
}

// queryEvents is a helper to execute queries and scan results.
func (r *PostgresEventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var payloadJSON []byte
		var targetID sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.GameID,
			&e.Timestamp,
			&e.EventType,
			&e.ActorID,
			&targetID,
			&payloadJSON,
			&e.TickNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if targetID.Valid {
			e.TargetID = targetID.String
		}

		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

var _ EventRepository = (*PostgresEventRepository)(nil)

// PostgresSaveRepository implements SaveRepository using PostgreSQL.
type PostgresSaveRepository struct {
	db     *sql.DB
	gameID string
}

// NewPostgresSaveRepository creates a new PostgreSQL save repository.
func NewPostgresSaveRepository(db *sql.DB, gameID string) *PostgresSaveRepository {
	return &PostgresSaveRepository{db: db, gameID: gameID}
}

func (r *PostgresSaveRepository) Persist(ctx context.Context, data []byte, savedAt time.Time) error {
	query := `INSERT INTO saves (game_id, saved_at, document) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, r.gameID, savedAt, data)
	if err != nil {
		return fmt.Errorf("failed to persist save: %w", err)
	}
	return nil
}

func (r *PostgresSaveRepository) Latest(ctx context.Context) (*SaveRecord, error) {
	query := `SELECT id, game_id, saved_at, document FROM saves WHERE game_id = $1 ORDER BY saved_at DESC, id DESC LIMIT 1`
	var rec SaveRecord
	err := r.db.QueryRowContext(ctx, query, r.gameID).Scan(&rec.ID, &rec.GameID, &rec.SavedAt, &rec.Document)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresSaveRepository) History(ctx context.Context, limit int) ([]SaveRecord, error) {
	query := `SELECT id, game_id, saved_at, document FROM saves WHERE game_id = $1 ORDER BY saved_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, r.gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SaveRecord
	for rows.Next() {
		var rec SaveRecord
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.SavedAt, &rec.Document); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresSaveRepository) Prune(ctx context.Context, keep int) error {
	query := `
		DELETE FROM saves WHERE game_id = $1 AND id NOT IN (
			SELECT id FROM saves WHERE game_id = $2 ORDER BY saved_at DESC, id DESC LIMIT $3
		)
	`
	_, err := r.db.ExecContext(ctx, query, r.gameID, r.gameID, keep)
	return err
}

var _ SaveRepository = (*PostgresSaveRepository)(nil)
