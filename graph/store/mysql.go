package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/flowgraph/flowgraph/graph/emit"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore is a MySQL/MariaDB-backed EventStore, for deployments that
// want the debug/event log durably queued in a shared database rather
// than a local file or in-process memory.
//
// Schema:
//   - events_outbox: transactional event delivery
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a new MySQL-backed event outbox.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
//
// Example DSN:
//
//	user:password@tcp(127.0.0.1:3306)/flowgraph?parseTime=true
//
// NEVER hardcode credentials in source code; read the DSN from the
// environment instead.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	store := &MySQLStore{db: db, closed: false}
	if err := store.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return store, nil
}

// createTables creates the events_outbox schema if it doesn't exist.
func (m *MySQLStore) createTables(ctx context.Context) error {
	eventsOutboxTable := `
		CREATE TABLE IF NOT EXISTS events_outbox (
			id VARCHAR(255) NOT NULL PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			event_data JSON NOT NULL,
			emitted_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_pending (emitted_at, created_at),
			INDEX idx_run_id (run_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := m.db.ExecContext(ctx, eventsOutboxTable); err != nil {
		return fmt.Errorf("failed to create events_outbox table: %w", err)
	}
	return nil
}

// EnqueueEvent inserts event into the events_outbox table with a fresh
// id, mirroring SQLiteStore.EnqueueEvent, so a MySQLStore can likewise
// back the debug pipeline as an emit.Emitter.
func (m *MySQLStore) EnqueueEvent(ctx context.Context, event emit.Event) (string, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return "", fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	id := uuid.NewString()
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = m.db.ExecContext(ctx,
		"INSERT INTO events_outbox (id, run_id, event_data) VALUES (?, ?, ?)",
		id, event.RunID, string(eventJSON))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue event: %w", err)
	}
	return id, nil
}

// PendingEvents retrieves events from the outbox that haven't been emitted yet.
func (m *MySQLStore) PendingEvents(ctx context.Context, limit int) ([]emit.Event, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	query := `
		SELECT id, run_id, event_data
		FROM events_outbox
		WHERE emitted_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := m.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []emit.Event
	for rows.Next() {
		var (
			id        string
			runID     string
			eventJSON []byte
		)
		if err := rows.Scan(&id, &runID, &eventJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		var event emit.Event
		if err := json.Unmarshal(eventJSON, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// MarkEventsEmitted marks events as successfully emitted to prevent re-delivery.
func (m *MySQLStore) MarkEventsEmitted(ctx context.Context, eventIDs []string) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	if len(eventIDs) == 0 {
		return nil
	}

	placeholders := ""
	args := make([]interface{}, len(eventIDs))
	for i, id := range eventIDs {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = id
	}

	// #nosec G201 -- placeholders are not user input, just "?" marks for parameterized query
	query := fmt.Sprintf(`
		UPDATE events_outbox
		SET emitted_at = NOW()
		WHERE id IN (%s)
	`, placeholders)

	_, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark events as emitted: %w", err)
	}
	return nil
}

// Close closes the database connection pool. Calling Close multiple
// times is safe (subsequent calls are no-ops).
func (m *MySQLStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// Ping verifies the database connection is alive.
func (m *MySQLStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	return m.db.PingContext(ctx)
}

// Stats returns database connection pool statistics.
func (m *MySQLStore) Stats() sql.DBStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.db.Stats()
}
