package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	workspace  TEXT PRIMARY KEY,
	slot       TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps one slot per workspace in a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	workspace string
}

// OpenSQLite opens (creating if needed) the database at path and returns a
// store for the given workspace. ":memory:" opens a private in-memory
// database.
func OpenSQLite(ctx context.Context, path, workspace string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session schema: %w", err)
	}
	if workspace == "" {
		workspace = "default"
	}
	return &SQLiteStore{db: db, workspace: workspace}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (Slot, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT slot FROM sessions WHERE workspace = ?`, s.workspace,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, fmt.Errorf("loading session %s: %w", s.workspace, err)
	}
	slot, ok, err := decodeSlot([]byte(data))
	if err != nil {
		return Slot{}, false, fmt.Errorf("decoding session %s: %w", s.workspace, err)
	}
	return slot, ok, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, slot Slot) error {
	b, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (workspace, slot, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(workspace) DO UPDATE SET slot = excluded.slot, updated_at = excluded.updated_at`,
		s.workspace, string(b), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", s.workspace, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
