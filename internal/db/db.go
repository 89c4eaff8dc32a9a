// Package db persists application state to a local SQLite database: one
// JSON-encoded row per collection, mirroring the one-entry-per-collection
// layout of the original local storage.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ldi/taskmaster/pkg/models"
)

const (
	keyTasks  = "tasks"
	keyEvents = "events"
	keyTags   = "tags"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type DB struct {
	*sql.DB
}

// Open opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	return &DB{DB: db}, nil
}

func (db *DB) Init(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// LoadState reads the persisted collections. Missing or malformed entries
// fall back to empty collections, except tags which fall back to the
// seeded defaults, so a corrupt store never blocks startup.
func (db *DB) LoadState(ctx context.Context) (models.AppState, error) {
	var state models.AppState

	tasks, err := db.getCollection(ctx, keyTasks)
	if err != nil {
		return state, err
	}
	if tasks == nil || json.Unmarshal(tasks, &state.Tasks) != nil {
		state.Tasks = []models.Task{}
	}

	events, err := db.getCollection(ctx, keyEvents)
	if err != nil {
		return state, err
	}
	if events == nil || json.Unmarshal(events, &state.Events) != nil {
		state.Events = []models.Event{}
	}

	tags, err := db.getCollection(ctx, keyTags)
	if err != nil {
		return state, err
	}
	if tags == nil || json.Unmarshal(tags, &state.Tags) != nil {
		state.Tags = DefaultTags()
	}

	return state, nil
}

// SaveState writes all three collections in one transaction.
func (db *DB) SaveState(ctx context.Context, state models.AppState) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	collections := []struct {
		key   string
		value any
	}{
		{keyTasks, emptyIfNil(state.Tasks)},
		{keyEvents, emptyIfNil(state.Events)},
		{keyTags, emptyIfNil(state.Tags)},
	}

	for _, c := range collections {
		data, err := json.Marshal(c.value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", c.key, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO collections (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, c.key, string(data))
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", c.key, err)
		}
	}

	return tx.Commit()
}

func (db *DB) getCollection(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(value), nil
}

func (db *DB) setCollection(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO collections (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// DefaultTags seeds a fresh install with the starter tag set.
func DefaultTags() []models.Tag {
	return []models.Tag{
		{ID: uuid.NewString(), Name: "Work", Color: "#3b82f6"},
		{ID: uuid.NewString(), Name: "Personal", Color: "#10b981"},
		{ID: uuid.NewString(), Name: "Urgent", Color: "#ef4444"},
		{ID: uuid.NewString(), Name: "Study", Color: "#8b5cf6"},
	}
}

// emptyIfNil keeps persisted collections as JSON arrays, never null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
