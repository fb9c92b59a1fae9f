// Package store provides SQLite durable storage for ragaweb.
//
// Each state container persists as one snapshot row: the full serialized
// collections list under a fixed name. A write replaces the whole row in a
// single transaction, so the durable copy is never half-updated.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Snapshot is one persisted state record.
type Snapshot struct {
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based DBs only.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveSnapshot replaces the record stored under name.
// Thread-safe: acquires write lock.
func (s *Store) SaveSnapshot(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, name, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	return tx.Commit()
}

// LoadSnapshot returns the record stored under name.
// The bool is false when nothing has been persisted yet.
// Thread-safe: acquires read lock.
func (s *Store) LoadSnapshot(name string) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	snap := Snapshot{Name: name}
	err := s.db.QueryRow(
		"SELECT data, updated_at FROM snapshots WHERE name = ?", name,
	).Scan(&data, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	snap.Data = []byte(data)
	return snap, true, nil
}

// DeleteSnapshot removes the record stored under name. Missing names are not an error.
// Thread-safe: acquires write lock.
func (s *Store) DeleteSnapshot(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name)
	return err
}
