// Package settings implements the desktop shell's named settings store: a
// SQLite file of JSON values keyed by string. Writes are staged in memory by
// Set and become durable only when Save commits them.
package settings

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("settings store closed")

// Store is an opened settings file.
type Store struct {
	db   *sql.DB
	name string

	mu      sync.Mutex
	staged  map[string]json.RawMessage
	deleted map[string]bool
	closed  bool
}

// Open opens (or creates) the store <dir>/<name>.db and runs pending
// migrations. Pass ":memory:" as dir for an in-memory store (used by tests).
func Open(ctx context.Context, dir, name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("settings store name is required")
	}

	var dsn string
	if dir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
		dsn = filepath.Join(dir, name+".db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	// A single connection keeps ":memory:" stores on one database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging settings database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{
		db:      db,
		name:    name,
		staged:  make(map[string]json.RawMessage),
		deleted: make(map[string]bool),
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Name returns the store name given to Open.
func (s *Store) Name() string { return s.name }

// Close discards staged changes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.staged = nil
	s.deleted = nil
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the applied migration versions in ascending order.
func (s *Store) AppliedMigrations(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Get returns the value for key, seeing staged but uncommitted changes.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, ErrClosed
	}
	if s.deleted[key] {
		s.mu.Unlock()
		return nil, false, nil
	}
	if v, ok := s.staged[key]; ok {
		s.mu.Unlock()
		return cloneRaw(v), true, nil
	}
	s.mu.Unlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Set stages value under key. value must be valid JSON.
func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.staged[key] = cloneRaw(value)
	delete(s.deleted, key)
	return nil
}

// Delete stages removal of key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.staged, key)
	s.deleted[key] = true
	return nil
}

// Save commits staged changes in one transaction. Staged changes are kept
// when the commit fails so a later Save can retry them.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.staged) == 0 && len(s.deleted) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning settings transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range s.staged {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(value), now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("writing %q: %w", key, err)
		}
	}
	for key := range s.deleted {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key); err != nil {
			tx.Rollback()
			return fmt.Errorf("deleting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	s.staged = make(map[string]json.RawMessage)
	s.deleted = make(map[string]bool)
	return nil
}

// Keys returns the committed keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM entries ORDER BY key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func cloneRaw(v json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
