// Package localstore is a synchronous string key-value store persisted as a
// flat JSON object, the standalone stand-in for browser local storage.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DefaultFileName is the file used inside a data directory.
const DefaultFileName = "localstorage.json"

// Store holds string items. With an empty path it is memory-only.
type Store struct {
	path string

	mu    sync.Mutex
	items map[string]string
}

// Open loads the store at path. A missing file yields an empty store; a file
// that cannot be parsed is logged and treated as empty, as local storage
// never refuses to open.
func Open(path string) *Store {
	s := &Store{path: path, items: make(map[string]string)}
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read local storage file, starting empty", "path", path, "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		slog.Warn("could not parse local storage file, starting empty", "path", path, "error", err)
		s.items = make(map[string]string)
	}
	if s.items == nil {
		s.items = make(map[string]string)
	}
	return s
}

// OpenDir opens DefaultFileName inside dir.
func OpenDir(dir string) *Store {
	return Open(filepath.Join(dir, DefaultFileName))
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return Open("")
}

// Path returns the backing file, or "" for a memory-only store.
func (s *Store) Path() string { return s.path }

// GetItem returns the value stored under key.
func (s *Store) GetItem(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

// SetItem stores value under key and writes the file. On a write error the
// in-memory value is rolled back.
func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.items[key]
	s.items[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}
	return nil
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.items[key]
	if !had {
		return nil
	}
	delete(s.items, key)
	if err := s.flush(); err != nil {
		s.items[key] = prev
		return err
	}
	return nil
}

// Keys returns the stored keys in ascending order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flush writes items to a temp file and renames it over the store file.
// Callers hold s.mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating local storage dir: %w", err)
	}
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".localstorage-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing local storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing local storage: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing local storage file: %w", err)
	}
	return nil
}
