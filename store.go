package sonar

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Record is the bookkeeping row for one compiled artifact.
type Record struct {
	Key            string    `json:"key"`
	LastCompiledAt time.Time `json:"lastCompiledAt"`
	OutputDigest   string    `json:"outputDigest,omitempty"`
}

// RecordStore is the key-value collaborator holding compile records.
// Entries have permanent retention; they disappear only through explicit
// deletes or clears.
type RecordStore interface {
	// Get returns the record for key and whether one exists.
	Get(key string) (Record, bool, error)

	// Set creates or replaces the record for rec.Key.
	Set(rec Record) error

	// Delete removes the record for key. Deleting an absent key is not an
	// error.
	Delete(key string) error
}

// FileStore persists records as JSON files under a root directory.
type FileStore struct {
	root string
	fs   afero.Fs
	mu   sync.RWMutex
}

// NewFileStore creates a record store rooted at root, creating the
// directory if needed.
func NewFileStore(fs afero.Fs, root string) (*FileStore, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}
	return &FileStore{root: root, fs: fs}, nil
}

// recordPath returns the file backing a record. Keys embed the theme and a
// hex hash, so they are filename-safe as long as themes are.
func (s *FileStore) recordPath(key string) string {
	return filepath.Join(s.root, key+".json")
}

// Get implements RecordStore.
func (s *FileStore) Get(key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.recordPath(key)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to check record %s: %w", key, err)
	}
	if !exists {
		return Record{}, false, nil
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to unmarshal record %s: %w", key, err)
	}
	return rec, true, nil
}

// Set implements RecordStore.
func (s *FileStore) Set(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.Key, err)
	}
	if err := afero.WriteFile(s.fs, s.recordPath(rec.Key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", rec.Key, err)
	}
	return nil
}

// Delete implements RecordStore.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.recordPath(key)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", key, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove record %s: %w", key, err)
	}
	return nil
}

// Clear removes all records. The next compile of every key regenerates.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to remove records: %w", err)
	}
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to recreate record directory: %w", err)
	}
	return nil
}

// StoreStats summarizes the contents of a FileStore.
type StoreStats struct {
	Entries int       // number of records
	Oldest  time.Time // earliest LastCompiledAt, zero when empty
	Newest  time.Time // latest LastCompiledAt, zero when empty
}

// Stats walks the record directory and summarizes it. Unreadable or
// malformed records are skipped.
func (s *FileStore) Stats() (StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats StoreStats
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return stats, fmt.Errorf("failed to read record directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := afero.ReadFile(s.fs, filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		stats.Entries++
		if stats.Oldest.IsZero() || rec.LastCompiledAt.Before(stats.Oldest) {
			stats.Oldest = rec.LastCompiledAt
		}
		if rec.LastCompiledAt.After(stats.Newest) {
			stats.Newest = rec.LastCompiledAt
		}
	}
	return stats, nil
}

// MemStore is an in-memory RecordStore for tests and single-process
// embedding.
type MemStore struct {
	mu   sync.RWMutex
	recs map[string]Record
}

// NewMemStore creates an empty in-memory record store.
func NewMemStore() *MemStore {
	return &MemStore{recs: make(map[string]Record)}
}

// Get implements RecordStore.
func (s *MemStore) Get(key string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

// Set implements RecordStore.
func (s *MemStore) Set(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

// Delete implements RecordStore.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
	return nil
}
