package vote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists a Tally. Load returns an error wrapping ErrNoTally when
// nothing usable is stored.
type Store interface {
	Load(ctx context.Context) (Tally, error)
	Save(ctx context.Context, t Tally) error
}

// FileStore keeps the tally as a single JSON object on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store. Missing, unparsable and negative tallies wrap ErrNoTally.
func (s *FileStore) Load(_ context.Context) (Tally, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Tally{}, ErrNoTally
	}
	if err != nil {
		return Tally{}, fmt.Errorf("%w: %v", ErrNoTally, err)
	}
	var t Tally
	if err := json.Unmarshal(data, &t); err != nil {
		return Tally{}, fmt.Errorf("%w: %s is corrupt: %v", ErrNoTally, s.path, err)
	}
	if !t.Valid() {
		return Tally{}, fmt.Errorf("%w: %s has negative counts", ErrNoTally, s.path)
	}
	return t, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(_ context.Context, t Tally) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("vote: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".votes-*.json")
	if err != nil {
		return fmt.Errorf("vote: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("vote: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vote: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("vote: %w", err)
	}
	return nil
}

// MemoryStore keeps the tally in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	tally *Tally
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tally == nil {
		return Tally{}, ErrNoTally
	}
	return *s.tally, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, t Tally) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tally = &t
	return nil
}
