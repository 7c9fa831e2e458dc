package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore persists collection state as one JSON document per
// collection. Saves go through a temporary file and an atomic rename,
// so a reader never observes a partially written checkpoint.
type CheckpointStore struct {
	mu  sync.Mutex
	dir string
}

// NewCheckpointStore creates a store rooted at dir, creating the
// directory if missing.
func NewCheckpointStore(dir string) (*CheckpointStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return &CheckpointStore{dir: dir}, nil
}

// Load retrieves the saved state for a collection, or nil if none exists.
func (s *CheckpointStore) Load(_ context.Context, collection domain.Collection) (*domain.CollectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			// No checkpoint yet - the harvest starts from the beginning.
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s checkpoint: %w", collection, err)
	}

	var state domain.CollectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCheckpointCorrupt, collection, err)
	}
	if state.Collection != collection {
		return nil, fmt.Errorf("%w: %s document names %s", domain.ErrCheckpointCorrupt, collection, state.Collection)
	}
	return &state, nil
}

// Save replaces the collection's checkpoint atomically. A crash at any
// point leaves either the previous document or the new one in place.
func (s *CheckpointStore) Save(_ context.Context, state domain.CollectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s checkpoint: %w", state.Collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(state.Collection)+".checkpoint-*")
	if err != nil {
		return fmt.Errorf("creating temporary checkpoint: %w", err)
	}

	// The rename below publishes the document; everything before it
	// must be fully on disk first.
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s checkpoint: %w", state.Collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("syncing %s checkpoint: %w", state.Collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s checkpoint: %w", state.Collection, err)
	}

	if err := os.Rename(tmp.Name(), s.path(state.Collection)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing %s checkpoint: %w", state.Collection, err)
	}
	return nil
}

// Clear removes the saved state. A missing document is not an error.
func (s *CheckpointStore) Clear(_ context.Context, collection domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(collection)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s checkpoint: %w", collection, err)
	}
	return nil
}

// path returns where a collection's checkpoint document lives.
func (s *CheckpointStore) path(collection domain.Collection) string {
	return filepath.Join(s.dir, string(collection)+".checkpoint.json")
}
