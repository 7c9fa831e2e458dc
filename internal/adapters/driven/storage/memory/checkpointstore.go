package memory

import (
	"context"
	"sync"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore.
type CheckpointStore struct {
	mu     sync.RWMutex
	states map[domain.Collection]domain.CollectionState
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		states: make(map[domain.Collection]domain.CollectionState),
	}
}

// Load retrieves the saved state for a collection, or nil if none exists.
func (s *CheckpointStore) Load(_ context.Context, collection domain.Collection) (*domain.CollectionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[collection]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Save stores or replaces the state for a collection.
func (s *CheckpointStore) Save(_ context.Context, state domain.CollectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Collection] = state
	return nil
}

// Clear removes the saved state for a collection.
func (s *CheckpointStore) Clear(_ context.Context, collection domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, collection)
	return nil
}
