package driven

import (
	"context"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// CheckpointStore persists per-collection resume positions.
//
// Save must be atomic: a crash mid-save leaves either the previous
// checkpoint or the new one, never a torn file. Callers only save after
// the records unlocked by the checkpoint are durably flushed.
type CheckpointStore interface {
	// Load retrieves the checkpoint for a collection.
	// Returns (nil, nil) when no checkpoint exists yet.
	Load(ctx context.Context, collection domain.Collection) (*domain.CollectionState, error)

	// Save stores or replaces the checkpoint for a collection.
	Save(ctx context.Context, state domain.CollectionState) error

	// Clear removes the checkpoint for a collection, if present.
	Clear(ctx context.Context, collection domain.Collection) error
}
