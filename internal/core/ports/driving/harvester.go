package driving

import (
	"context"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// Harvester drives the extraction of a repository's collections into
// local record files.
type Harvester interface {
	// Harvest runs the given collections to completion or failure,
	// resuming each from its checkpoint. Collection failures are
	// isolated: one collection failing does not stop its siblings.
	// The report always describes every requested collection; the
	// returned error aggregates per-collection failures.
	Harvest(ctx context.Context, collections []domain.Collection) (*domain.HarvestReport, error)
}
