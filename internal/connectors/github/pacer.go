package github

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPacing is the default spacing between requests (~1.25 req/sec,
// well under the 5,000 points/hour GraphQL budget).
const DefaultPacing = 800 * time.Millisecond

// Pacer spaces requests out with a token bucket. One pacer is shared by
// every collection in a run, so concurrent workers cannot stack their
// requests into a burst.
type Pacer struct {
	bucket *rate.Limiter
}

// NewPacer creates a pacer that releases one request per interval.
// A non-positive interval disables pacing entirely.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{bucket: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{bucket: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request slot is free or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.bucket.Wait(ctx)
}
