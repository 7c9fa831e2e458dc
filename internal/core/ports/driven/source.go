package driven

import (
	"context"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// PageSource fetches one page of a collection from the remote dataset.
// Implementations pace their requests, bound them with a timeout, and
// classify failures into the domain error taxonomy:
//
//   - *domain.RateLimitedError: the credential is out of quota
//   - *domain.TransientError: timeout or server-side failure, retryable
//   - *domain.TransportError: unexpected failure, not retryable
//
// Page fetches are read-only on the remote, so re-executing the same
// cursor with a different credential is always safe.
type PageSource interface {
	// FetchPage retrieves the page at cursor using the given credential.
	// A nil error means the full page was fetched and normalised.
	FetchPage(
		ctx context.Context,
		collection domain.Collection,
		cursor domain.PageCursor,
		cred *domain.Credential,
	) (*Page, error)
}

// Page is one fetched batch of records together with the cursor it
// unlocks. Persisting Next after durably writing Records is what makes
// a harvest restartable.
type Page struct {
	// Records holds the normalised records of this page, in remote order.
	Records []domain.Record

	// Next is the position after this page. Exhausted is set when the
	// remote reported no further pages.
	Next domain.PageCursor

	// Remaining is the credential's remaining quota as reported by the
	// response, or -1 when the response carried no hint.
	Remaining int
}
