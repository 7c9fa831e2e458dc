package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
	"github.com/forgemine/forgemine/internal/logger"
)

const (
	// DefaultMaxAttempts is the per-page fetch budget for transient failures.
	DefaultMaxAttempts = 3

	// DefaultRetryBackoff is the base delay between transient retries.
	// The nth retry waits n times this.
	DefaultRetryBackoff = 30 * time.Second
)

// PageState names a position in a paginator's lifecycle.
type PageState string

const (
	// StateStart means no page has been fetched yet; the cursor is the
	// resume position.
	StateStart PageState = "start"

	// StateFetching means a fetch is in flight.
	StateFetching PageState = "fetching"

	// StateHasMore means the last page was delivered and more remain.
	StateHasMore PageState = "has_more"

	// StateExhausted means the last page was delivered and none remain.
	StateExhausted PageState = "exhausted"

	// StateDone means the caller has been told the sequence ended.
	StateDone PageState = "done"

	// StateFailed means a terminal error stopped the sequence. The
	// cursor still points at the last position safe to resume from.
	StateFailed PageState = "failed"
)

// PaginatorOptions bound retry behaviour.
type PaginatorOptions struct {
	// MaxAttempts is the total fetch budget per page when failures are
	// transient. Zero applies DefaultMaxAttempts.
	MaxAttempts int

	// Backoff is the base delay between transient retries. Zero applies
	// DefaultRetryBackoff.
	Backoff time.Duration
}

// Paginator walks one collection's page sequence lazily. Each Next call
// fetches a single page, rotating credentials on quota exhaustion and
// retrying transient failures up to a budget. The cursor advances only
// when a page is delivered, so a failed fetch never loses position.
type Paginator struct {
	source      driven.PageSource
	pool        *TokenPool
	collection  domain.Collection
	cursor      domain.PageCursor
	state       PageState
	lastErr     error
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewPaginator starts a paginator at the given resume position.
func NewPaginator(
	source driven.PageSource,
	pool *TokenPool,
	collection domain.Collection,
	resume domain.PageCursor,
	opts PaginatorOptions,
) *Paginator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultRetryBackoff
	}

	state := StateStart
	if resume.Exhausted {
		state = StateExhausted
	}

	return &Paginator{
		source:      source,
		pool:        pool,
		collection:  collection,
		cursor:      resume,
		state:       state,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		sleep:       sleepContext,
	}
}

// State returns the paginator's current lifecycle position.
func (p *Paginator) State() PageState {
	return p.state
}

// Cursor returns the last position safe to resume from. After a page is
// delivered this is the cursor that page unlocked.
func (p *Paginator) Cursor() domain.PageCursor {
	return p.cursor
}

// Next returns the next page of the sequence, or (nil, nil) once the
// sequence is exhausted. On a terminal error the paginator moves to
// StateFailed, keeps the cursor of the last delivered page, and returns
// the same error for every subsequent call.
func (p *Paginator) Next(ctx context.Context) (*driven.Page, error) {
	switch p.state {
	case StateDone:
		return nil, nil
	case StateFailed:
		return nil, p.lastErr
	case StateExhausted:
		p.state = StateDone
		return nil, nil
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(err)
		}

		cred, err := p.pool.Acquire()
		if err != nil {
			return nil, p.fail(err)
		}

		p.state = StateFetching
		page, err := p.source.FetchPage(ctx, p.collection, p.cursor, cred)
		if err == nil {
			p.pool.ReportSuccess(cred, page.Remaining)
			p.cursor = page.Next
			if page.Next.Exhausted {
				p.state = StateExhausted
			} else {
				p.state = StateHasMore
			}
			return page, nil
		}

		var rle *domain.RateLimitedError
		switch {
		case errors.As(err, &rle):
			// The page was not consumed. Rest this credential and retry
			// the same cursor with the next one; a finite pool bounds
			// the rotation.
			p.pool.ReportExhausted(cred, rle.ResetAt)

		case domain.IsTransient(err):
			attempts++
			if attempts >= p.maxAttempts {
				return nil, p.fail(fmt.Errorf("page %d after %d attempts: %w", p.cursor.Seq, attempts, err))
			}
			delay := time.Duration(attempts) * p.backoff
			logger.Warn("transient failure, retrying page",
				"collection", p.collection,
				"page", p.cursor.Seq,
				"attempt", attempts,
				"delay", delay,
				"error", err)
			if serr := p.sleep(ctx, delay); serr != nil {
				return nil, p.fail(serr)
			}

		default:
			return nil, p.fail(fmt.Errorf("page %d: %w", p.cursor.Seq, err))
		}
	}
}

// fail moves the paginator to its terminal failure state.
func (p *Paginator) fail(err error) error {
	p.state = StateFailed
	p.lastErr = err
	return err
}

// sleepContext waits for d, returning early if the context ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
