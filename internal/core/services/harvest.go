package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
	"github.com/forgemine/forgemine/internal/core/ports/driving"
	"github.com/forgemine/forgemine/internal/logger"
)

// quotaResetSlack pads waits on quota recovery; the remote restores
// budgets at the window boundary, not an instant before.
const quotaResetSlack = 2 * time.Second

// Ensure HarvestEngine implements the interface.
var _ driving.Harvester = (*HarvestEngine)(nil)

// EngineOptions configure a harvest run.
type EngineOptions struct {
	// Concurrency caps how many collections run at once. Zero or one
	// runs them sequentially.
	Concurrency int

	// MaxPages stops each collection after this many pages this run.
	// Zero means no cap. The checkpoint is saved normally, so the next
	// run carries on from the cap.
	MaxPages int

	// MaxAttempts is the per-page fetch budget for transient failures.
	MaxAttempts int

	// Backoff is the base delay between transient retries.
	Backoff time.Duration

	// WaitForReset makes a collection sleep until the pool expects
	// quota back instead of failing when every credential is exhausted.
	WaitForReset bool
}

// HarvestEngine coordinates the extraction of a repository's collections
// into local record files. Per collection it loads the checkpoint, walks
// the page sequence from there, and after every page appends the records,
// flushes them durably, and only then advances the checkpoint. A crash at
// any point therefore loses no data: the next run re-fetches at most the
// page that was in flight.
type HarvestEngine struct {
	source      driven.PageSource
	pool        *TokenPool
	checkpoints driven.CheckpointStore
	writer      driven.RecordWriter
	opts        EngineOptions
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewHarvestEngine creates a harvest engine. The pool and the source's
// pacing gate are shared across collection workers.
func NewHarvestEngine(
	source driven.PageSource,
	pool *TokenPool,
	checkpoints driven.CheckpointStore,
	writer driven.RecordWriter,
	opts EngineOptions,
) *HarvestEngine {
	return &HarvestEngine{
		source:      source,
		pool:        pool,
		checkpoints: checkpoints,
		writer:      writer,
		opts:        opts,
		sleep:       sleepContext,
	}
}

// Harvest runs the given collections to completion or failure. Failures
// are isolated per collection; the returned error aggregates them while
// the report describes every requested collection.
func (e *HarvestEngine) Harvest(
	ctx context.Context, collections []domain.Collection,
) (*domain.HarvestReport, error) {
	report := &domain.HarvestReport{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now(),
		Collections: make([]domain.CollectionReport, len(collections)),
	}

	logger.Info("harvest starting",
		"run", report.RunID,
		"collections", len(collections),
		"credentials", e.pool.Size())

	if e.opts.Concurrency > 1 {
		e.harvestConcurrent(ctx, collections, report)
	} else {
		for i, collection := range collections {
			report.Collections[i] = e.harvestCollection(ctx, collection)
		}
	}

	report.FinishedAt = time.Now()

	var errs []error
	for i := range report.Collections {
		if err := report.Collections[i].Err; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", report.Collections[i].Collection, err))
		}
	}

	logger.Info("harvest finished",
		"run", report.RunID,
		"records", report.Records(),
		"failures", len(errs),
		"duration", report.FinishedAt.Sub(report.StartedAt))

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// harvestConcurrent runs collections under a bounded worker count.
// Report slots are disjoint per worker, so no locking is needed.
func (e *HarvestEngine) harvestConcurrent(
	ctx context.Context, collections []domain.Collection, report *domain.HarvestReport,
) {
	sem := make(chan struct{}, e.opts.Concurrency)
	var wg sync.WaitGroup

	for i, collection := range collections {
		wg.Add(1)
		go func(i int, collection domain.Collection) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			report.Collections[i] = e.harvestCollection(ctx, collection)
		}(i, collection)
	}

	wg.Wait()
}

// harvestCollection runs one collection from its checkpoint to the end
// of its page sequence.
func (e *HarvestEngine) harvestCollection(
	ctx context.Context, collection domain.Collection,
) domain.CollectionReport {
	rep := domain.CollectionReport{Collection: collection}

	// 1. Load the resume position.
	state, err := e.checkpoints.Load(ctx, collection)
	if err != nil {
		rep.Err = fmt.Errorf("load checkpoint: %w", err)
		return rep
	}

	var cursor domain.PageCursor
	var written int64
	if state != nil {
		cursor = state.Cursor
		written = state.Records
	}
	if cursor.Exhausted {
		logger.Info("collection already complete", "collection", collection, "records", written)
		rep.Complete = true
		return rep
	}

	logger.Info("collection starting",
		"collection", collection,
		"resume_page", cursor.Seq,
		"records_so_far", written)

	// 2. Walk the page sequence, committing after every page.
	pager := e.newPaginator(collection, cursor)

	for {
		// Cancellation is honoured between pages only, never between
		// a write and its checkpoint.
		if err := ctx.Err(); err != nil {
			rep.Err = err
			return rep
		}

		page, err := pager.Next(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNoUsableCredential) && e.opts.WaitForReset {
				if werr := e.waitForQuota(ctx, collection); werr != nil {
					rep.Err = werr
					return rep
				}
				pager = e.newPaginator(collection, pager.Cursor())
				continue
			}
			rep.Err = err
			return rep
		}
		if page == nil {
			rep.Complete = true
			break
		}

		// 3. Write the page, make it durable, then move the checkpoint.
		accepted, err := e.writer.Append(ctx, collection, page.Records)
		if err != nil {
			rep.Err = fmt.Errorf("append records: %w", err)
			return rep
		}
		rep.Skipped += len(page.Records) - accepted

		if err := e.writer.Flush(ctx, collection); err != nil {
			rep.Err = fmt.Errorf("flush records: %w", err)
			return rep
		}

		written += int64(accepted)
		rep.Records += int64(accepted)
		rep.Pages++

		if err := e.checkpoints.Save(ctx, domain.CollectionState{
			Collection: collection,
			Cursor:     page.Next,
			Records:    written,
			SavedAt:    time.Now(),
		}); err != nil {
			rep.Err = fmt.Errorf("save checkpoint: %w", err)
			return rep
		}

		logger.Debug("page committed",
			"collection", collection,
			"page", page.Next.Seq,
			"accepted", accepted,
			"total", written)

		if e.opts.MaxPages > 0 && rep.Pages >= e.opts.MaxPages {
			logger.Info("page cap reached", "collection", collection, "pages", rep.Pages)
			break
		}
	}

	logger.Info("collection finished",
		"collection", collection,
		"pages", rep.Pages,
		"records", rep.Records,
		"skipped", rep.Skipped,
		"complete", rep.Complete)
	return rep
}

// newPaginator builds a paginator for the collection at a resume position.
func (e *HarvestEngine) newPaginator(collection domain.Collection, cursor domain.PageCursor) *Paginator {
	return NewPaginator(e.source, e.pool, collection, cursor, PaginatorOptions{
		MaxAttempts: e.opts.MaxAttempts,
		Backoff:     e.opts.Backoff,
	})
}

// waitForQuota blocks until the pool expects a credential back in
// service. Fails when no credential will recover on its own.
func (e *HarvestEngine) waitForQuota(ctx context.Context, collection domain.Collection) error {
	at, ok := e.pool.NextUsableAt()
	if !ok {
		return domain.ErrNoUsableCredential
	}

	delay := time.Until(at)
	if delay <= 0 {
		return nil
	}

	logger.Info("quota exhausted, waiting for reset",
		"collection", collection,
		"until", at,
		"wait", delay)
	return e.sleep(ctx, delay+quotaResetSlack)
}
