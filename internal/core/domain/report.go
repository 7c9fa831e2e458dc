package domain

import "time"

// HarvestReport summarises one harvest run.
type HarvestReport struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended.
	FinishedAt time.Time

	// Collections holds one entry per harvested collection.
	Collections []CollectionReport
}

// Failed reports whether any collection ended in failure.
func (r *HarvestReport) Failed() bool {
	for i := range r.Collections {
		if r.Collections[i].Err != nil {
			return true
		}
	}
	return false
}

// Records returns the total rows written across collections this run.
func (r *HarvestReport) Records() int64 {
	var total int64
	for i := range r.Collections {
		total += r.Collections[i].Records
	}
	return total
}

// CollectionReport summarises one collection within a run.
type CollectionReport struct {
	// Collection identifies the dataset.
	Collection Collection

	// Pages is the number of pages fetched this run.
	Pages int

	// Records is the number of rows durably written this run.
	Records int64

	// Skipped counts malformed records dropped this run.
	Skipped int

	// Complete indicates the collection reached the end of its
	// page sequence.
	Complete bool

	// Err is the failure that stopped the collection, if any.
	Err error
}
