package domain

import "time"

// PageCursor is a resumable position within a collection's page sequence.
type PageCursor struct {
	// Token is the opaque continuation token the remote returned for
	// the next page. Empty means the sequence starts from the top.
	Token string `json:"token"`

	// Seq counts the pages fetched before this position.
	Seq int `json:"seq"`

	// Exhausted marks the end of the sequence: every page has been
	// fetched and no further pages exist.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Start reports whether the cursor points at the beginning of the sequence.
func (c PageCursor) Start() bool {
	return c.Token == "" && c.Seq == 0 && !c.Exhausted
}

// CollectionState is the durable checkpoint for one collection.
//
// The invariant: every record unlocked by pages before Cursor has been
// durably written to the collection's record file. A checkpoint is only
// ever persisted after the matching flush returns.
type CollectionState struct {
	// Collection identifies the dataset the state belongs to.
	Collection Collection `json:"collection"`

	// Cursor is the position the next run resumes from.
	Cursor PageCursor `json:"cursor"`

	// Records counts the rows durably written so far.
	Records int64 `json:"records"`

	// SavedAt is when the checkpoint was persisted.
	SavedAt time.Time `json:"saved_at"`
}
