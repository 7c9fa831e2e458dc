package driven

import (
	"context"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// RecordWriter persists records to per-collection append-only files.
//
// Writers buffer appends and make them durable on Flush. Once Flush
// returns nil, every record accepted so far survives a crash; saving a
// checkpoint is safe from that point on. There is no update or delete:
// duplicate rows from at-least-once delivery are left to downstream
// consumers to collapse by record identifier.
type RecordWriter interface {
	// Append buffers records for the collection and returns how many
	// were accepted. Records without an identifier are skipped and
	// logged; the remainder of the batch is still accepted.
	Append(ctx context.Context, collection domain.Collection, records []domain.Record) (int, error)

	// Flush writes all buffered records for the collection through to
	// durable storage. Synchronous: it returns only after the data is
	// flushed to disk.
	Flush(ctx context.Context, collection domain.Collection) error

	// Close flushes all collections and releases file handles.
	Close() error
}
