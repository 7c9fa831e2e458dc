package memory

import (
	"context"
	"sync"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
	"github.com/forgemine/forgemine/internal/logger"
)

// Ensure RecordWriter implements the interface.
var _ driven.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is an in-memory implementation of driven.RecordWriter.
// The port exposes no read path, so the writer keeps the accepted rows
// accessible for inspection.
type RecordWriter struct {
	mu      sync.RWMutex
	rows    map[domain.Collection][][]string
	flushes map[domain.Collection]int
	closed  bool
}

// NewRecordWriter creates a new in-memory record writer.
func NewRecordWriter() *RecordWriter {
	return &RecordWriter{
		rows:    make(map[domain.Collection][][]string),
		flushes: make(map[domain.Collection]int),
	}
}

// Append stores the rows for the given records, skipping malformed ones.
// It returns the number of records accepted.
func (w *RecordWriter) Append(_ context.Context, collection domain.Collection, records []domain.Record) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, domain.ErrWriterClosed
	}
	accepted := 0
	for _, record := range records {
		if record.Key() == "" {
			logger.Warn("skipping malformed record", "collection", collection)
			continue
		}
		w.rows[collection] = append(w.rows[collection], record.Row())
		accepted++
	}
	return accepted, nil
}

// Flush is a durability no-op in memory. It still counts invocations so
// callers can verify flush ordering.
func (w *RecordWriter) Flush(_ context.Context, collection domain.Collection) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrWriterClosed
	}
	w.flushes[collection]++
	return nil
}

// Close marks the writer closed. Further appends and flushes fail.
func (w *RecordWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Rows returns a copy of the accepted rows for a collection.
func (w *RecordWriter) Rows(collection domain.Collection) [][]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rows := make([][]string, len(w.rows[collection]))
	copy(rows, w.rows[collection])
	return rows
}

// FlushCount returns how many times Flush ran for a collection.
func (w *RecordWriter) FlushCount(collection domain.Collection) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.flushes[collection]
}
