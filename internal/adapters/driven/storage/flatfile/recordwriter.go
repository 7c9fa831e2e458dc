package flatfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
	"github.com/forgemine/forgemine/internal/logger"
)

// DefaultBatchSize bounds how many rows buffer before an automatic flush.
const DefaultBatchSize = 1000

// Ensure RecordWriter implements the interface.
var _ driven.RecordWriter = (*RecordWriter)(nil)

// collectionFile is one open CSV file plus its buffered encoder.
type collectionFile struct {
	file    *os.File
	csv     *csv.Writer
	pending int
}

// RecordWriter appends harvest records to one CSV file per collection.
// Files open lazily on first append; a header row is written only when
// the file starts empty. Rows buffer up to the batch size and are
// guaranteed on disk only after Flush.
type RecordWriter struct {
	mu        sync.Mutex
	dir       string
	batchSize int
	files     map[domain.Collection]*collectionFile
	closed    bool
}

// NewRecordWriter creates a writer rooted at dir, creating the
// directory if missing. batchSize zero or below applies the default.
func NewRecordWriter(dir string, batchSize int) (*RecordWriter, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &RecordWriter{
		dir:       dir,
		batchSize: batchSize,
		files:     make(map[domain.Collection]*collectionFile),
	}, nil
}

// Append writes rows for the given records, skipping malformed ones.
// It returns the number of records accepted. Accepted rows may still be
// buffered; call Flush to make them durable.
func (w *RecordWriter) Append(_ context.Context, collection domain.Collection, records []domain.Record) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, domain.ErrWriterClosed
	}

	cf, err := w.open(collection)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, record := range records {
		if record.Key() == "" {
			logger.Warn("skipping malformed record", "collection", collection)
			continue
		}
		if err := cf.csv.Write(record.Row()); err != nil {
			return accepted, fmt.Errorf("writing %s row: %w", collection, err)
		}
		accepted++
		cf.pending++

		if cf.pending >= w.batchSize {
			if err := w.flushLocked(collection, cf); err != nil {
				return accepted, err
			}
		}
	}
	return accepted, nil
}

// Flush drives buffered rows to disk and waits for the device. After a
// nil return every row accepted so far survives a crash.
func (w *RecordWriter) Flush(_ context.Context, collection domain.Collection) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return domain.ErrWriterClosed
	}
	cf, ok := w.files[collection]
	if !ok {
		// Nothing appended yet.
		return nil
	}
	return w.flushLocked(collection, cf)
}

// Close flushes and closes every open file. The writer rejects all use
// afterwards.
func (w *RecordWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for collection, cf := range w.files {
		if err := w.flushLocked(collection, cf); err != nil {
			errs = append(errs, err)
		}
		if err := cf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s file: %w", collection, err))
		}
	}
	return errors.Join(errs...)
}

// Path returns where a collection's records live.
func (w *RecordWriter) Path(collection domain.Collection) string {
	return filepath.Join(w.dir, collection.Filename())
}

// open returns the collection's file, opening it and writing the header
// on first use of an empty file. Caller must hold the lock.
func (w *RecordWriter) open(collection domain.Collection) (*collectionFile, error) {
	if cf, ok := w.files[collection]; ok {
		return cf, nil
	}

	path := w.Path(collection)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening %s file: %w", collection, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("inspecting %s file: %w", collection, err)
	}

	cf := &collectionFile{file: file, csv: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := cf.csv.Write(collection.Header()); err != nil {
			file.Close()
			return nil, fmt.Errorf("writing %s header: %w", collection, err)
		}
	}

	w.files[collection] = cf
	return cf, nil
}

// flushLocked pushes the CSV buffer through and syncs the file.
// Caller must hold the lock.
func (w *RecordWriter) flushLocked(collection domain.Collection, cf *collectionFile) error {
	cf.csv.Flush()
	if err := cf.csv.Error(); err != nil {
		return fmt.Errorf("flushing %s rows: %w", collection, err)
	}
	if err := cf.file.Sync(); err != nil {
		return fmt.Errorf("syncing %s file: %w", collection, err)
	}
	cf.pending = 0
	return nil
}

// CountRecords reports how many data rows a collection's file holds
// under dir. Rows are counted through the CSV reader, so newlines
// quoted inside bodies do not inflate the count. A missing file counts
// as zero.
func CountRecords(dir string, collection domain.Collection) (int64, error) {
	file, err := os.Open(filepath.Join(dir, collection.Filename()))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("opening %s file: %w", collection, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows int64
	for {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, fmt.Errorf("reading %s file: %w", collection, err)
		}
		rows++
	}
	if rows > 0 {
		// Discount the header.
		rows--
	}
	return rows, nil
}
