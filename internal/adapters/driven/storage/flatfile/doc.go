// Package flatfile stores harvest output as flat files on disk.
//
// Records append to one CSV file per collection, named after the
// collection (issues.csv, pull_requests.csv, comments.csv, reviews.csv).
// A header row is written only when a file starts empty, so a harvest
// can stop and resume into the same file indefinitely.
//
// Checkpoints live beside the record files as one JSON document per
// collection. Each save goes through a temporary file and an atomic
// rename, so a crash leaves either the previous checkpoint or the new
// one, never a torn mix.
//
// # Durability
//
// Flush drives buffered rows through the CSV encoder and fsyncs the
// file before returning. The harvest engine flushes before every
// checkpoint save, which keeps the checkpoint a lower bound on what
// the record file holds.
//
// # Thread Safety
//
// All operations are safe for concurrent use. A single lock per writer
// serialises appends across collections; collection workers spend most
// of their time in network waits, so contention here is not a concern.
package flatfile
