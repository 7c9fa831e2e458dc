package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent harvesting failures the engine branches on.
// These are distinct from infrastructure errors.
var (
	// ErrNoUsableCredential indicates every credential is exhausted or
	// below its safety margin. No further requests can be made until
	// quota is restored.
	ErrNoUsableCredential = errors.New("no usable credential")

	// ErrMalformedRecord indicates a record without a remote identifier.
	// Such records are skipped and logged, never written.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnknownCollection indicates a name outside the harvestable datasets.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrCheckpointCorrupt indicates a checkpoint file that cannot be
	// decoded. Clearing the collection's checkpoint starts it over.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")

	// ErrWriterClosed indicates an append after the writer was closed.
	ErrWriterClosed = errors.New("record writer closed")

	// ErrNoCredentials indicates that no credentials were configured.
	ErrNoCredentials = errors.New("no credentials configured")
)

// RateLimitedError indicates the credential used for a request is out of
// quota. The page was not consumed; the same cursor is safe to retry
// with a different credential.
type RateLimitedError struct {
	// ResetAt is when the remote restores the credential's quota.
	// Zero when the response carried no usable reset hint.
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	if e.ResetAt.IsZero() {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited until %s", e.ResetAt.Format(time.RFC3339))
}

// TransientError wraps a failure worth retrying at the same cursor:
// timeouts, dropped connections, server-side 5xx responses.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// TransportError wraps an unexpected failure. Retrying is not useful;
// the collection fails fast and keeps its last checkpoint.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsRateLimited checks if an error signals quota exhaustion.
func IsRateLimited(err error) bool {
	var rle *RateLimitedError
	return errors.As(err, &rle)
}

// IsTransient checks if an error is worth a bounded retry.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
