package github

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// rateLimitFragments are message fragments that identify quota-exhaustion
// responses. The GraphQL API reports both the primary hourly limit and the
// secondary abuse-detection limit as plain error messages, and HTTP-level
// 403/429 responses surface as status text, so matching on the message is
// the only classification signal available.
var rateLimitFragments = []string{
	"rate limit",
	"429",
	"too many requests",
	"abuse",
	"secondary",
}

// transientFragments identify failures worth retrying at the same cursor:
// server-side errors and connection-level timeouts.
var transientFragments = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"500",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
}

// classify maps a raw request failure onto the domain error taxonomy.
// Context cancellation passes through unwrapped so callers can stop
// cleanly; everything else becomes rate-limited, transient or transport.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransientError{Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.TransientError{Cause: err}
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, rateLimitFragments) {
		// The error message carries no reset timestamp; the pool falls
		// back to its configured reset window.
		return &domain.RateLimitedError{}
	}
	if containsAny(msg, transientFragments) {
		return &domain.TransientError{Cause: err}
	}

	return &domain.TransportError{Cause: err}
}

func containsAny(msg string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
