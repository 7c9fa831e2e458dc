package services

import (
	"sync"
	"time"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/logger"
)

// PoolOptions configure credential rotation.
type PoolOptions struct {
	// SafetyMargin is the number of requests kept in reserve on every
	// credential. A credential at or below the margin is not handed out.
	SafetyMargin int

	// ResetWindow is how long an exhausted credential rests when the
	// remote gave no reset hint. Zero means such a credential stays out
	// for the remainder of the run.
	ResetWindow time.Duration
}

// TokenPool hands out credentials round-robin and tracks their budgets.
//
// The pool never destroys a credential. Exhausted ones rest until their
// window passes, then re-enter rotation with a restored budget. When no
// credential qualifies, Acquire fails with domain.ErrNoUsableCredential
// rather than blocking.
type TokenPool struct {
	mu    sync.Mutex
	creds []*domain.Credential
	last  int
	opts  PoolOptions
	now   func() time.Time
}

// NewTokenPool builds a pool over the given credentials. The slice is
// copied; the pool owns all credential state from here on.
func NewTokenPool(creds []domain.Credential, opts PoolOptions) *TokenPool {
	pool := &TokenPool{
		creds: make([]*domain.Credential, len(creds)),
		last:  -1,
		opts:  opts,
		now:   time.Now,
	}
	for i := range creds {
		c := creds[i]
		pool.creds[i] = &c
	}
	return pool
}

// Size returns the number of credentials in the pool.
func (p *TokenPool) Size() int {
	return len(p.creds)
}

// Acquire returns the next usable credential. The scan starts after the
// most recent handout, so usable credentials are cycled evenly and the
// one just used is picked again only when no other qualifies.
func (p *TokenPool) Acquire() (*domain.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return nil, domain.ErrNoCredentials
	}

	now := p.now()
	for i := 1; i <= len(p.creds); i++ {
		idx := (p.last + i) % len(p.creds)
		cred := p.creds[idx]
		p.refresh(cred, now)
		if cred.Usable(p.opts.SafetyMargin, now) {
			p.last = idx
			return cred, nil
		}
	}

	return nil, domain.ErrNoUsableCredential
}

// ReportSuccess records a completed request against the credential.
// A non-negative remaining hint from the response replaces the local
// estimate; otherwise the estimate is decremented by one.
func (p *TokenPool) ReportSuccess(cred *domain.Credential, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if remaining >= 0 {
		cred.Remaining = remaining
		return
	}
	if cred.Remaining > 0 {
		cred.Remaining--
	}
}

// ReportExhausted takes a credential out of rotation. resetAt is the
// remote's reset hint; when zero the configured reset window applies,
// and without either the credential stays out until externally restored.
func (p *TokenPool) ReportExhausted(cred *domain.Credential, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred.Remaining = 0
	switch {
	case !resetAt.IsZero():
		cred.ExhaustedUntil = resetAt
	case p.opts.ResetWindow > 0:
		cred.ExhaustedUntil = p.now().Add(p.opts.ResetWindow)
	default:
		cred.ExhaustedUntil = time.Time{}
	}

	logger.Warn("credential exhausted",
		"credential", cred.ID,
		"rests_until", cred.ExhaustedUntil)
}

// NextUsableAt returns the earliest instant a credential re-enters
// service. ok is false when no credential will recover on its own.
func (p *TokenPool) NextUsableAt() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var earliest time.Time
	found := false
	for _, cred := range p.creds {
		p.refresh(cred, now)
		if cred.Usable(p.opts.SafetyMargin, now) {
			return now, true
		}
		if cred.ExhaustedUntil.IsZero() {
			continue
		}
		if !found || cred.ExhaustedUntil.Before(earliest) {
			earliest = cred.ExhaustedUntil
			found = true
		}
	}
	return earliest, found
}

// Snapshot returns a copy of every credential's current state, in pool
// order. Used for reporting; mutating the copies has no effect.
func (p *TokenPool) Snapshot() []domain.Credential {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Credential, len(p.creds))
	for i, cred := range p.creds {
		out[i] = *cred
	}
	return out
}

// refresh restores a credential whose exhaustion window has passed.
// The remote resets quota at the window boundary, so the local budget
// goes back to its limit.
func (p *TokenPool) refresh(cred *domain.Credential, now time.Time) {
	if cred.ExhaustedUntil.IsZero() || now.Before(cred.ExhaustedUntil) {
		return
	}
	cred.ExhaustedUntil = time.Time{}
	cred.Remaining = cred.Limit
	logger.Info("credential back in rotation", "credential", cred.ID, "remaining", cred.Remaining)
}
