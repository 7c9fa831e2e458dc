package domain

import "time"

// Credential is an API token with a tracked request budget.
type Credential struct {
	// ID labels the credential in logs and reports.
	// The token itself is never logged.
	ID string

	// Token is the secret used to authenticate requests.
	Token string

	// Remaining is the number of requests believed to be left
	// in the current quota window.
	Remaining int

	// Limit is the budget the credential started the window with.
	Limit int

	// ExhaustedUntil marks the credential unusable until this instant.
	// Zero means the credential is not inside an exhaustion window.
	ExhaustedUntil time.Time
}

// Usable reports whether the credential can serve a request at now,
// keeping margin requests in reserve.
func (c *Credential) Usable(margin int, now time.Time) bool {
	if !c.ExhaustedUntil.IsZero() && now.Before(c.ExhaustedUntil) {
		return false
	}
	return c.Remaining > margin
}
