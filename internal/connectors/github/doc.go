// Package github implements the GraphQL page source for GitHub repositories.
//
// The package fetches issues, pull requests, issue comments and pull request
// reviews from a single repository, one page at a time, and normalises each
// item into the flat records the harvest engine writes out. It is the only
// package that talks to the GitHub API.
//
// # Architecture
//
// The page source follows the driven port pattern defined in
// [driven.PageSource]. It comprises the following components:
//
//   - Source: executes one paginated query per call and converts the
//     response into records and an advanced cursor
//   - clientCache: holds one authenticated GraphQL client per credential,
//     created lazily on first use
//   - Pacer: spaces requests out with a shared token bucket
//   - classify: maps raw transport failures onto the domain error taxonomy
//
// # Authentication
//
// Requests authenticate with personal access tokens carried by
// [domain.Credential] values. Each credential gets its own HTTP client with
// a static OAuth2 token source, so rotating credentials never mutates a
// client another request may be using. Tokens require the 'repo' scope for
// private repositories.
//
// # Pagination
//
// All four collections traverse GraphQL connections ordered by CREATED_AT
// ascending, so a continuation token always points into a stable prefix of
// the dataset. Issues and pull requests page directly. Comments and reviews
// page over their parent connection (issues and pull requests respectively)
// and read up to 100 nested children per parent; parents with more children
// than that have the tail truncated, which mirrors the bulk exports this
// tool replaces.
//
// The cursor handed back with each page is the position that page unlocks.
// Callers persist it only after the page's records are durably written,
// which is what makes a harvest restartable.
//
// # Pacing and Quota
//
// Two independent mechanisms keep the source inside GitHub's limits:
//
//  1. A token bucket spaces requests at the configured pacing interval
//     (default 800ms), shared across all collections in a run.
//
//  2. Every query selects the rateLimit block, and the remaining-points
//     value rides back on the returned page so the credential pool can
//     track each token's budget without extra requests.
//
// # Error Handling
//
// Failures are classified before they leave the package:
//
//   - quota responses (403 with an exhausted limit, 429, secondary limit
//     messages) become [domain.RateLimitedError]
//   - timeouts, dropped connections and 5xx responses become
//     [domain.TransientError]
//   - anything else becomes [domain.TransportError]
//   - context cancellation passes through unwrapped
//
// Page fetches are read-only, so the caller may re-execute the same cursor
// with a different credential after any failure.
//
// # Limitations
//
//   - Nested comments and reviews are capped at 100 per parent
//   - Review comment threads are not descended into (counts only)
//   - GitHub Enterprise endpoints are supported via Options.APIURL but the
//     schema is assumed to match github.com
package github
