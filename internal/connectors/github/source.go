package github

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/forgemine/forgemine/internal/core/domain"
	"github.com/forgemine/forgemine/internal/core/ports/driven"
	"github.com/forgemine/forgemine/internal/logger"
)

const (
	// DefaultTimeout bounds a single page fetch, pacing excluded.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the page size for the direct traversals.
	DefaultPageSize = 100

	// DefaultReviewPageSize is the pull request page size for the reviews
	// traversal, kept smaller because every parent fans out to up to 100
	// nested nodes.
	DefaultReviewPageSize = 50

	// DefaultBodyLimit caps record bodies, in runes.
	DefaultBodyLimit = 1000
)

// Options configures a Source.
type Options struct {
	// Owner and Name identify the repository to harvest.
	Owner string
	Name  string

	// PageSize is how many items the issues and pull request traversals
	// request per page. Zero means DefaultPageSize.
	PageSize int

	// ReviewPageSize is how many pull requests the reviews traversal
	// requests per page. Zero means DefaultReviewPageSize.
	ReviewPageSize int

	// Timeout bounds each page fetch. Zero means DefaultTimeout.
	Timeout time.Duration

	// Pacing is the minimum spacing between requests. Zero means
	// DefaultPacing; negative disables pacing.
	Pacing time.Duration

	// BodyLimit caps the body column of every record, in runes. Zero
	// means DefaultBodyLimit; negative disables truncation.
	BodyLimit int

	// APIURL overrides the API endpoint, for GitHub Enterprise or tests.
	// Empty means the public github.com endpoint.
	APIURL string
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	if o.ReviewPageSize == 0 {
		o.ReviewPageSize = DefaultReviewPageSize
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Pacing == 0 {
		o.Pacing = DefaultPacing
	}
	if o.BodyLimit == 0 {
		o.BodyLimit = DefaultBodyLimit
	}
	return o
}

// Ensure Source implements the interface.
var _ driven.PageSource = (*Source)(nil)

// Source fetches pages of one repository's collections over GraphQL.
// It is safe for use by concurrent collection workers; the pacer and the
// client cache are shared.
type Source struct {
	opts    Options
	pacer   *Pacer
	clients *clientCache
}

// NewSource creates a page source for one repository.
func NewSource(opts Options) *Source {
	opts = opts.withDefaults()
	return &Source{
		opts:    opts,
		pacer:   NewPacer(opts.Pacing),
		clients: newClientCache(opts.APIURL),
	}
}

// FetchPage retrieves the page at cursor using the given credential.
func (s *Source) FetchPage(
	ctx context.Context,
	collection domain.Collection,
	cursor domain.PageCursor,
	cred *domain.Credential,
) (*driven.Page, error) {
	// 1. Space the request out behind the shared pacing gate.
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	// 2. Bound the fetch itself.
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	client := s.clients.get(cred)
	vars := s.variables(collection, cursor)

	var (
		page *rawPage
		err  error
	)
	switch collection {
	case domain.CollectionIssues:
		page, err = fetchIssuesPage(ctx, client, vars, s.opts.BodyLimit)
	case domain.CollectionPullRequests:
		page, err = fetchPullRequestsPage(ctx, client, vars, s.opts.BodyLimit)
	case domain.CollectionComments:
		page, err = fetchCommentsPage(ctx, client, vars, s.opts.BodyLimit)
	case domain.CollectionReviews:
		page, err = fetchReviewsPage(ctx, client, vars, s.opts.BodyLimit)
	default:
		return nil, collection.Validate()
	}
	if err != nil {
		return nil, classify(err)
	}

	logger.Debug("page fetched",
		"collection", collection,
		"page", cursor.Seq+1,
		"records", len(page.records),
		"remaining", page.remaining)

	// 3. Advance the cursor past the fetched page.
	return &driven.Page{
		Records: page.records,
		Next: domain.PageCursor{
			Token:     string(page.info.EndCursor),
			Seq:       cursor.Seq + 1,
			Exhausted: !page.info.HasNextPage,
		},
		Remaining: page.remaining,
	}, nil
}

// variables builds the query variables for one page fetch. The cursor
// variable starts null and carries the continuation token afterwards.
func (s *Source) variables(collection domain.Collection, cursor domain.PageCursor) map[string]interface{} {
	perPage := s.opts.PageSize
	if collection == domain.CollectionReviews {
		perPage = s.opts.ReviewPageSize
	}

	vars := map[string]interface{}{
		"owner":   githubv4.String(s.opts.Owner),
		"name":    githubv4.String(s.opts.Name),
		"perPage": githubv4.Int(perPage),
		"cursor":  (*githubv4.String)(nil),
		"orderBy": githubv4.IssueOrder{
			Field:     githubv4.IssueOrderFieldCreatedAt,
			Direction: githubv4.OrderDirectionAsc,
		},
	}
	if cursor.Token != "" {
		vars["cursor"] = githubv4.NewString(githubv4.String(cursor.Token))
	}
	return vars
}
