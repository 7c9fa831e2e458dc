package github

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// pageInfo mirrors the connection pageInfo block every traversal selects.
type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

// rateLimit mirrors the quota block every traversal selects. Remaining
// counts GraphQL points, which is what the credential pool budgets
// against, so each page fetch refreshes the pool for free.
type rateLimit struct {
	Remaining int
	ResetAt   time.Time
}

// actor is the author fragment. Deleted accounts come back null and
// unmarshal to the zero value, flattening to an empty login.
type actor struct {
	Login string
}

// labelNode is one label name in a label connection.
type labelNode struct {
	Name string
}

// totalCount selects only the size of a connection.
type totalCount struct {
	TotalCount int
}

// issueNode is one issue as selected by the issues traversal.
type issueNode struct {
	ID        string
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	Author    actor
	Assignees struct {
		Nodes []actor
	} `graphql:"assignees(first: 10)"`
	Labels struct {
		Nodes []labelNode
	} `graphql:"labels(first: 20)"`
	Comments  totalCount
	Reactions totalCount
}

// pullRequestNode is one pull request as selected by the pull request
// traversal. It extends the issue selection with merge and diff detail.
type pullRequestNode struct {
	ID        string
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	MergedAt  *time.Time
	Merged    bool
	Author    actor
	Assignees struct {
		Nodes []actor
	} `graphql:"assignees(first: 10)"`
	Labels struct {
		Nodes []labelNode
	} `graphql:"labels(first: 20)"`
	Comments     totalCount
	Reactions    totalCount
	Reviews      totalCount
	Additions    int
	Deletions    int
	ChangedFiles int
}

// commentNode is one issue comment as selected by the comments traversal.
type commentNode struct {
	ID        string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    actor
	Reactions totalCount
}

// reviewNode is one pull request review as selected by the reviews
// traversal.
type reviewNode struct {
	ID        string
	Body      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    actor
	Comments  totalCount
}

// rawPage carries one query's worth of records plus the traversal state
// needed to advance the cursor.
type rawPage struct {
	records   []domain.Record
	info      pageInfo
	remaining int
}

func fetchIssuesPage(
	ctx context.Context, client *githubv4.Client, vars map[string]interface{}, bodyLimit int,
) (*rawPage, error) {
	var query struct {
		Repository struct {
			Issues struct {
				Nodes    []issueNode
				PageInfo pageInfo
			} `graphql:"issues(first: $perPage, after: $cursor, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
		RateLimit rateLimit `graphql:"rateLimit"`
	}

	if err := client.Query(ctx, &query, vars); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(query.Repository.Issues.Nodes))
	for _, node := range query.Repository.Issues.Nodes {
		records = append(records, node.record(bodyLimit))
	}

	return &rawPage{
		records:   records,
		info:      query.Repository.Issues.PageInfo,
		remaining: query.RateLimit.Remaining,
	}, nil
}

func fetchPullRequestsPage(
	ctx context.Context, client *githubv4.Client, vars map[string]interface{}, bodyLimit int,
) (*rawPage, error) {
	var query struct {
		Repository struct {
			PullRequests struct {
				Nodes    []pullRequestNode
				PageInfo pageInfo
			} `graphql:"pullRequests(first: $perPage, after: $cursor, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
		RateLimit rateLimit `graphql:"rateLimit"`
	}

	if err := client.Query(ctx, &query, vars); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(query.Repository.PullRequests.Nodes))
	for _, node := range query.Repository.PullRequests.Nodes {
		records = append(records, node.record(bodyLimit))
	}

	return &rawPage{
		records:   records,
		info:      query.Repository.PullRequests.PageInfo,
		remaining: query.RateLimit.Remaining,
	}, nil
}

// fetchCommentsPage pages over issues and flattens up to 100 nested
// comments per issue. The cursor tracks the outer issue connection.
func fetchCommentsPage(
	ctx context.Context, client *githubv4.Client, vars map[string]interface{}, bodyLimit int,
) (*rawPage, error) {
	var query struct {
		Repository struct {
			Issues struct {
				Nodes []struct {
					Number   int
					Title    string
					Comments struct {
						Nodes []commentNode
					} `graphql:"comments(first: 100)"`
				}
				PageInfo pageInfo
			} `graphql:"issues(first: $perPage, after: $cursor, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
		RateLimit rateLimit `graphql:"rateLimit"`
	}

	if err := client.Query(ctx, &query, vars); err != nil {
		return nil, err
	}

	var records []domain.Record
	for _, issue := range query.Repository.Issues.Nodes {
		for _, node := range issue.Comments.Nodes {
			records = append(records, node.record(issue.Number, issue.Title, bodyLimit))
		}
	}

	return &rawPage{
		records:   records,
		info:      query.Repository.Issues.PageInfo,
		remaining: query.RateLimit.Remaining,
	}, nil
}

// fetchReviewsPage pages over pull requests and flattens up to 100 nested
// reviews per pull request. The cursor tracks the outer pull request
// connection.
func fetchReviewsPage(
	ctx context.Context, client *githubv4.Client, vars map[string]interface{}, bodyLimit int,
) (*rawPage, error) {
	var query struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number  int
					Title   string
					Reviews struct {
						Nodes []reviewNode
					} `graphql:"reviews(first: 100)"`
				}
				PageInfo pageInfo
			} `graphql:"pullRequests(first: $perPage, after: $cursor, orderBy: $orderBy)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
		RateLimit rateLimit `graphql:"rateLimit"`
	}

	if err := client.Query(ctx, &query, vars); err != nil {
		return nil, err
	}

	var records []domain.Record
	for _, pr := range query.Repository.PullRequests.Nodes {
		for _, node := range pr.Reviews.Nodes {
			records = append(records, node.record(pr.Number, pr.Title, bodyLimit))
		}
	}

	return &rawPage{
		records:   records,
		info:      query.Repository.PullRequests.PageInfo,
		remaining: query.RateLimit.Remaining,
	}, nil
}
