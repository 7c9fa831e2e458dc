package domain

import (
	"strconv"
	"strings"
	"time"
)

// Record is a single flattened row destined for a collection's record file.
type Record interface {
	// Collection returns the dataset the record belongs to.
	Collection() Collection

	// Key returns the remote identifier. An empty key marks the record
	// malformed; malformed records are skipped, never written.
	Key() string

	// Row returns the CSV fields, aligned with Collection().Header().
	Row() []string
}

// Issue is a harvested issue.
type Issue struct {
	ID             string
	Number         int
	Title          string
	Body           string
	State          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       time.Time
	Author         string
	Assignees      []string
	Labels         []string
	CommentsCount  int
	ReactionsCount int
}

func (r Issue) Collection() Collection { return CollectionIssues }

func (r Issue) Key() string { return r.ID }

func (r Issue) Row() []string {
	return []string{
		r.ID,
		strconv.Itoa(r.Number),
		r.Title,
		r.Body,
		r.State,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		formatTime(r.ClosedAt),
		r.Author,
		strings.Join(r.Assignees, ","),
		strings.Join(r.Labels, ","),
		strconv.Itoa(r.CommentsCount),
		strconv.Itoa(r.ReactionsCount),
	}
}

// PullRequest is a harvested pull request. It carries the issue columns
// plus merge and review detail.
type PullRequest struct {
	ID             string
	Number         int
	Title          string
	Body           string
	State          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       time.Time
	Author         string
	Assignees      []string
	Labels         []string
	CommentsCount  int
	ReactionsCount int
	MergedAt       time.Time
	Merged         bool
	ReviewsCount   int
	Additions      int
	Deletions      int
	ChangedFiles   int
}

func (r PullRequest) Collection() Collection { return CollectionPullRequests }

func (r PullRequest) Key() string { return r.ID }

func (r PullRequest) Row() []string {
	return []string{
		r.ID,
		strconv.Itoa(r.Number),
		r.Title,
		r.Body,
		r.State,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		formatTime(r.ClosedAt),
		r.Author,
		strings.Join(r.Assignees, ","),
		strings.Join(r.Labels, ","),
		strconv.Itoa(r.CommentsCount),
		strconv.Itoa(r.ReactionsCount),
		formatTime(r.MergedAt),
		strconv.FormatBool(r.Merged),
		strconv.Itoa(r.ReviewsCount),
		strconv.Itoa(r.Additions),
		strconv.Itoa(r.Deletions),
		strconv.Itoa(r.ChangedFiles),
	}
}

// Comment is a harvested issue comment. It carries the number and title
// of the issue it belongs to, so rows stand on their own.
type Comment struct {
	ID             string
	Body           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Author         string
	IssueNumber    int
	IssueTitle     string
	ReactionsCount int
}

func (r Comment) Collection() Collection { return CollectionComments }

func (r Comment) Key() string { return r.ID }

func (r Comment) Row() []string {
	return []string{
		r.ID,
		r.Body,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		r.Author,
		strconv.Itoa(r.IssueNumber),
		r.IssueTitle,
		strconv.Itoa(r.ReactionsCount),
	}
}

// Review is a harvested pull request review. It carries the number and
// title of the pull request it belongs to.
type Review struct {
	ID            string
	Body          string
	State         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Author        string
	PRNumber      int
	PRTitle       string
	CommentsCount int
}

func (r Review) Collection() Collection { return CollectionReviews }

func (r Review) Key() string { return r.ID }

func (r Review) Row() []string {
	return []string{
		r.ID,
		r.Body,
		r.State,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		r.Author,
		strconv.Itoa(r.PRNumber),
		r.PRTitle,
		strconv.Itoa(r.CommentsCount),
	}
}

// formatTime renders a timestamp for a record file. The zero time
// renders as empty: the remote field was null.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
