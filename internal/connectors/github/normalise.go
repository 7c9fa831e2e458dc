package github

import (
	"time"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// record flattens an issue node into its collection row.
func (n issueNode) record(bodyLimit int) domain.Issue {
	return domain.Issue{
		ID:             n.ID,
		Number:         n.Number,
		Title:          n.Title,
		Body:           truncateBody(n.Body, bodyLimit),
		State:          n.State,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		ClosedAt:       timeOrZero(n.ClosedAt),
		Author:         n.Author.Login,
		Assignees:      logins(n.Assignees.Nodes),
		Labels:         labelNames(n.Labels.Nodes),
		CommentsCount:  n.Comments.TotalCount,
		ReactionsCount: n.Reactions.TotalCount,
	}
}

// record flattens a pull request node into its collection row.
func (n pullRequestNode) record(bodyLimit int) domain.PullRequest {
	return domain.PullRequest{
		ID:             n.ID,
		Number:         n.Number,
		Title:          n.Title,
		Body:           truncateBody(n.Body, bodyLimit),
		State:          n.State,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		ClosedAt:       timeOrZero(n.ClosedAt),
		Author:         n.Author.Login,
		Assignees:      logins(n.Assignees.Nodes),
		Labels:         labelNames(n.Labels.Nodes),
		CommentsCount:  n.Comments.TotalCount,
		ReactionsCount: n.Reactions.TotalCount,
		MergedAt:       timeOrZero(n.MergedAt),
		Merged:         n.Merged,
		ReviewsCount:   n.Reviews.TotalCount,
		Additions:      n.Additions,
		Deletions:      n.Deletions,
		ChangedFiles:   n.ChangedFiles,
	}
}

// record flattens a comment node, carrying its parent issue's number and
// title so the row stands on its own.
func (n commentNode) record(issueNumber int, issueTitle string, bodyLimit int) domain.Comment {
	return domain.Comment{
		ID:             n.ID,
		Body:           truncateBody(n.Body, bodyLimit),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		Author:         n.Author.Login,
		IssueNumber:    issueNumber,
		IssueTitle:     issueTitle,
		ReactionsCount: n.Reactions.TotalCount,
	}
}

// record flattens a review node, carrying its parent pull request's
// number and title.
func (n reviewNode) record(prNumber int, prTitle string, bodyLimit int) domain.Review {
	return domain.Review{
		ID:            n.ID,
		Body:          truncateBody(n.Body, bodyLimit),
		State:         n.State,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		Author:        n.Author.Login,
		PRNumber:      prNumber,
		PRTitle:       prTitle,
		CommentsCount: n.Comments.TotalCount,
	}
}

// truncateBody caps a body at limit runes. The limit is measured in runes
// rather than bytes so multibyte text is never split mid-character.
// A non-positive limit leaves the body untouched.
func truncateBody(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// timeOrZero dereferences an optional timestamp. Null timestamps render
// as empty columns.
func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func logins(actors []actor) []string {
	if len(actors) == 0 {
		return nil
	}
	names := make([]string, 0, len(actors))
	for _, a := range actors {
		names = append(names, a.Login)
	}
	return names
}

func labelNames(labels []labelNode) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}
