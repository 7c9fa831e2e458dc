package domain

import "fmt"

// Collection identifies one harvestable dataset of a repository.
type Collection string

const (
	CollectionIssues       Collection = "issues"
	CollectionPullRequests Collection = "pull_requests"
	CollectionComments     Collection = "comments"
	CollectionReviews      Collection = "reviews"
)

// AllCollections returns every collection in harvest order.
func AllCollections() []Collection {
	return []Collection{
		CollectionIssues,
		CollectionPullRequests,
		CollectionComments,
		CollectionReviews,
	}
}

// ParseCollection converts a string into a Collection.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// Validate checks that the collection is a known dataset.
func (c Collection) Validate() error {
	switch c {
	case CollectionIssues, CollectionPullRequests, CollectionComments, CollectionReviews:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
}

// Filename returns the record file name for the collection.
func (c Collection) Filename() string {
	return string(c) + ".csv"
}

// Header returns the record file column names, in row order.
func (c Collection) Header() []string {
	switch c {
	case CollectionIssues:
		return []string{
			"id", "number", "title", "body", "state",
			"created_at", "updated_at", "closed_at", "author",
			"assignees", "labels", "comments_count", "reactions_count",
		}
	case CollectionPullRequests:
		return []string{
			"id", "number", "title", "body", "state",
			"created_at", "updated_at", "closed_at", "author",
			"assignees", "labels", "comments_count", "reactions_count",
			"merged_at", "merged", "reviews_count",
			"additions", "deletions", "changed_files",
		}
	case CollectionComments:
		return []string{
			"id", "body", "created_at", "updated_at", "author",
			"issue_number", "issue_title", "reactions_count",
		}
	case CollectionReviews:
		return []string{
			"id", "body", "state", "created_at", "updated_at", "author",
			"pr_number", "pr_title", "comments_count",
		}
	}
	return nil
}

func (c Collection) String() string {
	return string(c)
}
