package github

import (
	"context"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// Probe is one credential's live standing as reported by the REST API.
type Probe struct {
	// CredentialID labels the probed credential.
	CredentialID string

	// Login is the authenticated account the credential belongs to.
	Login string

	// Remaining and Limit describe the GraphQL rate limit resource,
	// the budget page fetches draw from.
	Remaining int
	Limit     int

	// ResetAt is when the quota window rolls over.
	ResetAt time.Time

	// Err is the failure that stopped the probe, classified into the
	// domain taxonomy. Nil means the credential is valid.
	Err error
}

// ProbeCredential verifies one credential over REST: it resolves the
// authenticated login and reads the GraphQL rate limit resource. Probes
// cost REST quota, not GraphQL points, so they never eat into the
// harvest budget.
func ProbeCredential(ctx context.Context, cred *domain.Credential, apiURL string) Probe {
	probe := Probe{CredentialID: cred.ID}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token})
	hc := oauth2.NewClient(ctx, ts)
	client := gh.NewClient(hc)
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			probe.Err = err
			return probe
		}
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		probe.Err = classify(err)
		return probe
	}
	probe.Login = user.GetLogin()

	limits, _, err := client.RateLimit.Get(ctx)
	if err != nil {
		probe.Err = classify(err)
		return probe
	}
	if gql := limits.GetGraphQL(); gql != nil {
		probe.Remaining = gql.Remaining
		probe.Limit = gql.Limit
		probe.ResetAt = gql.Reset.Time
	}

	return probe
}

// RepoOverview is headline data about the target repository.
type RepoOverview struct {
	NameWithOwner string
	Description   string
	Stars         int
	Forks         int
	Issues        int
	PullRequests  int
}

// Overview fetches the repository's headline numbers with the given
// credential. Used before a harvest to confirm the target resolves and
// to show the scale of the job ahead.
func (s *Source) Overview(ctx context.Context, cred *domain.Credential) (*RepoOverview, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var query struct {
		Repository struct {
			NameWithOwner  string
			Description    string
			StargazerCount int
			ForkCount      int
			Issues         totalCount
			PullRequests   totalCount
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]interface{}{
		"owner": githubv4.String(s.opts.Owner),
		"name":  githubv4.String(s.opts.Name),
	}

	if err := s.clients.get(cred).Query(ctx, &query, vars); err != nil {
		return nil, classify(err)
	}

	return &RepoOverview{
		NameWithOwner: query.Repository.NameWithOwner,
		Description:   query.Repository.Description,
		Stars:         query.Repository.StargazerCount,
		Forks:         query.Repository.ForkCount,
		Issues:        query.Repository.Issues.TotalCount,
		PullRequests:  query.Repository.PullRequests.TotalCount,
	}, nil
}
