package github

import (
	"context"
	"sync"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/forgemine/forgemine/internal/core/domain"
)

// clientCache hands out one GraphQL client per credential. Clients are
// built lazily on first use and reused for the rest of the run, so
// credential rotation does not tear down connections on every page.
type clientCache struct {
	mu     sync.Mutex
	apiURL string
	byID   map[string]*githubv4.Client
}

func newClientCache(apiURL string) *clientCache {
	return &clientCache{
		apiURL: apiURL,
		byID:   make(map[string]*githubv4.Client),
	}
}

// get returns the GraphQL client for the credential, building it on first
// use. The client authenticates with a static token source, so it never
// mutates once handed out.
func (c *clientCache) get(cred *domain.Credential) *githubv4.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.byID[cred.ID]; ok {
		return client
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token})
	hc := oauth2.NewClient(context.Background(), ts)

	var client *githubv4.Client
	if c.apiURL == "" {
		client = githubv4.NewClient(hc)
	} else {
		client = githubv4.NewEnterpriseClient(c.apiURL, hc)
	}
	c.byID[cred.ID] = client
	return client
}
