package autoresearch

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxResults is the number of hits requested per query.
const DefaultMaxResults = 5

// Searcher is a web-search capability. It returns an empty slice, not an
// error, when nothing matches.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// SearchClient wraps a Searcher so that a blocking backend never holds up a
// cancelled run, and retries transient backend failures.
type SearchClient struct {
	backend Searcher
	policy  RetryPolicy
}

// SearchOption configures a SearchClient.
type SearchOption func(*SearchClient)

// WithSearchRetryPolicy replaces DefaultSearchRetryPolicy.
func WithSearchRetryPolicy(p RetryPolicy) SearchOption {
	return func(c *SearchClient) {
		c.policy = p
	}
}

// NewSearchClient creates a SearchClient on top of backend.
func NewSearchClient(backend Searcher, options ...SearchOption) *SearchClient {
	c := &SearchClient{
		backend: backend,
		policy:  DefaultSearchRetryPolicy(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type searchOutcome struct {
	results []Result
	err     error
}

// Search runs the query on the backend. The call itself happens on a separate
// goroutine; Search returns as soon as either the backend answers or ctx is done.
func (c *SearchClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	return retry(ctx, c.policy, "search", func(ctx context.Context) ([]Result, error) {
		ch := make(chan searchOutcome, 1)
		go func() {
			results, err := c.backend.Search(ctx, query, maxResults)
			ch <- searchOutcome{results: results, err: err}
		}()

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "search interrupted", goerr.V("query", query))
		case out := <-ch:
			if out.err != nil {
				return nil, out.err
			}
			if out.results == nil {
				return []Result{}, nil
			}
			if len(out.results) > maxResults {
				out.results = out.results[:maxResults]
			}
			return out.results, nil
		}
	})
}
