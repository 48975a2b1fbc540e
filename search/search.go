package search

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/goerr/v2"
)

// Provider is the name of a search backend.
type Provider string

const (
	ProviderTavily Provider = "tavily"
	ProviderBrave  Provider = "brave"
)

// Providers lists the supported providers.
var Providers = []Provider{ProviderTavily, ProviderBrave}

const defaultTimeout = 10 * time.Second

type config struct {
	endpoint   string
	httpClient *http.Client
	depth      string
}

// Option configures a search backend.
type Option func(*config)

// WithEndpoint overrides the API endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the HTTP client. The default has a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithDepth sets the Tavily search depth, "basic" or "advanced". Ignored by Brave.
func WithDepth(depth string) Option {
	return func(c *config) {
		c.depth = depth
	}
}

func newConfig(endpoint string, options []Option) config {
	c := config{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		depth:      "basic",
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// New creates the backend named by provider.
func New(provider Provider, apiKey string, options ...Option) (autoresearch.Searcher, error) {
	switch provider {
	case ProviderTavily:
		t, err := NewTavily(apiKey, options...)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ProviderBrave:
		b, err := NewBrave(apiKey, options...)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown search provider",
			goerr.V("provider", provider))
	}
}

// statusError converts a non-200 response into an error. 429 is tagged as
// rate limit so that the retry policy does not hammer the provider.
func statusError(provider Provider, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	opts := []goerr.Option{
		goerr.V("provider", provider),
		goerr.V("status", resp.StatusCode),
		goerr.V("body", string(body)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		opts = append(opts, goerr.Tag(autoresearch.ErrTagRateLimit))
	}
	return goerr.New(fmt.Sprintf("%s http %d", provider, resp.StatusCode), opts...)
}

func clampResults(results []autoresearch.Result, maxResults int) []autoresearch.Result {
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
