package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// BraveEndpoint is the web search endpoint of the Brave Search API.
const BraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// braveMaxCount is the upper bound of the count parameter.
const braveMaxCount = 20

// Brave allows one request per second per API key. All Brave instances
// sharing a key share one limiter.
var (
	braveLimitersMu sync.Mutex
	braveLimiters   = map[string]*rate.Limiter{}
)

func braveLimiterFor(apiKey string) *rate.Limiter {
	braveLimitersMu.Lock()
	defer braveLimitersMu.Unlock()
	l, ok := braveLimiters[apiKey]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 1)
		braveLimiters[apiKey] = l
	}
	return l
}

// Brave uses the Brave Search API.
type Brave struct {
	apiKey  string
	limiter *rate.Limiter
	config
}

// NewBrave constructs a Brave search backend.
func NewBrave(apiKey string, options ...Option) (*Brave, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "API key is required for Brave")
	}
	return &Brave{
		apiKey:  apiKey,
		limiter: braveLimiterFor(apiKey),
		config:  newConfig(BraveEndpoint, options),
	}, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements autoresearch.Searcher.
func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]autoresearch.Result, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "interrupted while waiting for Brave rate limit")
	}

	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid Brave endpoint", goerr.V("endpoint", b.endpoint))
	}
	q := u.Query()
	q.Set("q", query)
	if maxResults > 0 {
		q.Set("count", strconv.Itoa(min(maxResults, braveMaxCount)))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Brave request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call Brave", goerr.V("query", query))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ProviderBrave, resp)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode Brave response", goerr.V("query", query))
	}

	results := make([]autoresearch.Result, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		results = append(results, autoresearch.Result{Title: r.Title, URL: r.URL, Content: r.Description})
	}
	return clampResults(results, maxResults), nil
}
