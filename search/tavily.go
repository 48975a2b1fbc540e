package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/goerr/v2"
)

// TavilyEndpoint is the search endpoint of the Tavily API.
const TavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey string
	config
}

// NewTavily constructs a Tavily search backend.
func NewTavily(apiKey string, options ...Option) (*Tavily, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "API key is required for Tavily")
	}
	return &Tavily{apiKey: apiKey, config: newConfig(TavilyEndpoint, options)}, nil
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements autoresearch.Searcher.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]autoresearch.Result, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: t.depth,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal Tavily request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Tavily request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call Tavily", goerr.V("query", query))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ProviderTavily, resp)
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode Tavily response", goerr.V("query", query))
	}

	results := make([]autoresearch.Result, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, autoresearch.Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return clampResults(results, maxResults), nil
}
