package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/search"
	"github.com/m-mizutani/gt"
)

func TestTavilyLive(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_TAVILY_API_KEY")
	if !ok {
		t.Skip("TEST_TAVILY_API_KEY is not set")
	}

	client, err := search.NewTavily(apiKey)
	gt.NoError(t, err)

	results, err := client.Search(context.Background(), "golang release notes", 3)
	gt.NoError(t, err)
	gt.True(t, len(results) <= 3)
}

func TestTavily(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results and sends query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, http.MethodPost, r.Method)
			gt.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

			var req struct {
				Query      string `json:"query"`
				MaxResults int    `json:"max_results"`
			}
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gt.Equal(t, "quantum computing overview", req.Query)
			gt.Equal(t, 2, req.MaxResults)

			_, _ = w.Write([]byte(`{"results": [
				{"title": "A", "url": "https://a.example", "content": "alpha"},
				{"title": "B", "url": "https://b.example", "content": "beta"},
				{"title": "C", "url": "https://c.example", "content": "gamma"}
			]}`))
		}))
		defer srv.Close()

		client, err := search.NewTavily("tvly-key", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		results, err := client.Search(ctx, "quantum computing overview", 2)
		gt.NoError(t, err)
		gt.A(t, results).Length(2).Required()
		gt.Equal(t, autoresearch.Result{Title: "A", URL: "https://a.example", Content: "alpha"}, results[0])
		gt.Equal(t, "https://b.example", results[1].URL)
	})

	t.Run("no hits is an empty slice", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": []}`))
		}))
		defer srv.Close()

		client, err := search.NewTavily("tvly-key", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		results, err := client.Search(ctx, "nothing", 5)
		gt.NoError(t, err)
		gt.NotNil(t, results)
		gt.Equal(t, 0, len(results))
	})

	t.Run("429 is tagged as rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, err := search.NewTavily("tvly-key", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		_, err = client.Search(ctx, "q", 5)
		gt.Error(t, err)
		gt.True(t, autoresearch.IsRateLimit(err))
	})

	t.Run("server error is not a rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := search.NewTavily("tvly-key", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		_, err = client.Search(ctx, "q", 5)
		gt.Error(t, err)
		gt.False(t, autoresearch.IsRateLimit(err))
	})
}

func TestBrave(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results and sends query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, http.MethodGet, r.Method)
			gt.Equal(t, "brave-key-1", r.Header.Get("X-Subscription-Token"))
			gt.Equal(t, "rust ownership", r.URL.Query().Get("q"))
			gt.Equal(t, "5", r.URL.Query().Get("count"))

			_, _ = w.Write([]byte(`{"web": {"results": [
				{"title": "Ownership", "url": "https://doc.rust-lang.org", "description": "borrowing"}
			]}}`))
		}))
		defer srv.Close()

		client, err := search.NewBrave("brave-key-1", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		results, err := client.Search(ctx, "rust ownership", 5)
		gt.NoError(t, err)
		gt.A(t, results).Length(1).Required()
		gt.Equal(t, "borrowing", results[0].Content)
	})

	t.Run("429 is tagged as rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, err := search.NewBrave("brave-key-2", search.WithEndpoint(srv.URL))
		gt.NoError(t, err)

		_, err = client.Search(ctx, "q", 5)
		gt.Error(t, err)
		gt.True(t, autoresearch.IsRateLimit(err))
	})

	t.Run("cancelled context while waiting for limiter", func(t *testing.T) {
		client, err := search.NewBrave("brave-key-3", search.WithEndpoint("http://127.0.0.1:0"))
		gt.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = client.Search(cctx, "q", 5)
		gt.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Run("known providers", func(t *testing.T) {
		for _, p := range search.Providers {
			s, err := search.New(p, "key")
			gt.NoError(t, err)
			gt.NotNil(t, s)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := search.New(search.ProviderTavily, " ")
		gt.True(t, errors.Is(err, autoresearch.ErrInvalidParameter))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := search.New("bing", "key")
		gt.True(t, errors.Is(err, autoresearch.ErrInvalidParameter))
	})
}
