package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/llm/claude"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestClaudeComplete(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_CLAUDE_API_KEY")
	if !ok {
		t.Skip("TEST_CLAUDE_API_KEY is not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = ctxlog.With(ctx, logger)

	client, err := claude.New(ctx, apiKey)
	gt.NoError(t, err)

	text, err := client.Complete(ctx, []autoresearch.Message{
		autoresearch.UserMessage("Say hello in one word"),
	}, false)
	gt.NoError(t, err)
	gt.NotEqual(t, 0, len(text))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := claude.New(context.Background(), "")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, autoresearch.ErrInvalidParameter))
}

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int64   `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req messagesRequest)) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		gt.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req messagesRequest
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeMessage(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "test-model",
		"stop_reason": "end_turn",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
}

func TestCompleteWithTestServer(t *testing.T) {
	ctx := context.Background()

	t.Run("system messages go to the system prompt", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req messagesRequest) {
			gt.Equal(t, claude.DefaultModel, req.Model)
			gt.Equal(t, int64(2048), req.MaxTokens)
			gt.Equal(t, 0.3, req.Temperature)
			gt.A(t, req.System).Length(1).Required()
			gt.Equal(t, "be brief", req.System[0].Text)
			gt.A(t, req.Messages).Length(1).Required()
			gt.Equal(t, "user", req.Messages[0].Role)
			writeMessage(w, "  report body  ")
		})

		client, err := claude.New(ctx, "test-key", claude.WithBaseURL(srv.URL+"/"))
		gt.NoError(t, err)

		text, err := client.Complete(ctx, []autoresearch.Message{
			autoresearch.SystemMessage("be brief"),
			autoresearch.UserMessage("write"),
		}, false)
		gt.NoError(t, err)
		gt.Equal(t, "report body", text)
	})

	t.Run("structured request asks for JSON and unwraps code block", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req messagesRequest) {
			gt.A(t, req.System).Length(1).Required()
			gt.True(t, strings.Contains(req.System[0].Text, "JSON object"))
			writeMessage(w, "Here you go:\n```json\n{\"queries\": [\"a\"]}\n```")
		})

		client, err := claude.New(ctx, "test-key", claude.WithBaseURL(srv.URL+"/"))
		gt.NoError(t, err)

		text, err := client.Complete(ctx, []autoresearch.Message{autoresearch.UserMessage("plan")}, true)
		gt.NoError(t, err)
		gt.Equal(t, `{"queries": ["a"]}`, text)
	})

	t.Run("429 is tagged as rate limit", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req messagesRequest) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
		})

		client, err := claude.New(ctx, "test-key", claude.WithBaseURL(srv.URL+"/"))
		gt.NoError(t, err)

		_, err = client.Complete(ctx, []autoresearch.Message{autoresearch.UserMessage("x")}, false)
		gt.Error(t, err)
		gt.True(t, autoresearch.IsRateLimit(err))
	})

	t.Run("bad request is not a rate limit", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, req messagesRequest) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`))
		})

		client, err := claude.New(ctx, "test-key", claude.WithBaseURL(srv.URL+"/"))
		gt.NoError(t, err)

		_, err = client.Complete(ctx, []autoresearch.Message{autoresearch.UserMessage("x")}, false)
		gt.Error(t, err)
		gt.False(t, autoresearch.IsRateLimit(err))
	})
}

func TestRateLimitErrorOptions(t *testing.T) {
	t.Run("429 API error", func(t *testing.T) {
		opts := claude.RateLimitErrorOptions(&anthropic.Error{StatusCode: http.StatusTooManyRequests})
		gt.A(t, opts).Length(1)
		err := goerr.New("wrapped", opts...)
		gt.True(t, goerr.HasTag(err, autoresearch.ErrTagRateLimit))
	})

	t.Run("overloaded is not a rate limit", func(t *testing.T) {
		gt.A(t, claude.RateLimitErrorOptions(&anthropic.Error{StatusCode: 529})).Length(0)
	})

	t.Run("generic error", func(t *testing.T) {
		gt.A(t, claude.RateLimitErrorOptions(errors.New("boom"))).Length(0)
	})
}

func TestExtractJSONFromResponse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"decision": "sufficient"}`,
			want:  `{"decision": "sufficient"}`,
		},
		{
			name:  "code block",
			input: "```json\n{\"decision\": \"refine\"}\n```",
			want:  `{"decision": "refine"}`,
		},
		{
			name:  "surrounding prose",
			input: `Sure. {"queries": ["a {b}"]} Hope this helps.`,
			want:  `{"queries": ["a {b}"]}`,
		},
		{
			name:  "no JSON",
			input: "nothing here",
			want:  "nothing here",
		},
		{
			name:  "truncated",
			input: `{"queries": ["a"`,
			want:  `{"queries": ["a"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, tc.want, claude.ExtractJSONFromResponse(tc.input))
		})
	}
}
