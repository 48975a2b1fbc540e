package autoresearch_test

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/mock"
	"github.com/m-mizutani/goerr/v2"
)

func fastPolicy() autoresearch.RetryPolicy {
	return autoresearch.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Classify:    autoresearch.FailFastOnRateLimit,
	}
}

func newRateLimitError() error {
	return goerr.New("429 Too Many Requests", goerr.Tag(autoresearch.ErrTagRateLimit))
}

type completeFunc func(ctx context.Context, messages []autoresearch.Message) (string, error)

// stepLLM routes a completion request to the function of the step that sent
// it. A nil function fails the call.
type stepLLM struct {
	planner     completeFunc
	reflector   completeFunc
	synthesizer completeFunc
}

func (s stepLLM) mock() *mock.CompleterMock {
	return &mock.CompleterMock{
		CompleteFunc: func(ctx context.Context, messages []autoresearch.Message, structured bool) (string, error) {
			var f completeFunc
			switch messages[0].Content {
			case autoresearch.PlannerSystemPrompt:
				f = s.planner
			case autoresearch.ReflectorSystemPrompt:
				f = s.reflector
			case autoresearch.SynthesizerSystemPrompt:
				f = s.synthesizer
			}
			if f == nil {
				return "", goerr.New("unexpected completion call")
			}
			return f(ctx, messages)
		},
	}
}

func reply(text string) completeFunc {
	return func(ctx context.Context, messages []autoresearch.Message) (string, error) {
		return text, nil
	}
}

func fail(err error) completeFunc {
	return func(ctx context.Context, messages []autoresearch.Message) (string, error) {
		return "", err
	}
}

// fixedSearcher returns n results per query with URLs derived from the query.
func fixedSearcher(n int) *mock.SearcherMock {
	return &mock.SearcherMock{
		SearchFunc: func(ctx context.Context, query string, maxResults int) ([]autoresearch.Result, error) {
			results := make([]autoresearch.Result, 0, n)
			for i := range n {
				results = append(results, autoresearch.Result{
					Title:   fmt.Sprintf("%s #%d", query, i),
					URL:     fmt.Sprintf("https://example.com/%s/%d", query, i),
					Content: "content of " + query,
				})
			}
			return results, nil
		},
	}
}

func contents(events []autoresearch.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Content)
	}
	return out
}

func kinds(events []autoresearch.Event) []autoresearch.EventKind {
	out := make([]autoresearch.EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}
