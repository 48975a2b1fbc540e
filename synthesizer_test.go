package autoresearch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/internal"
	"github.com/m-mizutani/gt"
)

func TestSynthesize(t *testing.T) {
	ctx := internal.TestContext()

	t.Run("deduplicates by URL and emits the report", func(t *testing.T) {
		state := autoresearch.NewState("quantum computing")
		state.SearchResults = []autoresearch.Result{
			{Title: "A", URL: "https://a", Content: "first"},
			{Title: "B", URL: "https://b", Content: "second"},
			{Title: "A again", URL: "https://a", Content: "dup"},
		}

		var prompt string
		agent := autoresearch.New(stepLLM{
			synthesizer: func(ctx context.Context, messages []autoresearch.Message) (string, error) {
				prompt = messages[1].Content
				return "## Summary\nqubits", nil
			},
		}.mock(), fixedSearcher(0))

		d := agent.Synthesize(ctx, state)
		next := state.Merge(d)

		gt.Equal(t, "## Summary\nqubits", next.FinalReport)
		gt.Equal(t, []autoresearch.EventKind{
			autoresearch.EventSynthesizing,
			autoresearch.EventSynthesizing,
			autoresearch.EventReport,
		}, kinds(d.Events))
		gt.Equal(t, []string{
			"Synthesizing report from 2 unique sources...",
			"Report complete.",
			"## Summary\nqubits",
		}, contents(d.Events))
		gt.True(t, strings.Contains(prompt, "URL: https://a"))
		gt.False(t, strings.Contains(prompt, "dup"))
	})

	t.Run("caps sources and truncates content", func(t *testing.T) {
		state := autoresearch.NewState("topic")
		for i := range 20 {
			state.SearchResults = append(state.SearchResults, autoresearch.Result{
				URL:     fmt.Sprintf("https://example.com/%d", i),
				Content: strings.Repeat("z", 1000),
			})
		}

		var prompt string
		agent := autoresearch.New(stepLLM{
			synthesizer: func(ctx context.Context, messages []autoresearch.Message) (string, error) {
				prompt = messages[1].Content
				return "report", nil
			},
		}.mock(), fixedSearcher(0))

		d := agent.Synthesize(ctx, state)
		gt.Equal(t, "Synthesizing report from 20 unique sources...", d.Events[0].Content)
		gt.Equal(t, 15, strings.Count(prompt, "URL: https://example.com/"))
		gt.Equal(t, 15, strings.Count(prompt, "Title: Unknown"))
		gt.True(t, strings.Contains(prompt, "Content: "+strings.Repeat("z", 600)+"\n"))
		gt.False(t, strings.Contains(prompt, strings.Repeat("z", 601)))
	})

	t.Run("rate limit leaves the report empty", func(t *testing.T) {
		state := autoresearch.NewState("topic")
		state.SearchResults = []autoresearch.Result{{URL: "https://a"}}
		agent := autoresearch.New(stepLLM{synthesizer: fail(newRateLimitError())}.mock(), fixedSearcher(0))

		d := agent.Synthesize(ctx, state)
		next := state.Merge(d)

		gt.Equal(t, "", next.FinalReport)
		gt.A(t, d.Events).Length(2).Required()
		gt.Equal(t, autoresearch.EventError, d.Events[1].Kind)
		gt.Equal(t, autoresearch.RateLimitMessage, d.Events[1].Content)
	})

	t.Run("other failure emits generic error", func(t *testing.T) {
		state := autoresearch.NewState("topic")
		agent := autoresearch.New(stepLLM{synthesizer: fail(errors.New("500"))}.mock(), fixedSearcher(0))

		d := agent.Synthesize(ctx, state)
		gt.Equal(t, "Synthesizing report from 0 unique sources...", d.Events[0].Content)
		gt.Equal(t, autoresearch.EventError, d.Events[1].Kind)
		gt.Equal(t, autoresearch.SynthesisFailedMessage, d.Events[1].Content)
		gt.Equal(t, "", state.Merge(d).FinalReport)
	})
}

func TestDedupeByURL(t *testing.T) {
	results := []autoresearch.Result{
		{Title: "1", URL: "https://a"},
		{Title: "2", URL: "https://b"},
		{Title: "3", URL: "https://a"},
		{Title: "4", URL: "https://a/"},
		{Title: "5", URL: ""},
		{Title: "6", URL: ""},
	}

	unique := autoresearch.DedupeByURL(results)
	titles := make([]string, 0, len(unique))
	for _, r := range unique {
		titles = append(titles, r.Title)
	}
	gt.Equal(t, []string{"1", "2", "4", "5", "6"}, titles)
}
