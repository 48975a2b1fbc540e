package autoresearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// MaxRefineIterations is the iteration count at which the reflector stops
	// accepting refine requests.
	MaxRefineIterations = 2

	reflectionResultLimit  = 12
	reflectionContentLimit = 300
)

const (
	DecisionSufficient = "sufficient"
	DecisionRefine     = "refine"
)

const (
	rateLimitReasoning = "Rate limit reached, proceeding with available results"
	fallbackReasoning  = "Proceeding with available results"
)

// Reflection is the structured verdict requested from the completion service.
type Reflection struct {
	Decision       string   `json:"decision"`
	Reasoning      string   `json:"reasoning"`
	RefinedQueries []string `json:"refined_queries"`
}

// reflect judges whether the accumulated results are enough. Every failure
// resolves to "sufficient" so the loop always moves toward synthesis.
func (x *Agent) reflect(ctx context.Context, s State) Delta {
	logger := ctxlog.From(ctx)
	iteration := s.IterationCount
	logger.Info("reflecting",
		slog.Int("results", len(s.SearchResults)),
		slog.Int("iteration", iteration),
	)

	var d Delta
	d.emit(EventReflecting, fmt.Sprintf("Evaluating %d search results for adequacy...", len(s.SearchResults)))

	r, err := x.evaluate(ctx, s)
	switch {
	case IsRateLimit(err):
		logger.Error("reflection hit rate limit", slog.Any("error", err))
		r = Reflection{Decision: DecisionSufficient, Reasoning: rateLimitReasoning}
	case err != nil:
		logger.Error("reflection failed", slog.Any("error", err))
		r = Reflection{Decision: DecisionSufficient, Reasoning: fallbackReasoning}
	}

	refined := cleanQueries(r.RefinedQueries, MaxPlannedQueries)
	d.IterationCount = ptr(iteration + 1)

	if r.Decision == DecisionRefine && iteration < MaxRefineIterations && len(refined) > 0 {
		d.emit(EventReflecting, "Results need improvement: "+r.Reasoning)
		d.emit(EventReflecting, fmt.Sprintf("Refining search with %d new queries...", len(refined)))
		d.ReflectionSufficient = ptr(false)
		d.PlannedQueries = &refined
		return d
	}

	d.emit(EventReflecting, "Results are sufficient: "+r.Reasoning)
	d.emit(EventReflecting, "Proceeding to report synthesis...")
	d.ReflectionSufficient = ptr(true)
	d.PlannedQueries = ptr([]string{})
	return d
}

func (x *Agent) evaluate(ctx context.Context, s State) (Reflection, error) {
	summary := make([]Result, 0, min(len(s.SearchResults), reflectionResultLimit))
	for _, r := range s.SearchResults[:min(len(s.SearchResults), reflectionResultLimit)] {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		summary = append(summary, Result{
			Title:   title,
			URL:     r.URL,
			Content: truncate(r.Content, reflectionContentLimit),
		})
	}

	messages, err := buildReflectorPrompt(reflectorTemplateData{
		Topic:       s.Topic,
		Results:     summary,
		ResultCount: len(s.SearchResults),
		Iteration:   s.IterationCount,
	})
	if err != nil {
		return Reflection{}, err
	}

	text, err := x.llm.Complete(ctx, messages, true)
	if err != nil {
		return Reflection{}, err
	}

	var r Reflection
	if err := json.Unmarshal([]byte(extractJSON(text)), &r); err != nil {
		return Reflection{}, goerr.Wrap(err, "failed to parse reflection", goerr.V("response", text))
	}
	if r.Decision == "" {
		r.Decision = DecisionSufficient
	}
	return r, nil
}
