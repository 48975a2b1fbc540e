package autoresearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// MaxPlannedQueries caps the number of queries taken from the planner or reflector.
const MaxPlannedQueries = 5

// DefaultQueries is the deterministic plan used when the planner cannot get a
// usable answer from the completion service.
func DefaultQueries(topic string) []string {
	return []string{
		topic + " overview",
		topic + " research",
		topic + " analysis",
	}
}

type plannerResponse struct {
	Queries []string `json:"queries"`
}

// plan asks the completion service for search queries. It never fails: any
// problem falls back to DefaultQueries.
func (x *Agent) plan(ctx context.Context, s State) Delta {
	logger := ctxlog.From(ctx)
	logger.Info("planning queries", slog.String("topic", s.Topic))

	queries, err := x.generateQueries(ctx, s.Topic)
	if err != nil {
		logger.Error("planner failed, using default queries", slog.Any("error", err))
		queries = DefaultQueries(s.Topic)
	}

	var d Delta
	d.emit(EventPlanning, "Planning research strategy for: "+s.Topic)
	d.emit(EventPlanning, fmt.Sprintf("Generated %d search queries:", len(queries)))
	for _, q := range queries {
		d.emit(EventPlanning, fmt.Sprintf("  → \"%s\"", q))
	}

	d.PlannedQueries = &queries
	d.IterationCount = ptr(0)
	return d
}

func (x *Agent) generateQueries(ctx context.Context, topic string) ([]string, error) {
	messages, err := buildPlannerPrompt(topic)
	if err != nil {
		return nil, err
	}

	text, err := x.llm.Complete(ctx, messages, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate queries")
	}

	var resp plannerResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse planner response", goerr.V("response", text))
	}

	queries := cleanQueries(resp.Queries, MaxPlannedQueries)
	if len(queries) == 0 {
		return nil, goerr.New("planner returned no queries", goerr.V("response", text))
	}
	return queries, nil
}

// cleanQueries drops blank entries and keeps at most limit queries.
func cleanQueries(queries []string, limit int) []string {
	out := make([]string, 0, min(len(queries), limit))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out
}

// extractJSON returns the outermost JSON object in text. Some models wrap
// structured output in a markdown code fence even in JSON mode.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
