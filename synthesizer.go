package autoresearch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
)

const (
	maxSources         = 15
	sourceContentLimit = 600
)

const (
	// RateLimitMessage is shown when report generation is refused for quota reasons.
	RateLimitMessage = "The language model rate limit was reached while writing the report. " +
		"The service is on a request quota; a paid tier or a different model removes this restriction. " +
		"Please wait about 60 seconds and try again."

	// SynthesisFailedMessage is shown for any other report generation failure.
	SynthesisFailedMessage = "Unexpected error generating report. Please try again."
)

// synthesize writes the final report from deduplicated sources. On failure
// FinalReport stays empty and an error event explains why.
func (x *Agent) synthesize(ctx context.Context, s State) Delta {
	logger := ctxlog.From(ctx)
	logger.Info("synthesizing report", slog.Int("results", len(s.SearchResults)))

	unique := DedupeByURL(s.SearchResults)

	var d Delta
	d.emit(EventSynthesizing, fmt.Sprintf("Synthesizing report from %d unique sources...", len(unique)))

	sources := make([]Result, 0, min(len(unique), maxSources))
	for _, r := range unique[:min(len(unique), maxSources)] {
		title := r.Title
		if title == "" {
			title = "Unknown"
		}
		sources = append(sources, Result{
			Title:   title,
			URL:     r.URL,
			Content: truncate(r.Content, sourceContentLimit),
		})
	}

	report, err := x.writeReport(ctx, s.Topic, sources)
	switch {
	case IsRateLimit(err):
		logger.Error("synthesis hit rate limit", slog.Any("error", err))
		d.emit(EventError, RateLimitMessage)
		d.FinalReport = ptr("")
		return d
	case err != nil:
		logger.Error("synthesis failed", slog.Any("error", err))
		d.emit(EventError, SynthesisFailedMessage)
		d.FinalReport = ptr("")
		return d
	}

	d.emit(EventSynthesizing, "Report complete.")
	d.emit(EventReport, report)
	d.FinalReport = &report
	return d
}

func (x *Agent) writeReport(ctx context.Context, topic string, sources []Result) (string, error) {
	messages, err := buildSynthesizerPrompt(synthesizerTemplateData{
		Topic:   topic,
		Sources: sources,
	})
	if err != nil {
		return "", err
	}
	return x.llm.Complete(ctx, messages, false)
}

// DedupeByURL keeps the first occurrence of each URL and preserves order.
// URLs are compared as literal strings. Results without a URL are all kept.
func DedupeByURL(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	unique := make([]Result, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
		}
		unique = append(unique, r)
	}
	return unique
}
