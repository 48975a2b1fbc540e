package autoresearch

//go:generate go tool moq -out mock/mock_gen.go -pkg mock . Completer Searcher Archiver

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Agent runs research sessions. One Agent can serve many concurrent runs; no
// mutable state is shared between them.
type Agent struct {
	llm      Completer
	searcher Searcher

	agentConfig
}

type agentConfig struct {
	maxResults        int
	searchConcurrency int
	archiver          Archiver
	logger            *slog.Logger
	tracer            trace.Tracer
}

const tracerName = "github.com/m-mizutani/autoresearch"

// Option configures an Agent.
type Option func(*agentConfig)

// WithMaxResults sets the number of hits requested per query. Default is DefaultMaxResults.
func WithMaxResults(n int) Option {
	return func(c *agentConfig) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithSearchConcurrency lets the search step run up to n queries at once.
// Default is 1, which runs queries sequentially.
func WithSearchConcurrency(n int) Option {
	return func(c *agentConfig) {
		if n > 0 {
			c.searchConcurrency = n
		}
	}
}

// WithArchiver stores every run that produced a report.
func WithArchiver(a Archiver) Option {
	return func(c *agentConfig) {
		c.archiver = a
	}
}

// WithLogger sets the logger. Without it the logger is taken from the context
// given to Run (see ctxlog).
func WithLogger(logger *slog.Logger) Option {
	return func(c *agentConfig) {
		c.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for step spans.
// Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *agentConfig) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New creates an Agent. llm and searcher are used as is; wrap them with
// NewCompletionClient and NewSearchClient to get retry and backoff.
func New(llm Completer, searcher Searcher, options ...Option) *Agent {
	x := &Agent{
		llm:      llm,
		searcher: searcher,
		agentConfig: agentConfig{
			maxResults:        DefaultMaxResults,
			searchConcurrency: 1,
			tracer:            otel.Tracer(tracerName),
		},
	}

	for _, opt := range options {
		opt(&x.agentConfig)
	}

	return x
}
