package autoresearch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"golang.org/x/sync/errgroup"
)

// failureMessageLimit bounds the error text shown in a failed-search event.
const failureMessageLimit = 60

type queryOutcome struct {
	results []Result
	err     error
}

// search executes every planned query. A failed query is reported as an event
// and does not affect its siblings. PlannedQueries is cleared afterwards.
func (x *Agent) search(ctx context.Context, s State) Delta {
	logger := ctxlog.From(ctx)
	queries := s.PlannedQueries
	logger.Info("searching", slog.Int("queries", len(queries)))

	outcomes := x.runQueries(ctx, queries)

	var d Delta
	d.emit(EventSearching, fmt.Sprintf("Executing %d web searches...", len(queries)))

	var newResults []Result
	for i, q := range queries {
		d.emit(EventSearching, fmt.Sprintf("Searching: \"%s\"", q))

		out := outcomes[i]
		if out.err != nil {
			logger.Error("search failed", slog.String("query", q), slog.Any("error", out.err))
			d.emit(EventSearching, "  → Search failed: "+truncate(out.err.Error(), failureMessageLimit))
			continue
		}
		newResults = append(newResults, out.results...)
		d.emit(EventSearching, fmt.Sprintf("  → Found %d results", len(out.results)))
	}

	total := len(s.SearchResults) + len(newResults)
	d.emit(EventSearching, fmt.Sprintf("Total results gathered: %d", total))

	d.NewResults = newResults
	d.PlannedQueries = ptr([]string{})
	return d
}

// runQueries returns one outcome per query, in query order. With a
// concurrency of 1 the queries run one after another.
func (x *Agent) runQueries(ctx context.Context, queries []string) []queryOutcome {
	outcomes := make([]queryOutcome, len(queries))

	if x.searchConcurrency <= 1 {
		for i, q := range queries {
			results, err := x.searcher.Search(ctx, q, x.maxResults)
			outcomes[i] = queryOutcome{results: results, err: err}
		}
		return outcomes
	}

	var (
		eg        errgroup.Group
		panicOnce sync.Once
		panicked  any
	)
	eg.SetLimit(x.searchConcurrency)
	for i, q := range queries {
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
			}()
			results, err := x.searcher.Search(ctx, q, x.maxResults)
			outcomes[i] = queryOutcome{results: results, err: err}
			// Query failures stay local to their slot.
			return nil
		})
	}
	_ = eg.Wait()

	// re-raise on the step goroutine so that the loop recovers it
	if panicked != nil {
		panic(panicked)
	}

	return outcomes
}
