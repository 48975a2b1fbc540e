package autoresearch

import "context"

const (
	PlannerSystemPrompt     = plannerSystemPrompt
	ReflectorSystemPrompt   = reflectorSystemPrompt
	SynthesizerSystemPrompt = synthesizerSystemPrompt

	RateLimitReasoning = rateLimitReasoning
	FallbackReasoning  = fallbackReasoning
)

var (
	Next         = next
	ExtractJSON  = extractJSON
	CleanQueries = cleanQueries
	Truncate     = truncate
)

func Retry[T any](ctx context.Context, p RetryPolicy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	return retry(ctx, p, name, op)
}

func (x *Agent) Plan(ctx context.Context, s State) Delta       { return x.plan(ctx, s) }
func (x *Agent) Search(ctx context.Context, s State) Delta     { return x.search(ctx, s) }
func (x *Agent) Reflect(ctx context.Context, s State) Delta    { return x.reflect(ctx, s) }
func (x *Agent) Synthesize(ctx context.Context, s State) Delta { return x.synthesize(ctx, s) }
