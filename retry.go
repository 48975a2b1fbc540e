package autoresearch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/ctxlog"
)

// RetryDecision is the verdict of a RetryPolicy on a failed attempt.
type RetryDecision int

const (
	// RetryDecisionRetry schedules another attempt if the budget allows.
	RetryDecisionRetry RetryDecision = iota
	// RetryDecisionFailFast returns the error to the caller immediately.
	RetryDecisionFailFast
)

// RetryPolicy describes bounded exponential backoff and which errors are worth
// retrying. The delay starts at BaseDelay and doubles per attempt up to MaxDelay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Classify decides whether an error is transient. Nil retries every error.
	Classify func(err error) RetryDecision
}

const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 2 * time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
)

// DefaultCompletionRetryPolicy retries up to 3 attempts with 2s..10s backoff and
// fails fast on rate limits.
func DefaultCompletionRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryAttempts,
		BaseDelay:   DefaultRetryBaseDelay,
		MaxDelay:    DefaultRetryMaxDelay,
		Classify:    FailFastOnRateLimit,
	}
}

// DefaultSearchRetryPolicy is a shorter variant for search calls.
func DefaultSearchRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Classify:    FailFastOnRateLimit,
	}
}

// NoRetry makes exactly one attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// FailFastOnRateLimit retries everything except rate-limit failures and
// context cancellation.
func FailFastOnRateLimit(err error) RetryDecision {
	if IsRateLimit(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return RetryDecisionFailFast
	}
	return RetryDecisionRetry
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// retry runs op under policy p. When attempts are exhausted the error of the
// last attempt is returned as is. A fail-fast error is returned unchanged.
func retry[T any](ctx context.Context, p RetryPolicy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	logger := ctxlog.From(ctx)
	attempt := 0

	operation := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		if p.Classify != nil && p.Classify(err) == RetryDecisionFailFast {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying after failure",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
	}

	return backoff.RetryNotifyWithData(operation, p.backOff(ctx), notify)
}
