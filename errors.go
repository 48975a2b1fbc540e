package autoresearch

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrTagRateLimit marks an error caused by an exhausted request quota of a
	// completion or search service. Tagged errors are never retried.
	ErrTagRateLimit = goerr.NewTag("rate_limit")

	// ErrTagDisconnected marks a run that stopped because the event consumer went away.
	ErrTagDisconnected = goerr.NewTag("disconnected")
)

var (
	ErrInvalidParameter = goerr.New("invalid parameter")
	ErrEmptyTopic       = goerr.New("topic is empty")
	ErrDisconnected     = goerr.New("event consumer disconnected", goerr.Tag(ErrTagDisconnected))
	ErrEmptyCompletion  = goerr.New("completion returned no text")
)

// IsRateLimit reports whether err, or any error it wraps, is tagged as a rate-limit failure.
func IsRateLimit(err error) bool {
	return err != nil && goerr.HasTag(err, ErrTagRateLimit)
}

// IsDisconnected reports whether the run ended because the event consumer disconnected.
func IsDisconnected(err error) bool {
	if err == nil {
		return false
	}
	return goerr.HasTag(err, ErrTagDisconnected) || errors.Is(err, ErrDisconnected)
}
