package autoresearch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Role of a prompt message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one prompt message sent to a completion service.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage and UserMessage are shorthands for building prompts.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Completer is a text-completion capability. When structured is true the
// callee is expected to return a JSON object; parsing is left to the caller.
// Implementations tag quota exhaustion with ErrTagRateLimit.
type Completer interface {
	Complete(ctx context.Context, messages []Message, structured bool) (string, error)
}

// CompletionClient wraps a Completer with bounded retry and backoff. It
// implements Completer itself.
type CompletionClient struct {
	backend Completer
	policy  RetryPolicy
}

// CompletionOption configures a CompletionClient.
type CompletionOption func(*CompletionClient)

// WithCompletionRetryPolicy replaces DefaultCompletionRetryPolicy.
func WithCompletionRetryPolicy(p RetryPolicy) CompletionOption {
	return func(c *CompletionClient) {
		c.policy = p
	}
}

// NewCompletionClient creates a retrying client on top of backend.
func NewCompletionClient(backend Completer, options ...CompletionOption) *CompletionClient {
	c := &CompletionClient{
		backend: backend,
		policy:  DefaultCompletionRetryPolicy(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Complete sends messages to the backend. Rate-limit errors are returned on the
// first occurrence; other failures are retried according to the policy.
func (c *CompletionClient) Complete(ctx context.Context, messages []Message, structured bool) (string, error) {
	if len(messages) == 0 {
		return "", goerr.Wrap(ErrInvalidParameter, "no messages to complete")
	}

	text, err := retry(ctx, c.policy, "completion", func(ctx context.Context) (string, error) {
		resp, err := c.backend.Complete(ctx, messages, structured)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(resp) == "" {
			return "", goerr.Wrap(ErrEmptyCompletion, "empty completion", goerr.V("structured", structured))
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	ctxlog.From(ctx).Debug("completion received",
		slog.Bool("structured", structured),
		slog.Int("length", len(text)),
	)
	return text, nil
}
