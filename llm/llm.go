// Package llm selects a completion backend by provider name.
package llm

import (
	"context"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/llm/claude"
	"github.com/m-mizutani/autoresearch/llm/gemini"
	"github.com/m-mizutani/autoresearch/llm/openai"
	"github.com/m-mizutani/goerr/v2"
)

// Provider is the name of a completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

// Providers lists the supported providers.
var Providers = []Provider{ProviderOpenAI, ProviderClaude, ProviderGemini}

// Config is the provider independent backend configuration. Empty Model and
// BaseURL fall back to the provider's defaults.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// New creates the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (autoresearch.Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		var opts []openai.Option
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err := openai.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case ProviderClaude:
		var opts []claude.Option
		if cfg.Model != "" {
			opts = append(opts, claude.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, claude.WithBaseURL(cfg.BaseURL))
		}
		client, err := claude.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case ProviderGemini:
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
		}
		client, err := gemini.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown LLM provider",
			goerr.V("provider", cfg.Provider))
	}
}
