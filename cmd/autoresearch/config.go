package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/autoresearch/llm"
	"github.com/m-mizutani/autoresearch/llm/openai"
	"github.com/m-mizutani/autoresearch/search"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// defaultGroqModel is used when the openai provider runs against its default
// (Groq) endpoint without an explicit model.
const defaultGroqModel = "llama-3.3-70b-versatile"

// loadDotEnv loads variables from path if the file exists. Variables already
// set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load dotenv file", goerr.V("path", path))
	}
	return nil
}

type config struct {
	llmProvider string
	llmAPIKey   string
	llmModel    string
	llmBaseURL  string

	searchProvider    string
	searchAPIKey      string
	searchConcurrency int

	dbPath string

	logFormat string
	logLevel  string
}

func (c *config) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Value:       string(llm.ProviderOpenAI),
			Sources:     cli.EnvVars("AUTORESEARCH_LLM_PROVIDER"),
			Usage:       "Completion backend (openai, claude, gemini). openai also covers Groq and other compatible APIs",
			Destination: &c.llmProvider,
		},
		&cli.StringFlag{
			Name:        "llm-api-key",
			Sources:     cli.EnvVars("AUTORESEARCH_LLM_API_KEY", "GROQ_API_KEY"),
			Usage:       "API key of the completion backend",
			Destination: &c.llmAPIKey,
		},
		&cli.StringFlag{
			Name:        "llm-model",
			Sources:     cli.EnvVars("AUTORESEARCH_LLM_MODEL", "GROQ_MODEL"),
			Usage:       "Model name. Default depends on the provider (" + defaultGroqModel + " for openai on Groq)",
			Destination: &c.llmModel,
		},
		&cli.StringFlag{
			Name:        "llm-base-url",
			Sources:     cli.EnvVars("AUTORESEARCH_LLM_BASE_URL"),
			Usage:       "Base URL of the completion API. Default for openai is " + openai.GroqBaseURL,
			Destination: &c.llmBaseURL,
		},
		&cli.StringFlag{
			Name:        "search-provider",
			Value:       string(search.ProviderTavily),
			Sources:     cli.EnvVars("AUTORESEARCH_SEARCH_PROVIDER"),
			Usage:       "Web search backend (tavily, brave)",
			Destination: &c.searchProvider,
		},
		&cli.StringFlag{
			Name:        "search-api-key",
			Sources:     cli.EnvVars("AUTORESEARCH_SEARCH_API_KEY", "TAVILY_API_KEY"),
			Usage:       "API key of the search backend",
			Destination: &c.searchAPIKey,
		},
		&cli.IntFlag{
			Name:        "search-concurrency",
			Value:       1,
			Sources:     cli.EnvVars("AUTORESEARCH_SEARCH_CONCURRENCY"),
			Usage:       "Number of queries searched at once in a search step",
			Destination: &c.searchConcurrency,
		},
		&cli.StringFlag{
			Name:        "db-path",
			Value:       "research_history.db",
			Sources:     cli.EnvVars("AUTORESEARCH_DB_PATH", "DATABASE_PATH"),
			Usage:       "SQLite file for research history",
			Destination: &c.dbPath,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Value:       "text",
			Sources:     cli.EnvVars("AUTORESEARCH_LOG_FORMAT"),
			Usage:       "Log format (text, json)",
			Destination: &c.logFormat,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Value:       "info",
			Sources:     cli.EnvVars("AUTORESEARCH_LOG_LEVEL"),
			Usage:       "Log level (debug, info, warn, error)",
			Destination: &c.logLevel,
		},
	}
}

// validate checks credentials and choices once at startup.
func (c *config) validate() error {
	if !slices.Contains(llm.Providers, llm.Provider(c.llmProvider)) {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown --llm-provider", goerr.V("value", c.llmProvider))
	}
	if strings.TrimSpace(c.llmAPIKey) == "" {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "--llm-api-key is required")
	}
	if !slices.Contains(search.Providers, search.Provider(c.searchProvider)) {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown --search-provider", goerr.V("value", c.searchProvider))
	}
	if strings.TrimSpace(c.searchAPIKey) == "" {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "--search-api-key is required")
	}
	if c.searchConcurrency < 1 {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "--search-concurrency must be positive", goerr.V("value", c.searchConcurrency))
	}
	if c.logFormat != "text" && c.logFormat != "json" {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown --log-format", goerr.V("value", c.logFormat))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return goerr.Wrap(autoresearch.ErrInvalidParameter, "unknown --log-level", goerr.V("value", c.logLevel))
	}
	return nil
}

func (c *config) newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.logLevel))
	opts := &slog.HandlerOptions{Level: level}

	if c.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *config) llmConfig() llm.Config {
	cfg := llm.Config{
		Provider: llm.Provider(c.llmProvider),
		APIKey:   c.llmAPIKey,
		Model:    c.llmModel,
		BaseURL:  c.llmBaseURL,
	}
	if cfg.Provider == llm.ProviderOpenAI && cfg.BaseURL == "" {
		cfg.BaseURL = openai.GroqBaseURL
		if cfg.Model == "" {
			cfg.Model = defaultGroqModel
		}
	}
	return cfg
}

// newAgent builds the agent with retrying clients around the configured backends.
func (c *config) newAgent(ctx context.Context, options ...autoresearch.Option) (*autoresearch.Agent, error) {
	completer, err := llm.New(ctx, c.llmConfig())
	if err != nil {
		return nil, err
	}

	searcher, err := search.New(search.Provider(c.searchProvider), c.searchAPIKey)
	if err != nil {
		return nil, err
	}

	options = append([]autoresearch.Option{
		autoresearch.WithSearchConcurrency(c.searchConcurrency),
	}, options...)

	return autoresearch.New(
		autoresearch.NewCompletionClient(completer),
		autoresearch.NewSearchClient(searcher),
		options...,
	), nil
}
