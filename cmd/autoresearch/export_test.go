package main

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/autoresearch"
)

// Exported constructors for testing
var NewServer = newServer

// Exported server options for testing
var WithAddr = withAddr
var WithStaticDir = withStaticDir
var WithAllowedOrigins = withAllowedOrigins
var WithRegistry = withRegistry

type HistoryResponse = historyResponse

// Researcher is the interface accepted by WithResearcher.
type Researcher = researcher

// HistorySource is the interface accepted by WithHistory.
type HistorySource = historySource

func WithResearcher(r Researcher) serverOption { return withResearcher(r) }
func WithHistory(h HistorySource) serverOption { return withHistory(h) }

// Handler returns the server's HTTP handler for testing.
func (s *server) Handler() http.Handler {
	return s.handler()
}

func RunResearch(ctx context.Context, r Researcher, topic string, w io.Writer) (*autoresearch.Outcome, error) {
	return runResearch(ctx, r, topic, w)
}

// Config exposes the command configuration for validation tests.
type Config struct {
	LLMProvider       string
	LLMAPIKey         string
	LLMModel          string
	LLMBaseURL        string
	SearchProvider    string
	SearchAPIKey      string
	SearchConcurrency int
	LogFormat         string
	LogLevel          string
}

func (c Config) internal() *config {
	return &config{
		llmProvider:       c.LLMProvider,
		llmAPIKey:         c.LLMAPIKey,
		llmModel:          c.LLMModel,
		llmBaseURL:        c.LLMBaseURL,
		searchProvider:    c.SearchProvider,
		searchAPIKey:      c.SearchAPIKey,
		searchConcurrency: c.SearchConcurrency,
		logFormat:         c.LogFormat,
		logLevel:          c.LogLevel,
	}
}

func (c Config) Validate() error {
	return c.internal().validate()
}

// LLMConfig returns provider, model and base URL after defaults are applied.
func (c Config) LLMConfig() (string, string, string) {
	cfg := c.internal().llmConfig()
	return string(cfg.Provider), cfg.Model, cfg.BaseURL
}

var LoadDotEnv = loadDotEnv
