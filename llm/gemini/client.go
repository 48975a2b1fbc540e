package gemini

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var (
	// geminiPromptScope is the logging scope for Gemini prompts
	geminiPromptScope = ctxlog.NewScope("gemini_prompt", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_GEMINI_PROMPT"))

	// geminiResponseScope is the logging scope for Gemini responses
	geminiResponseScope = ctxlog.NewScope("gemini_response", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_GEMINI_RESPONSE"))
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2048
)

// Client is a completion backend for the Gemini API.
type Client struct {
	client *genai.Client

	// model is the model to use for content generation.
	model string

	// baseURL is the custom base URL. Empty means the default endpoint.
	baseURL string

	httpClient *http.Client

	temperature float32
	maxTokens   int32
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model. See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Default: 0.3
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// WithMaxTokens sets the maximum number of output tokens.
// Default: 2048
func WithMaxTokens(maxTokens int32) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// WithHTTPClient replaces the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a new client for the Gemini API with an API key.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "API key is required for Gemini")
	}

	client := &Client{
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}

	for _, option := range options {
		option(client)
	}

	config := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client.httpClient,
	}
	if client.baseURL != "" {
		config.HTTPOptions.BaseURL = client.baseURL
	}

	newClient, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	client.client = newClient

	return client, nil
}

func (c *Client) createRequest(messages []autoresearch.Message, structured bool) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxTokens,
	}
	if structured {
		config.ResponseMIMEType = "application/json"
	}

	var system []*genai.Part
	var contents []*genai.Content
	for _, m := range messages {
		if m.Role == autoresearch.RoleSystem {
			system = append(system, &genai.Part{Text: m.Content})
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}

	return contents, config
}

// Complete implements autoresearch.Completer.
func (c *Client) Complete(ctx context.Context, messages []autoresearch.Message, structured bool) (string, error) {
	contents, config := c.createRequest(messages, structured)

	if logger := ctxlog.From(ctx, geminiPromptScope); logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("Gemini prompt", "model", c.model, "structured", structured, "messages", messages)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		opts := append([]goerr.Option{goerr.V("model", c.model)}, rateLimitErrorOptions(err)...)
		return "", goerr.Wrap(err, "failed to generate content", opts...)
	}

	text := strings.TrimSpace(resp.Text())

	if logger := ctxlog.From(ctx, geminiResponseScope); logger.Enabled(ctx, slog.LevelInfo) {
		attrs := []any{"text", text}
		if resp.UsageMetadata != nil {
			attrs = append(attrs,
				"input_tokens", resp.UsageMetadata.PromptTokenCount,
				"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			)
		}
		logger.Info("Gemini response", attrs...)
	}

	return text, nil
}

// rateLimitErrorOptions tags quota errors (HTTP 429, RESOURCE_EXHAUSTED) with
// autoresearch.ErrTagRateLimit. The SDK returns APIError both as value and
// as pointer depending on the call path.
func rateLimitErrorOptions(err error) []goerr.Option {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return nil
	}

	if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
		return []goerr.Option{goerr.Tag(autoresearch.ErrTagRateLimit)}
	}
	return nil
}
