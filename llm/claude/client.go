package claude

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// claudePromptScope is the logging scope for Claude prompts
	claudePromptScope = ctxlog.NewScope("claude_prompt", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_CLAUDE_PROMPT"))

	// claudeResponseScope is the logging scope for Claude responses
	claudeResponseScope = ctxlog.NewScope("claude_response", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_CLAUDE_RESPONSE"))
)

const (
	DefaultModel       = "claude-3-5-haiku-latest"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2048

	// jsonInstruction is appended to the system prompt of structured requests
	// because the Messages API has no JSON response mode.
	jsonInstruction = "Respond with a single JSON object only. Do not wrap it in markdown and do not add any other text."
)

type generationParameters struct {
	Temperature float64
	MaxTokens   int64
}

// Client is a completion backend for the Anthropic Messages API.
type Client struct {
	client anthropic.Client

	// model is the model to use for messages.
	model string

	// baseURL is the custom base URL. Empty means the default endpoint.
	baseURL string

	httpClient *http.Client

	params generationParameters
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
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 2048
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// WithHTTPClient replaces the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "API key is required for Claude")
	}

	client := &Client{
		model: DefaultModel,
		params: generationParameters{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
	}

	for _, option := range options {
		option(client)
	}

	// Retries belong to autoresearch.CompletionClient; the SDK would otherwise
	// retry 429 responses on its own.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if client.baseURL != "" {
		opts = append(opts, option.WithBaseURL(client.baseURL))
	}
	if client.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(client.httpClient))
	}
	client.client = anthropic.NewClient(opts...)

	return client, nil
}

// createRequest splits messages into the system prompt and the conversation.
func (c *Client) createRequest(messages []autoresearch.Message, structured bool) anthropic.MessageNewParams {
	var system []string
	var conversation []anthropic.MessageParam
	for _, m := range messages {
		if m.Role == autoresearch.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	if structured {
		system = append(system, jsonInstruction)
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.params.MaxTokens,
		Temperature: anthropic.Float(c.params.Temperature),
		Messages:    conversation,
	}
	if len(system) > 0 {
		req.System = []anthropic.TextBlockParam{
			{Text: strings.Join(system, "\n\n")},
		}
	}
	return req
}

// Complete implements autoresearch.Completer.
func (c *Client) Complete(ctx context.Context, messages []autoresearch.Message, structured bool) (string, error) {
	req := c.createRequest(messages, structured)

	if logger := ctxlog.From(ctx, claudePromptScope); logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("Claude prompt", "model", c.model, "structured", structured, "system", req.System, "messages", messages)
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		opts := append([]goerr.Option{goerr.V("model", c.model)}, rateLimitErrorOptions(err)...)
		return "", goerr.Wrap(err, "failed to create message", opts...)
	}

	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(texts, ""))
	if structured {
		text = extractJSONFromResponse(text)
	}

	if logger := ctxlog.From(ctx, claudeResponseScope); logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("Claude response",
			"text", text,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)
	}

	return text, nil
}

// rateLimitErrorOptions tags *anthropic.Error with HTTP status 429 with
// autoresearch.ErrTagRateLimit. Returns nil for any other error.
func rateLimitErrorOptions(err error) []goerr.Option {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return []goerr.Option{goerr.Tag(autoresearch.ErrTagRateLimit)}
	}
	return nil
}
