package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
)

var (
	// openaiPromptScope is the logging scope for OpenAI prompts
	openaiPromptScope = ctxlog.NewScope("openai_prompt", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_OPENAI_PROMPT"))

	// openaiResponseScope is the logging scope for OpenAI responses
	openaiResponseScope = ctxlog.NewScope("openai_response", ctxlog.EnabledBy("AUTORESEARCH_LOGGING_OPENAI_RESPONSE"))
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2048

	// GroqBaseURL is the OpenAI-compatible endpoint of Groq.
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	Temperature float32

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int
}

// Client is a completion backend for the OpenAI chat completions API and any
// compatible endpoint (Groq, local proxies).
type Client struct {
	client *openai.Client

	// model is the model to use for chat completions.
	model string

	// baseURL is the custom base URL. Empty means the default OpenAI endpoint.
	baseURL string

	httpClient *http.Client

	params generationParameters
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for chat completions.
// See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithBaseURL sets the base URL of an OpenAI-compatible API, e.g. [GroqBaseURL].
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Default: 0.3
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: 2048
func WithMaxTokens(maxTokens int) Option {
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

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.Wrap(autoresearch.ErrInvalidParameter, "API key is required for OpenAI")
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

	config := openai.DefaultConfig(apiKey)
	if client.baseURL != "" {
		config.BaseURL = client.baseURL
	}
	if client.httpClient != nil {
		config.HTTPClient = client.httpClient
	}
	client.client = openai.NewClientWithConfig(config)

	return client, nil
}

func convertMessages(messages []autoresearch.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == autoresearch.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return out
}

// Complete implements autoresearch.Completer.
func (c *Client) Complete(ctx context.Context, messages []autoresearch.Message, structured bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		Temperature: c.params.Temperature,
		MaxTokens:   c.params.MaxTokens,
	}
	if structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	if logger := ctxlog.From(ctx, openaiPromptScope); logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("OpenAI prompt", "model", c.model, "structured", structured, "messages", req.Messages)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		opts := append([]goerr.Option{goerr.V("model", c.model)}, rateLimitErrorOptions(err)...)
		return "", goerr.Wrap(err, "failed to create chat completion", opts...)
	}

	if len(resp.Choices) == 0 {
		return "", goerr.Wrap(autoresearch.ErrEmptyCompletion, "no choices in OpenAI response", goerr.V("model", c.model))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	if logger := ctxlog.From(ctx, openaiResponseScope); logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("OpenAI response",
			"text", text,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
		)
	}

	return text, nil
}

// rateLimitErrorOptions checks if the error is a rate limit error and returns
// goerr.Option to tag the error with autoresearch.ErrTagRateLimit.
// Returns nil if the error is not a rate limit error.
//
// Detection logic:
// - *openai.APIError or *openai.RequestError with HTTP status 429
// - *openai.APIError whose Code is "rate_limit_exceeded" (Groq, OpenAI)
func rateLimitErrorOptions(err error) []goerr.Option {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return []goerr.Option{goerr.Tag(autoresearch.ErrTagRateLimit)}
		}
		if code, ok := apiErr.Code.(string); ok && code == "rate_limit_exceeded" {
			return []goerr.Option{goerr.Tag(autoresearch.ErrTagRateLimit)}
		}
		return nil
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return []goerr.Option{goerr.Tag(autoresearch.ErrTagRateLimit)}
	}

	return nil
}
