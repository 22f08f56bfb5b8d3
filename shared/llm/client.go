package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config holds connection settings for an OpenAI-compatible endpoint
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is a chat-completion client for the language-model capability.
// Every call is bounded by the configured timeout; retry policy belongs to
// the caller.
type Client struct {
	api    openai.Client
	model  string
	logger *slog.Logger

	timeout time.Duration
}

// NewClient creates a new LLM client
func NewClient(config *Config, logger *slog.Logger) *Client {
	api := openai.NewClient(
		option.WithBaseURL(config.BaseURL),
		option.WithAPIKey(config.APIKey),
	)

	logger.Info("LLM client initialized",
		slog.String("base_url", config.BaseURL),
		slog.String("model", config.Model),
		slog.Duration("timeout", config.Timeout),
	)

	return &Client{
		api:     api,
		model:   config.Model,
		logger:  logger,
		timeout: config.Timeout,
	}
}

// Complete sends a system+user prompt pair and returns the raw model output.
// The model is asked for a JSON object response so callers can parse it.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.logger.Debug("Chat completion finished",
		slog.String("model", c.model),
		slog.Duration("latency", time.Since(start)),
		slog.Int("output_size", len(resp.Choices[0].Message.Content)),
	)

	return resp.Choices[0].Message.Content, nil
}
