// Package ai talks to OpenAI-compatible upstreams for chat completions and image generation.
//
// Requests are attempted once. Callers degrade to fallback content instead of retrying.
package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 4000
)

var (
	ErrNoChoices = errors.NewSentinel("completion has no choices")
	ErrNoImage   = errors.NewSentinel("image response has no url")
)

// Config configures a connection to an OpenAI-compatible API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient is optional and mostly useful for tests.
	HTTPClient *http.Client
}

func (cfg Config) options() []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return opts
}

// ChatClient requests chat completions.
type ChatClient struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewChatClient creates a ChatClient. The model defaults to grok-beta, the model the plan prompt is tuned for.
func NewChatClient(cfg Config, logger *slog.Logger) *ChatClient {
	model := cfg.Model
	if model == "" {
		model = "grok-beta"
	}
	return &ChatClient{
		client: openai.NewClient(cfg.options()...),
		model:  model,
		logger: logger,
	}
}

// Complete sends a single system + user message exchange and returns the trimmed assistant message.
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{ //nolint:exhaustruct // optional parameters.
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(chatTemperature),
		MaxTokens:   openai.Int(chatMaxTokens),
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "sending chat completion request",
		slog.String("model", c.model), slog.Int("prompt_length", len(userPrompt)))

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "received chat completion response",
		slog.Int64("completion_tokens", completion.Usage.CompletionTokens),
		slog.Int64("prompt_tokens", completion.Usage.PromptTokens),
		slog.String("finish_reason", completion.Choices[0].FinishReason))

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// ImageClient requests generated images.
type ImageClient struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewImageClient creates an ImageClient. The model defaults to dall-e-3.
func NewImageClient(cfg Config, logger *slog.Logger) *ImageClient {
	model := cfg.Model
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	return &ImageClient{
		client: openai.NewClient(cfg.options()...),
		model:  model,
		logger: logger,
	}
}

// Generate creates one 1024x1024 image for prompt and returns its URL.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ImageGenerateParams{ //nolint:exhaustruct // optional parameters.
		Prompt:  prompt,
		Model:   openai.ImageModel(c.model),
		N:       openai.Int(1),
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityStandard,
	}

	c.logger.LogAttrs(ctx, slog.LevelDebug, "sending image generation request", slog.String("model", c.model))

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", ErrNoImage
	}
	return resp.Data[0].URL, nil
}
