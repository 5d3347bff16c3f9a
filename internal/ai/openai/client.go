package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spigell/applicant-screener/internal/ai"
	"github.com/spigell/applicant-screener/internal/logger"
	"go.uber.org/zap"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	defaultMaxRetries = 3
)

type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Config holds OpenAI-compatible connection settings.
type Config struct {
	APIKey string
	Model  string
	// BaseURL points the client at an OpenAI-compatible gateway.
	BaseURL    string
	MaxRetries int
}

// Client sends scoring prompts to a chat completions endpoint.
type Client struct {
	chat   chatCompleter
	model  string
	logger *zap.Logger
}

// New builds a Client. MaxRetries counts attempts, the SDK retries
// rate limits and server errors with backoff.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries - 1),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	client := openai.NewClient(opts...)

	return &Client{
		chat:   &client.Chat.Completions,
		model:  model,
		logger: logger.WithFields(log, logger.ModelFields(ai.ProviderOpenAI, model)...),
	}, nil
}

// Complete returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.logger.Debug("openai api error", zap.Int("status", apiErr.StatusCode))
		}
		return "", &ai.ModelCallError{Provider: ai.ProviderOpenAI, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ai.ModelCallError{Provider: ai.ProviderOpenAI, Err: errors.New("no choices in response")}
	}

	c.logger.Debug("openai completion",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &ai.ModelCallError{Provider: ai.ProviderOpenAI, Err: errors.New("empty completion")}
	}

	return content, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
