package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI summarizes through the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	cfg    ProviderConfig
	remote remote
}

// NewOpenAI creates an OpenAI summarizer. cfg.BaseURL overrides the API endpoint.
func NewOpenAI(cfg ProviderConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	slog.Info("Initialized OpenAI summarizer", slog.String("model", cfg.Model))
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		remote: newRemote("openai-api", cfg.Timeout),
	}
}

// Name implements Summarizer.
func (o *OpenAI) Name() string { return o.cfg.Model }

// Summarize implements Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, text string) (string, error) {
	return o.remote.run(ctx, func(ctx context.Context) (string, error) {
		return o.complete(ctx, text)
	})
}

func (o *OpenAI) complete(ctx context.Context, text string) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text)},
		},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: float32(o.cfg.Temperature),
	})
	if err != nil {
		slog.ErrorContext(ctx, "OpenAI completion failed",
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return "", statusError(openAIStatus(err), fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	slog.DebugContext(ctx, "OpenAI completion finished",
		slog.Duration("duration", time.Since(start)),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens))
	return cleanSummary(resp.Choices[0].Message.Content)
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
