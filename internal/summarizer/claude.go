package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude summarizes through the Anthropic messages API.
type Claude struct {
	client anthropic.Client
	cfg    ProviderConfig
	remote remote
}

// NewClaude creates a Claude summarizer. The SDK's own retries are disabled
// because calls already run inside the shared retry loop.
func NewClaude(cfg ProviderConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	slog.Info("Initialized Claude summarizer", slog.String("model", cfg.Model))
	return &Claude{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		remote: newRemote("claude-api", cfg.Timeout),
	}
}

// Name implements Summarizer.
func (c *Claude) Name() string { return c.cfg.Model }

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, text string) (string, error) {
	return c.remote.run(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, text)
	})
}

func (c *Claude) complete(ctx context.Context, text string) (string, error) {
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   int64(c.cfg.MaxTokens),
		Temperature: anthropic.Float(c.cfg.Temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text))),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Claude message failed",
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return "", statusError(claudeStatus(err), fmt.Errorf("claude api error: %w", err))
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	slog.DebugContext(ctx, "Claude message finished",
		slog.Duration("duration", time.Since(start)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens))
	return cleanSummary(b.String())
}

func claudeStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
