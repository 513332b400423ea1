// Package summarizer turns markdown notes into short summaries, either locally
// with an extractive sentence scorer or remotely through an LLM provider.
package summarizer

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Provider names.
const (
	ProviderLocal     = "local"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNoop      = "noop"
)

// Summarizer produces a summary of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	// Name is reported to clients as the model that produced a summary.
	Name() string
}

// BudgetSummarizer is implemented by summarizers that accept a per-call sentence budget.
type BudgetSummarizer interface {
	SummarizeN(ctx context.Context, text string, maxSentences int) (string, error)
}

// Config selects and configures a summarizer.
type Config struct {
	Provider     string         `yaml:"provider"`
	MaxSentences int            `yaml:"max_sentences"`
	MinWords     int            `yaml:"min_words"`
	OpenAI       ProviderConfig `yaml:"openai"`
	Anthropic    ProviderConfig `yaml:"anthropic"`
}

// ProviderConfig holds settings for a remote LLM provider.
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Validate validates the summarizer configuration. API keys are not required here
// because the interactive editor can ask for one at startup.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(ProviderLocal, ProviderOpenAI, ProviderAnthropic, ProviderNoop)),
		validation.Field(&c.MaxSentences, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.MinWords, validation.Min(0)),
	); err != nil {
		return err
	}
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Validate()
	case ProviderAnthropic:
		return c.Anthropic.Validate()
	}
	return nil
}

// Validate validates the provider settings.
func (c *ProviderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTokens, validation.Required, validation.Min(1)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.Timeout, validation.Required),
	)
}

// Remote reports whether the provider calls out to a cloud API.
func (c *Config) Remote() bool {
	return c.Provider == ProviderOpenAI || c.Provider == ProviderAnthropic
}

// APIKey returns the key of the selected remote provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	}
	return ""
}

// SetAPIKey sets the key of the selected remote provider.
func (c *Config) SetAPIKey(key string) {
	switch c.Provider {
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	}
}

// APIKeyEnv names the environment variable conventionally holding the provider key.
func (c *Config) APIKeyEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// DefaultConfig returns the local extractive configuration with remote defaults filled in.
func DefaultConfig() Config {
	return Config{
		Provider:     ProviderLocal,
		MaxSentences: DefaultMaxSentences,
		MinWords:     10,
		OpenAI: ProviderConfig{
			Model:       "gpt-3.5-turbo",
			MaxTokens:   500,
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		Anthropic: ProviderConfig{
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   500,
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
	}
}

// New builds the summarizer selected by cfg, instrumented with rec.
// A nil rec records nothing.
func New(cfg Config, rec MetricsRecorder) (Summarizer, error) {
	var s Summarizer
	switch cfg.Provider {
	case ProviderLocal, "":
		s = NewExtractive(cfg.MaxSentences)
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("summarizer: openai api key is not set")
		}
		s = NewOpenAI(cfg.OpenAI)
	case ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("summarizer: anthropic api key is not set")
		}
		s = NewClaude(cfg.Anthropic)
	case ProviderNoop:
		s = NewNoOp()
	default:
		return nil, fmt.Errorf("summarizer: unknown provider %q", cfg.Provider)
	}
	if rec == nil {
		return s, nil
	}
	return WithMetrics(s, rec), nil
}
