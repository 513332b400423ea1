package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	providers []string
	words     []int
	errs      []error
}

func (f *fakeRecorder) Observe(provider string, words int, _ time.Duration, err error) {
	f.providers = append(f.providers, provider)
	f.words = append(f.words, words)
	f.errs = append(f.errs, err)
}

type failing struct{}

func (failing) Summarize(context.Context, string) (string, error) { return "", errors.New("down") }
func (failing) Name() string                                     { return "failing" }

func TestNew_SelectsProvider(t *testing.T) {
	cfg := DefaultConfig()

	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Extractive{}, s)

	cfg.Provider = ProviderNoop
	s, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "noop", s.Name())

	cfg.Provider = ProviderOpenAI
	_, err = New(cfg, nil)
	require.Error(t, err, "missing key must be rejected")

	cfg.OpenAI.APIKey = "k"
	s, err = New(cfg, &fakeRecorder{})
	require.NoError(t, err)
	assert.IsType(t, &Instrumented{}, s)
	assert.Equal(t, "gpt-3.5-turbo", s.Name())

	cfg.Provider = "magic"
	_, err = New(cfg, nil)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxSentences = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.Anthropic.Model = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = "gemini"
	require.Error(t, cfg.Validate())
}

func TestConfig_APIKeyHelpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Remote())
	assert.Empty(t, cfg.APIKeyEnv())

	cfg.Provider = ProviderAnthropic
	assert.True(t, cfg.Remote())
	cfg.SetAPIKey("secret")
	assert.Equal(t, "secret", cfg.Anthropic.APIKey)
	assert.Equal(t, "secret", cfg.APIKey())
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.APIKeyEnv())
}

func TestInstrumented_RecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	s := WithMetrics(NewExtractive(3), rec)

	out, err := s.SummarizeN(context.Background(), "Alpha beta gamma. Delta.", 1)
	require.NoError(t, err)
	assert.Equal(t, "Alpha beta gamma.", out)

	_, err = WithMetrics(failing{}, rec).SummarizeN(context.Background(), "x", 2)
	require.Error(t, err)

	assert.Equal(t, []string{LocalModelName, "failing"}, rec.providers)
	assert.Equal(t, 3, rec.words[0])
	assert.NoError(t, rec.errs[0])
	assert.Error(t, rec.errs[1])
}

func TestNoOp_Truncates(t *testing.T) {
	s := NewNoOp()
	out, err := s.Summarize(context.Background(), "short")
	require.NoError(t, err)
	assert.Equal(t, "short", out)

	out, err = s.Summarize(context.Background(), strings.Repeat("é", 600))
	require.NoError(t, err)
	assert.Equal(t, 503, len([]rune(out)))
}

func TestPrometheusMetrics_Singleton(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()
	assert.Same(t, a, b)
	a.Observe("test", 4, time.Millisecond, nil)
	a.Observe("test", 0, time.Millisecond, errors.New("x"))
}

func fastRemote(timeout time.Duration) remote {
	r := newRemote("slow", timeout)
	r.retry.InitialDelay = time.Millisecond
	r.retry.MaxDelay = time.Millisecond
	return r
}

func TestRemote_RetriesAttemptTimeout(t *testing.T) {
	r := fastRemote(20 * time.Millisecond)
	calls := 0
	out, err := r.run(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 2, calls)
}

func TestRemote_CallerDeadlineNotRetried(t *testing.T) {
	r := fastRemote(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := r.run(ctx, func(ctx context.Context) (string, error) {
		calls++
		<-ctx.Done()
		return "", ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}
