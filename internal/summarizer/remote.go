package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/starford/marknote/internal/resilience/circuitbreaker"
	"github.com/starford/marknote/internal/resilience/retry"
)

// remote runs provider calls through a circuit breaker inside a retry loop.
// Each attempt gets its own timeout.
type remote struct {
	name    string
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

func newRemote(name string, timeout time.Duration) remote {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return remote{
		name:    name,
		timeout: timeout,
		breaker: circuitbreaker.New(circuitbreaker.ProviderConfig(name)),
		retry:   retry.ProviderConfig(),
	}
}

func (r remote) run(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	var summary string
	err := retry.WithBackoff(ctx, r.retry, func() error {
		out, err := r.breaker.Execute(func() (interface{}, error) {
			return r.attempt(ctx, call)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				slog.WarnContext(ctx, "provider circuit breaker open, request rejected",
					slog.String("provider", r.name),
					slog.String("state", r.breaker.State().String()))
				return fmt.Errorf("%s unavailable: circuit breaker open", r.name)
			}
			return err
		}
		summary = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s summarize failed: %w", r.name, err)
	}
	return summary, nil
}

func (r remote) attempt(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := call(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%s: %w after %s", r.name, retry.ErrAttemptTimeout, r.timeout)
	}
	return out, err
}

// statusError wraps a provider failure with its HTTP status so retry can classify it.
func statusError(code int, err error) error {
	if code == 0 {
		return err
	}
	return &retry.HTTPError{StatusCode: code, Err: err}
}

func cleanSummary(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("provider returned an empty summary")
	}
	return s, nil
}
