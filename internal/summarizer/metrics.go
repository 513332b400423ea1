package summarizer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records the outcome of summarization calls.
type MetricsRecorder interface {
	Observe(provider string, summaryWords int, duration time.Duration, err error)
}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	words    *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

var (
	promMetrics     *PrometheusMetrics
	promMetricsOnce sync.Once
)

// NewPrometheusMetrics returns the process-wide recorder, registering its
// collectors with the default registry on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	promMetricsOnce.Do(func() {
		promMetrics = &PrometheusMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marknote_summaries_total",
				Help: "Summarization requests by provider and outcome.",
			}, []string{"provider", "outcome"}),
			words: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "marknote_summary_words",
				Help:    "Length of generated summaries in words.",
				Buckets: []float64{10, 25, 50, 100, 200, 400, 800},
			}, []string{"provider"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "marknote_summary_duration_seconds",
				Help:    "Time taken to produce a summary.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			}, []string{"provider"}),
		}
		promMetrics.requests = registerOrExisting(promMetrics.requests)
		promMetrics.words = registerOrExisting(promMetrics.words)
		promMetrics.duration = registerOrExisting(promMetrics.duration)
	})
	return promMetrics
}

func registerOrExisting[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Observe implements MetricsRecorder.
func (p *PrometheusMetrics) Observe(provider string, summaryWords int, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.requests.WithLabelValues(provider, outcome).Inc()
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
	if err == nil {
		p.words.WithLabelValues(provider).Observe(float64(summaryWords))
	}
}

// Instrumented decorates a Summarizer with metrics.
type Instrumented struct {
	inner Summarizer
	rec   MetricsRecorder
}

// WithMetrics wraps s so every call is reported to rec.
func WithMetrics(s Summarizer, rec MetricsRecorder) *Instrumented {
	return &Instrumented{inner: s, rec: rec}
}

// Name implements Summarizer.
func (i *Instrumented) Name() string { return i.inner.Name() }

// Summarize implements Summarizer.
func (i *Instrumented) Summarize(ctx context.Context, text string) (string, error) {
	return i.observe(func() (string, error) { return i.inner.Summarize(ctx, text) })
}

// SummarizeN implements BudgetSummarizer, falling back to Summarize when the
// wrapped summarizer has no sentence budget.
func (i *Instrumented) SummarizeN(ctx context.Context, text string, maxSentences int) (string, error) {
	b, ok := i.inner.(BudgetSummarizer)
	if !ok {
		return i.Summarize(ctx, text)
	}
	return i.observe(func() (string, error) { return b.SummarizeN(ctx, text, maxSentences) })
}

func (i *Instrumented) observe(fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := fn()
	i.rec.Observe(i.inner.Name(), len(strings.Fields(out)), time.Since(start), err)
	return out, err
}
