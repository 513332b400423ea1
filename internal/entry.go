// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/marknote/internal/api"
	"github.com/starford/marknote/internal/editor"
	"github.com/starford/marknote/internal/index"
	"github.com/starford/marknote/internal/mcpserver"
	"github.com/starford/marknote/internal/noteservice"
	"github.com/starford/marknote/internal/sse"
	"github.com/starford/marknote/internal/storage"
	"github.com/starford/marknote/internal/summarizer"
)

func applyOptions(opts []Option) *application {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func newApplication(opts []Option, defaultLog io.Writer) (*application, *slog.Logger, error) {
	app := applyOptions(opts)
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = defaultLog
	}

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func serviceOptions(cfg *Config, logger *slog.Logger, extra ...noteservice.Option) []noteservice.Option {
	return append([]noteservice.Option{
		noteservice.WithLogger(logger),
		noteservice.WithMinWords(cfg.Summarizer.MinWords),
		noteservice.WithMaxSentences(cfg.Summarizer.MaxSentences),
	}, extra...)
}

// Run starts the HTTP API server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("summarizer", cfg.Summarizer.Provider),
		slog.String("index_dsn", cfg.Index.DSN),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	sum, err := summarizer.New(cfg.Summarizer, summarizer.NewPrometheusMetrics())
	if err != nil {
		return fmt.Errorf("init summarizer: %w", err)
	}

	db, err := index.Open(cfg.Index.DSN)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker(cfg.Events.StatsThrottle)
	defer broker.Close()

	svc := noteservice.New(storage.NewMemory(), db, sum,
		serviceOptions(cfg, logger, noteservice.WithPublisher(broker))...)

	if cfg.Notes.SeedDir != "" {
		seedNotes(ctx, svc, cfg.Notes.SeedDir, logger)
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newHTTPHandler(cfg, svc, broker),
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("model", svc.Model()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func seedNotes(ctx context.Context, svc *noteservice.Service, dir string, logger *slog.Logger) {
	files, err := storage.NewFS(dir)
	if err != nil {
		logger.Warn("seed: open dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	n, err := svc.Import(ctx, files, "")
	if err != nil {
		logger.Warn("seed: import failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return
	}
	logger.Info("seed: notes imported", slog.String("dir", dir), slog.Int("count", n))
}

// newHTTPHandler builds the top-level router: probes, metrics and the API under /api.
func newHTTPHandler(cfg *Config, svc *noteservice.Service, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	// Probes (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.Ready(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(api.RouterConfig{
		Service:        svc,
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		AuthToken:      cfg.Auth.Token,
		CORS:           cfg.CORS.API(),
		SummarizeRPS:   cfg.RateLimit.RPS,
		SummarizeBurst: cfg.RateLimit.Burst,
		Events:         events,
	}))

	return r
}

// RunMCP serves the notes service over MCP on stdin/stdout. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	sum, err := summarizer.New(cfg.Summarizer, nil)
	if err != nil {
		return fmt.Errorf("init summarizer: %w", err)
	}
	db, err := index.Open(cfg.Index.DSN)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc := noteservice.New(storage.NewMemory(), db, sum, serviceOptions(cfg, logger)...)
	if cfg.Notes.SeedDir != "" {
		seedNotes(context.Background(), svc, cfg.Notes.SeedDir, logger)
	}

	logger.Info("MCP server starting", slog.String("model", svc.Model()))
	return mcpserver.New(svc).ServeStdio()
}

// RunEditor starts the terminal editor, optionally opening path. Logs go to a
// dated file in the user cache directory unless WithLogOutput is given.
func RunEditor(ctx context.Context, path string, opts ...Option) error {
	var logDir string
	if cache, err := os.UserCacheDir(); err == nil {
		logDir = filepath.Join(cache, "marknote", "logs")
	}
	logOut, closeLog, err := editorLogOutput(opts, logDir, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "marknote: editor logging disabled: %v\n", err)
		logOut = io.Discard
	}
	defer closeLog()

	app, logger, err := newApplication(opts, logOut)
	if err != nil {
		return err
	}
	cfg := app.config

	edCfg := editor.Config{
		MaxSentences: cfg.Summarizer.MaxSentences,
		Path:         path,
		Logger:       logger,
	}
	if cfg.Summarizer.Remote() && cfg.Summarizer.APIKey() == "" {
		sumCfg := cfg.Summarizer
		edCfg.NewSummarizer = func(key string) (summarizer.Summarizer, error) {
			sumCfg.SetAPIKey(key)
			if env := sumCfg.APIKeyEnv(); env != "" {
				_ = os.Setenv(env, key)
			}
			return summarizer.New(sumCfg, nil)
		}
	} else {
		sum, err := summarizer.New(cfg.Summarizer, nil)
		if err != nil {
			return fmt.Errorf("init summarizer: %w", err)
		}
		edCfg.Summarizer = sum
	}

	return editor.Run(ctx, edCfg)
}

// editorLogOutput picks the editor's log writer. The terminal belongs to the
// editor, so logs never go to stdout or stderr: without WithLogOutput they are
// appended to <dir>/<date>_editor.log.
func editorLogOutput(opts []Option, dir string, now time.Time) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if w := applyOptions(opts).logOutput; w != nil {
		return w, noop, nil
	}
	if dir == "" {
		return nil, noop, errors.New("no log directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, noop, fmt.Errorf("create log dir: %w", err)
	}
	name := filepath.Join(dir, now.Format("2006-01-02")+"_editor.log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

// Summarize reads notes from r and writes their summary to w.
// maxSentences <= 0 uses the configured default.
func Summarize(ctx context.Context, r io.Reader, w io.Writer, maxSentences int, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}
	sum, err := summarizer.New(cfg.Summarizer, nil)
	if err != nil {
		return fmt.Errorf("init summarizer: %w", err)
	}

	svc := noteservice.New(storage.NewMemory(), nil, sum, serviceOptions(cfg, logger)...)
	res, err := svc.Summarize(ctx, string(data), maxSentences)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, res.Summary)
	return err
}
