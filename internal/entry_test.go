package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/index"
	"github.com/starford/marknote/internal/noteservice"
	"github.com/starford/marknote/internal/sse"
	"github.com/starford/marknote/internal/storage"
	"github.com/starford/marknote/internal/summarizer"
)

const meetingNotes = "The meeting started late. We talked about lunch options for the team. " +
	"The main goal is to ship the release by Friday. Bob brought donuts. " +
	"Therefore we must finish testing this week."

func testHandler(t *testing.T, cfg *Config) (*noteservice.Service, http.Handler) {
	t.Helper()
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	broker := sse.NewBroker(cfg.Events.StatsThrottle)
	t.Cleanup(broker.Close)

	svc := noteservice.New(storage.NewMemory(), db, summarizer.NewExtractive(3),
		noteservice.WithPublisher(broker))
	return svc, newHTTPHandler(cfg, svc, broker)
}

func get(h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPHandler_Probes(t *testing.T) {
	_, h := testHandler(t, NewDefaultConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := get(h, path)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
			t.Errorf("%s = %d %s", path, w.Code, w.Body.String())
		}
	}
}

func TestHTTPHandler_ReadyFailsWhenIndexClosed(t *testing.T) {
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	svc := noteservice.New(storage.NewMemory(), db, summarizer.NewExtractive(3))
	h := newHTTPHandler(NewDefaultConfig(), svc, nil)
	db.Close()

	if w := get(h, "/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with closed index = %d, want 503", w.Code)
	}
}

func TestHTTPHandler_Metrics(t *testing.T) {
	_, h := testHandler(t, NewDefaultConfig())
	w := get(h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics output should include runtime collectors")
	}
}

func TestHTTPHandler_APIMountedWithAuth(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "tok"}
	_, h := testHandler(t, cfg)

	if w := get(h, "/api/health"); w.Code != http.StatusOK {
		t.Errorf("/api/health = %d", w.Code)
	}
	if w := get(h, "/api/notes"); w.Code != http.StatusUnauthorized {
		t.Errorf("/api/notes without token = %d", w.Code)
	}
	if w := get(h, "/api/notes", "Authorization", "Bearer tok"); w.Code != http.StatusOK {
		t.Errorf("/api/notes with token = %d", w.Code)
	}
	if w := get(h, "/nowhere"); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Endpoint not found") {
		t.Errorf("/nowhere = %d %s", w.Code, w.Body.String())
	}
}

func TestHTTPHandler_EventsStream(t *testing.T) {
	svc, h := testHandler(t, NewDefaultConfig())
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	if _, err := svc.CreateNote(context.Background(), "Hello", "world"); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 4096)
	var got strings.Builder
	for !strings.Contains(got.String(), "note.created") {
		n, err := resp.Body.Read(buf)
		if err != nil {
			t.Fatalf("read stream: %v (got %q)", err, got.String())
		}
		got.Write(buf[:n])
	}
}

func TestSummarize(t *testing.T) {
	var out bytes.Buffer
	err := Summarize(context.Background(), strings.NewReader(meetingNotes), &out, 1,
		WithConfig(NewDefaultConfig()), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out.String() != "Therefore we must finish testing this week.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestSummarize_TooShort(t *testing.T) {
	err := Summarize(context.Background(), strings.NewReader("tiny note"), io.Discard, 0,
		WithConfig(NewDefaultConfig()), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrTooShort) {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}

func TestEditorLogOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	w, closeLog, err := editorLogOutput(nil, dir, now)
	if err != nil {
		t.Fatalf("editorLogOutput: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(w, nil))
	logger.Info("editor started")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2026-03-04_editor.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "editor started") {
		t.Errorf("log file = %q", data)
	}

	var buf bytes.Buffer
	w, closeLog, err = editorLogOutput([]Option{WithLogOutput(&buf)}, dir, now)
	if err != nil || w != &buf {
		t.Errorf("override: writer=%v err=%v", w, err)
	}
	_ = closeLog()

	if _, _, err := editorLogOutput(nil, "", now); err == nil {
		t.Error("empty log dir should fail")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSeedNotes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("# Alpha\nfirst"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := noteservice.New(storage.NewMemory(), nil, summarizer.NewExtractive(3))

	seedNotes(context.Background(), svc, dir, discardLogger())
	items := svc.ListNotes(context.Background())
	if len(items) != 1 || items[0].Title != "Alpha" {
		t.Errorf("seeded = %+v", items)
	}

	seedNotes(context.Background(), svc, filepath.Join(dir, "missing"), discardLogger())
	if len(svc.ListNotes(context.Background())) != 1 {
		t.Error("missing seed dir should be ignored")
	}
}
