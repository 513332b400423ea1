package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaude_Summarize(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "## Summary\n- shipped"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	cfg := testProviderConfig(srv.URL)
	cfg.Model = "claude-3-5-haiku-latest"
	s := NewClaude(cfg)

	out, err := s.Summarize(context.Background(), "We shipped the release.")
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n- shipped", out)
	assert.Equal(t, "claude-3-5-haiku-latest", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, systemPrompt, got.System[0].Text)
}

func TestClaude_BadRequestNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`))
	}))
	defer srv.Close()

	_, err := NewClaude(testProviderConfig(srv.URL)).Summarize(context.Background(), "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude api error")
	assert.Equal(t, 1, calls)
}
