package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProviderConfig(baseURL string) ProviderConfig {
	return ProviderConfig{
		APIKey:      "test-key",
		Model:       "gpt-3.5-turbo",
		BaseURL:     baseURL,
		MaxTokens:   500,
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  - key point\n"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	s := NewOpenAI(testProviderConfig(srv.URL + "/v1"))
	out, err := s.Summarize(context.Background(), "# Notes\nSome markdown notes to summarize.")
	require.NoError(t, err)

	assert.Equal(t, "- key point", out)
	assert.Equal(t, "gpt-3.5-turbo", s.Name())
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, systemPrompt, got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "Some markdown notes to summarize.")
	assert.Contains(t, got.Messages[1].Content, "Summary:")
}

func TestOpenAI_Unauthorized(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(testProviderConfig(srv.URL + "/v1")).Summarize(context.Background(), "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api error")
	assert.Equal(t, 1, calls, "401 must not be retried")
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(testProviderConfig(srv.URL + "/v1")).Summarize(context.Background(), "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestBuildPrompt_Truncates(t *testing.T) {
	long := make([]rune, maxPromptChars+50)
	for i := range long {
		long[i] = 'x'
	}
	p := buildPrompt(string(long))
	assert.Contains(t, p, "...(truncated)")
	assert.NotContains(t, buildPrompt("short notes"), "truncated")
}
