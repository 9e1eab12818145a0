package nvidia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cockfight/pkg/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": finish,
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer key-a", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m1", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "roast him", req.Messages[1].Content)

		writeJSON(w, http.StatusOK, completion("Готуй бульйон.", "stop"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIKeys:      "key-a",
		BaseURL:      srv.URL,
		Models:       []ModelConfig{{ID: "m1", MaxToken: 100}},
		SystemPrompt: "you are a fighter",
	})
	out, err := c.GenerateText(context.Background(), "roast him")
	require.NoError(t, err)
	assert.Equal(t, "Готуй бульйон.", out)
}

func TestGenerateText_RotatesKeyOnRateLimit(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		mu.Lock()
		seen = append(seen, auth)
		mu.Unlock()
		if auth == "Bearer key-a" {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "rate limit"}})
			return
		}
		writeJSON(w, http.StatusOK, completion("ok", "stop"))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: "key-a, key-b", BaseURL: srv.URL, Models: []ModelConfig{{ID: "m1"}}})
	out, err := c.GenerateText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"Bearer key-a", "Bearer key-b"}, seen)
	assert.Equal(t, 1, c.keys[0].FailureCount)
}

func TestGenerateText_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": map[string]any{"message": "down"}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: "k", BaseURL: srv.URL, Models: []ModelConfig{{ID: "m1"}, {ID: "m2"}}})
	_, err := c.GenerateText(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, generation.Transient, generation.KindOf(err))
}

func TestGenerateText_ContentFilterIsRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, completion("", "content_filter"))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: "k", BaseURL: srv.URL})
	_, err := c.GenerateText(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, generation.IsRefused(err))
}

func TestGenerateText_NoKeys(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.GenerateText(context.Background(), "x")
	assert.Error(t, err)
}
