package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/repolens/internal/port"
)

func TestOllamaProvider_EmbedAndComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/embed":
			assert.Equal(t, "bge-m3", body["model"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": [][]float32{{1, 2, 3}}})
		case "/api/chat":
			assert.Equal(t, "qwen3", body["model"])
			assert.Equal(t, false, body["stream"])
			opts := body["options"].(map[string]interface{})
			assert.InDelta(t, 50, opts["num_predict"], 0)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": map[string]string{"content": "Hello there."}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewOllamaProvider(
		OllamaEndpointConfig{BaseURL: srv.URL + "/", Model: "bge-m3", Token: "secret"},
		OllamaEndpointConfig{BaseURL: srv.URL, Model: "qwen3", Token: "secret"},
		5*time.Second, fastRetry,
	)
	assert.Equal(t, "qwen3", p.ModelName())

	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)

	out, err := p.Complete(context.Background(), port.CompletionRequest{Prompt: "hi", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", out)
}

func TestOllamaProvider_ProviderError(t *testing.T) {
	var counter atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer srv.Close()

	cfg := OllamaEndpointConfig{BaseURL: srv.URL, Model: "missing"}
	p := NewOllamaProvider(cfg, cfg, time.Second, fastRetry)

	_, err := p.Embed(context.Background(), "hello")
	var pe *port.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, "model not found", pe.Body)
	assert.Equal(t, int64(1), counter.Load())
}

func TestOllamaProvider_RetriesServerErrors(t *testing.T) {
	var counter atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if counter.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": [][]float32{{0.5}}})
	}))
	defer srv.Close()

	cfg := OllamaEndpointConfig{BaseURL: srv.URL, Model: "m"}
	p := NewOllamaProvider(cfg, cfg, time.Second, fastRetry)

	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.Equal(t, int64(2), counter.Load())
}
