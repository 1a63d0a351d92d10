package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arturoeanton/repolens/internal/port"
)

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. bge-m3, qwen3
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaProvider implements port.AIProvider using the Ollama REST API.
// Supports separate endpoints for embed vs chat (different URLs, models, and tokens).
type OllamaProvider struct {
	embed      OllamaEndpointConfig
	chat       OllamaEndpointConfig
	httpClient *http.Client
	retry      RetryConfig
}

// NewOllamaProvider creates a new Ollama-backed AI provider with separate embed/chat configs.
func NewOllamaProvider(embed, chat OllamaEndpointConfig, timeout time.Duration, retry RetryConfig) *OllamaProvider {
	embed.BaseURL = strings.TrimRight(embed.BaseURL, "/")
	chat.BaseURL = strings.TrimRight(chat.BaseURL, "/")
	return &OllamaProvider{
		embed:      embed,
		chat:       chat,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry.withDefaults(),
	}
}

// ModelName returns the chat model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.chat.Model
}

// Embed generates a vector embedding for the given text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": o.embed.Model,
		"input": text,
	}

	body, err := o.post(ctx, "embed", o.embed, "/api/embed", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &port.ProviderError{Operation: "embed", StatusCode: http.StatusOK, Body: string(body), Err: err}
	}
	if len(resp.Embeddings) == 0 {
		return nil, &port.ProviderError{Operation: "embed", StatusCode: http.StatusOK, Body: "empty response"}
	}

	return resp.Embeddings[0], nil
}

// Complete sends a system + user prompt to /api/chat and returns the full response.
func (o *OllamaProvider) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	options := map[string]interface{}{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	payload := map[string]interface{}{
		"model":    o.chat.Model,
		"messages": messages,
		"stream":   false,
		"options":  options,
	}

	body, err := o.post(ctx, "complete", o.chat, "/api/chat", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &port.ProviderError{Operation: "complete", StatusCode: http.StatusOK, Body: string(body), Err: err}
	}

	return strings.TrimSpace(resp.Message.Content), nil
}

// post sends a JSON POST to an Ollama endpoint (with optional bearer token), retrying transient failures.
func (o *OllamaProvider) post(ctx context.Context, op string, cfg OllamaEndpointConfig, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var out []byte
	err = withRetry(ctx, o.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payloadBytes))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.Token)
		}

		resp, err := o.httpClient.Do(req)
		if err != nil {
			return &port.ProviderError{Operation: op, Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &port.ProviderError{Operation: op, StatusCode: resp.StatusCode, Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return &port.ProviderError{Operation: op, StatusCode: resp.StatusCode, Body: string(body)}
		}
		out = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ port.AIProvider = (*OllamaProvider)(nil)
