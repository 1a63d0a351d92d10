package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arturoeanton/repolens/internal/port"
)

// OpenAIConfig holds configuration for any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string // e.g. https://api.openai.com/v1
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	Retry          RetryConfig
}

// OpenAIProvider implements port.AIProvider on top of go-openai.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	retry          RetryConfig
}

// NewOpenAIProvider creates a provider from configuration.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = string(openai.LargeEmbedding3)
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(config),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		retry:          cfg.Retry.withDefaults(),
	}
}

// ModelName returns the chat model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.chatModel
}

// Embed sends {model, input} to /embeddings and returns the first vector.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: text,
	}

	var resp openai.EmbeddingResponse
	err := withRetry(ctx, p.retry, func() error {
		var err error
		resp, err = p.client.CreateEmbeddings(ctx, req)
		return err
	})
	if err != nil {
		return nil, wrapOpenAIError("embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, &port.ProviderError{Operation: "embed", StatusCode: http.StatusOK, Body: "no embedding data in response"}
	}
	return resp.Data[0].Embedding, nil
}

// Complete sends a system + user message pair to /chat/completions.
func (p *OpenAIProvider) Complete(ctx context.Context, in port.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if in.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: in.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Prompt})

	req := openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Messages:    messages,
		Temperature: in.Temperature,
	}
	if in.MaxTokens > 0 {
		req.MaxTokens = in.MaxTokens
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, p.retry, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", wrapOpenAIError("complete", err)
	}
	if len(resp.Choices) == 0 {
		return "", &port.ProviderError{Operation: "complete", StatusCode: http.StatusOK, Body: "no choices in response"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// wrapOpenAIError converts go-openai errors into *port.ProviderError.
func wrapOpenAIError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &port.ProviderError{Operation: operation, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if body == "" {
			body = reqErr.Error()
		}
		return &port.ProviderError{Operation: operation, StatusCode: reqErr.HTTPStatusCode, Body: body, Err: err}
	}

	return &port.ProviderError{Operation: operation, Err: err}
}

var _ port.AIProvider = (*OpenAIProvider)(nil)
