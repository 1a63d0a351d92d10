package port

import "context"

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	// Embed generates a vector embedding for the given text with a single provider call.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int // 0 = provider default
}

// Completer produces free-text completions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AIProvider abstracts the AI/LLM backend for embeddings and chat completions.
// Implementations target any OpenAI-compatible API or Ollama.
type AIProvider interface {
	Embedder
	Completer

	// ModelName returns the identifier of the chat model being used.
	ModelName() string
}
