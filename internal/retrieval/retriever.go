package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

// DefaultTopK is used when a caller asks for a non-positive number of contexts.
const DefaultTopK = 5

// Retriever embeds a question and fetches the best matching chunks.
type Retriever struct {
	embedder  port.Embedder
	store     port.ChunkStore
	threshold float64
}

// NewRetriever creates a retriever with the given raw-similarity threshold.
func NewRetriever(embedder port.Embedder, store port.ChunkStore, threshold float64) *Retriever {
	return &Retriever{embedder: embedder, store: store, threshold: threshold}
}

// Retrieve returns up to topK ranked contexts, optionally scoped to one repository.
func (r *Retriever) Retrieve(ctx context.Context, question, repository string, topK int) ([]domain.RetrievedContext, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	contexts, err := r.store.SimilaritySearch(ctx, vec, port.SearchOptions{
		TopK:                topK,
		SimilarityThreshold: r.threshold,
		Repository:          repository,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	slog.Debug("retrieved contexts", "repo", repository, "count", len(contexts))
	return contexts, nil
}
