package port

import (
	"context"

	"github.com/arturoeanton/repolens/internal/domain"
)

// DefaultSimilarityThreshold is the raw-similarity cutoff applied before re-ranking.
const DefaultSimilarityThreshold = 0.8

// SearchOptions controls a similarity search.
type SearchOptions struct {
	TopK                int
	SimilarityThreshold float64
	Repository          string // empty = all repositories
}

// ChunkStore persists chunks and answers similarity queries over them.
type ChunkStore interface {
	// InsertChunk appends a chunk. The caller owns chunk_index; the store never renumbers.
	InsertChunk(ctx context.Context, c domain.Chunk) error

	// SimilaritySearch returns at most opts.TopK contexts whose raw similarity exceeds
	// opts.SimilarityThreshold, ordered by final score descending.
	SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]domain.RetrievedContext, error)
}

// SummaryStore reads repository summaries.
type SummaryStore interface {
	// GetSummary returns ErrRepoNotFound when no row exists for name.
	GetSummary(ctx context.Context, name string) (*domain.RepositorySummary, error)
	ListRepoNames(ctx context.Context) ([]string, error)
	ListSummaries(ctx context.Context) ([]domain.RepositorySummary, error)
}

// IndexWriter replaces everything stored for one repository in a single transaction.
type IndexWriter interface {
	ReplaceRepository(ctx context.Context, summary domain.RepositorySummary, chunks []domain.Chunk) error
}

// Store is the full persistence surface implemented by the Postgres and SQLite adapters.
type Store interface {
	ChunkStore
	SummaryStore
	IndexWriter
	Ping(ctx context.Context) error
	Close() error
}
