package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/retrieval"
)

// extensionPattern builds a case-insensitive-ready regex like \.(go|py)$.
func extensionPattern(exts []string) string {
	return `\.(` + strings.Join(exts, "|") + `)$`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *PostgresStore) insertChunk(ctx context.Context, ex execer, c domain.Chunk) error {
	if err := port.CheckDimension(c.Embedding, s.dimension); err != nil {
		return fmt.Errorf("insert chunk %s#%d: %w", c.RepoName, c.ChunkIndex, err)
	}

	query := `INSERT INTO ` + s.chunks + ` (repo_name, commit_hash, commit_messages, chunk_index, file_path, text_chunk, embedding)
	          VALUES ($1, $2, $3, $4, $5, $6, $7::vector)`
	_, err := ex.ExecContext(ctx, query,
		c.RepoName, c.CommitHash, string(mustJSON(c.CommitMessages)), c.ChunkIndex,
		c.FilePath, c.Text, pgvector.NewVector(c.Embedding),
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// InsertChunk appends one chunk row.
func (s *PostgresStore) InsertChunk(ctx context.Context, c domain.Chunk) error {
	return s.insertChunk(ctx, s.db, c)
}

// SimilaritySearch ranks chunks by cosine similarity with file-type and recency boosts.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, queryVector []float32, opts port.SearchOptions) ([]domain.RetrievedContext, error) {
	if err := port.CheckDimension(queryVector, s.dimension); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if opts.TopK <= 0 {
		return []domain.RetrievedContext{}, nil
	}

	query := `
		WITH ranked_chunks AS (
			SELECT
				c.id,
				c.repo_name,
				COALESCE(c.commit_hash, '') AS commit_hash,
				COALESCE(c.commit_messages, '') AS commit_messages,
				COALESCE(c.chunk_index, -1) AS chunk_index,
				COALESCE(c.file_path, '') AS file_path,
				COALESCE(c.text_chunk, '') AS text_chunk,
				1 - (c.embedding <=> $1::vector) AS similarity_score,
				CASE
					WHEN c.file_path ~* $5 THEN 1.2
					WHEN c.file_path ~* $6 THEN 1.1
					ELSE 1.0
				END AS file_type_boost,
				CASE
					WHEN c.chunk_index >= 0 THEN 1 + (0.1 * (1.0 / (c.chunk_index + 1)))
					ELSE 1.0
				END AS recency_boost
			FROM ` + s.chunks + ` c
			WHERE 1 - (c.embedding <=> $1::vector) > $2
			  AND ($3::text = '' OR c.repo_name = $3)
		)
		SELECT id, repo_name, commit_hash, commit_messages, chunk_index, file_path, text_chunk, similarity_score
		FROM ranked_chunks
		ORDER BY similarity_score * file_type_boost * recency_boost DESC
		LIMIT $4`

	rows, err := s.db.QueryContext(ctx, query,
		pgvector.NewVector(queryVector), opts.SimilarityThreshold, opts.Repository, opts.TopK,
		s.codePattern, s.docPattern,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedContext
	for rows.Next() {
		var (
			c          domain.Chunk
			messages   string
			similarity float64
		)
		if err := rows.Scan(
			&c.ID, &c.RepoName, &c.CommitHash, &messages, &c.ChunkIndex,
			&c.FilePath, &c.Text, &similarity,
		); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		c.CommitMessages = decodeMessages(messages)
		results = append(results, retrieval.Annotate(c, similarity))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return retrieval.Rank(results, opts), nil
}
