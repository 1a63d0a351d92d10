package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

func (s *PostgresStore) summaryQuery() string {
	return `SELECT s.repo_name,
	               COALESCE(s.total_commits, 0),
	               s.branches,
	               s.tags,
	               s.contributors,
	               s.most_active_contributor,
	               s.first_commit_date,
	               s.last_commit_date,
	               s.languages,
	               COALESCE(s.files_count, 0),
	               s.commit_messages,
	               COALESCE((SELECT c.commit_hash FROM ` + s.chunks + ` c
	                         WHERE c.repo_name = s.repo_name
	                         ORDER BY c.chunk_index LIMIT 1), '')
	        FROM ` + s.summaries + ` s`
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*domain.RepositorySummary, error) {
	var (
		r                       domain.RepositorySummary
		contributors, active    []byte
		languages, messages     []byte
		firstCommit, lastCommit sql.NullTime
	)
	if err := row.Scan(
		&r.Name, &r.TotalCommits, pq.Array(&r.Branches), pq.Array(&r.Tags),
		&contributors, &active, &firstCommit, &lastCommit,
		&languages, &r.FilesCount, &messages, &r.HeadCommit,
	); err != nil {
		return nil, err
	}

	if err := decodeJSON(contributors, &r.Contributors, "contributors"); err != nil {
		return nil, err
	}
	if err := decodeJSON(languages, &r.Languages, "languages"); err != nil {
		return nil, err
	}
	if err := decodeJSON(messages, &r.CommitMessages, "commit_messages"); err != nil {
		return nil, err
	}
	mostActive, err := decodeContributor(active)
	if err != nil {
		return nil, err
	}
	r.MostActive = mostActive
	if firstCommit.Valid {
		r.FirstCommitDate = firstCommit.Time
	}
	if lastCommit.Valid {
		r.LastCommitDate = lastCommit.Time
	}
	return &r, nil
}

// GetSummary returns the summary row for a repository, or port.ErrRepoNotFound.
func (s *PostgresStore) GetSummary(ctx context.Context, name string) (*domain.RepositorySummary, error) {
	row := s.db.QueryRowContext(ctx, s.summaryQuery()+` WHERE s.repo_name = $1 ORDER BY s.id DESC LIMIT 1`, name)
	r, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRepoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return r, nil
}

// ListSummaries returns every summary in insertion order.
func (s *PostgresStore) ListSummaries(ctx context.Context) ([]domain.RepositorySummary, error) {
	rows, err := s.db.QueryContext(ctx, s.summaryQuery()+` ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.RepositorySummary
	for rows.Next() {
		r, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListRepoNames returns the names of all indexed repositories in insertion order.
func (s *PostgresStore) ListRepoNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT repo_name FROM `+s.summaries+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list repo names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan repo name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ReplaceRepository deletes the repository's summary and chunks and writes the new set
// in one transaction. Nothing is committed if any row fails.
func (s *PostgresStore) ReplaceRepository(ctx context.Context, summary domain.RepositorySummary, chunks []domain.Chunk) error {
	if err := port.CheckDimension(summary.Embedding, s.dimension); err != nil {
		return fmt.Errorf("replace %s: summary: %w", summary.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.chunks+` WHERE repo_name = $1`, summary.Name); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.summaries+` WHERE repo_name = $1`, summary.Name); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}

	var first, last interface{}
	if !summary.FirstCommitDate.IsZero() {
		first = summary.FirstCommitDate
	}
	if !summary.LastCommitDate.IsZero() {
		last = summary.LastCommitDate
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO `+s.summaries+`
		(repo_name, total_commits, branches, tags, contributors,
		 most_active_contributor, first_commit_date, last_commit_date, languages, files_count, commit_messages, embedding)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, $9::jsonb, $10, $11::jsonb, $12::vector)`,
		summary.Name, summary.TotalCommits, pq.Array(summary.Branches), pq.Array(summary.Tags),
		string(mustJSON(summary.Contributors)), string(mustJSON(summary.MostActive)),
		first, last, string(mustJSON(summary.Languages)), summary.FilesCount,
		string(mustJSON(summary.CommitMessages)), pgvector.NewVector(summary.Embedding),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	for _, c := range chunks {
		if err := s.insertChunk(ctx, tx, c); err != nil {
			return err
		}
	}

	return tx.Commit()
}
