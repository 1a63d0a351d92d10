package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/retrieval"
)

// SQLiteStore implements port.Store on an embedded SQLite file.
// Similarity is computed in Go with cosine similarity over every candidate row.
type SQLiteStore struct {
	db        *sql.DB
	dimension int
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS repo_summaries (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_name               TEXT NOT NULL UNIQUE,
	commit_hash             TEXT NOT NULL DEFAULT '',
	total_commits           INTEGER NOT NULL DEFAULT 0,
	branches                TEXT,
	tags                    TEXT,
	contributors            TEXT,
	most_active_contributor TEXT,
	first_commit_date       TEXT,
	last_commit_date        TEXT,
	languages               TEXT,
	files_count             INTEGER NOT NULL DEFAULT 0,
	commit_messages         TEXT,
	embedding               BLOB
);
CREATE TABLE IF NOT EXISTS repo_chunks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_name       TEXT NOT NULL,
	commit_hash     TEXT,
	commit_messages TEXT,
	chunk_index     INTEGER,
	file_path       TEXT,
	text_chunk      TEXT,
	embedding       BLOB
);
CREATE INDEX IF NOT EXISTS idx_repo_chunks_repo ON repo_chunks(repo_name, chunk_index);
`

// NewSQLiteStore opens (or creates) the database file and ensures its tables exist.
func NewSQLiteStore(path string, dimension int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db, dimension: dimension}, nil
}

// Ping verifies the connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) insertChunk(ctx context.Context, ex execer, c domain.Chunk) error {
	if err := port.CheckDimension(c.Embedding, s.dimension); err != nil {
		return fmt.Errorf("insert chunk %s#%d: %w", c.RepoName, c.ChunkIndex, err)
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO repo_chunks (repo_name, commit_hash, commit_messages, chunk_index, file_path, text_chunk, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.RepoName, c.CommitHash, string(mustJSON(c.CommitMessages)), c.ChunkIndex,
		c.FilePath, c.Text, serializeVector(c.Embedding),
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// InsertChunk appends one chunk row.
func (s *SQLiteStore) InsertChunk(ctx context.Context, c domain.Chunk) error {
	return s.insertChunk(ctx, s.db, c)
}

// SimilaritySearch scores every candidate chunk in Go and ranks them.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, queryVector []float32, opts port.SearchOptions) ([]domain.RetrievedContext, error) {
	if err := port.CheckDimension(queryVector, s.dimension); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	query := `SELECT id, repo_name, COALESCE(commit_hash, ''), COALESCE(commit_messages, ''),
	                 COALESCE(chunk_index, -1), COALESCE(file_path, ''), COALESCE(text_chunk, ''), embedding
	          FROM repo_chunks`
	var args []interface{}
	if opts.Repository != "" {
		query += ` WHERE repo_name = ?`
		args = append(args, opts.Repository)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []domain.RetrievedContext
	for rows.Next() {
		var (
			c        domain.Chunk
			messages string
			blob     []byte
		)
		if err := rows.Scan(&c.ID, &c.RepoName, &c.CommitHash, &messages, &c.ChunkIndex, &c.FilePath, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		vec := deserializeVector(blob)
		if len(vec) != len(queryVector) {
			return nil, fmt.Errorf("chunk %d: %w", c.ID, &port.DimensionError{Expected: len(queryVector), Got: len(vec)})
		}
		c.CommitMessages = decodeMessages(messages)
		candidates = append(candidates, retrieval.Annotate(c, cosineSimilarity(queryVector, vec)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return retrieval.Rank(candidates, opts), nil
}

const sqliteSummaryColumns = `repo_name, commit_hash, total_commits, branches, tags, contributors,
	most_active_contributor, first_commit_date, last_commit_date, languages, files_count, commit_messages`

func scanSQLiteSummary(row rowScanner) (*domain.RepositorySummary, error) {
	var (
		r                                    domain.RepositorySummary
		branches, tags, contributors, active sql.NullString
		first, last, languages, messages     sql.NullString
	)
	if err := row.Scan(&r.Name, &r.HeadCommit, &r.TotalCommits, &branches, &tags, &contributors,
		&active, &first, &last, &languages, &r.FilesCount, &messages); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw    sql.NullString
		dst    interface{}
		column string
	}{
		{branches, &r.Branches, "branches"},
		{tags, &r.Tags, "tags"},
		{contributors, &r.Contributors, "contributors"},
		{languages, &r.Languages, "languages"},
		{messages, &r.CommitMessages, "commit_messages"},
	} {
		if err := decodeJSON([]byte(f.raw.String), f.dst, f.column); err != nil {
			return nil, err
		}
	}

	mostActive, err := decodeContributor([]byte(active.String))
	if err != nil {
		return nil, err
	}
	r.MostActive = mostActive

	if r.FirstCommitDate, err = parseTime(first); err != nil {
		return nil, err
	}
	if r.LastCommitDate, err = parseTime(last); err != nil {
		return nil, err
	}
	return &r, nil
}

func parseTime(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", v.String, err)
	}
	return t, nil
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// GetSummary returns the summary row for a repository, or port.ErrRepoNotFound.
func (s *SQLiteStore) GetSummary(ctx context.Context, name string) (*domain.RepositorySummary, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteSummaryColumns+` FROM repo_summaries WHERE repo_name = ?`, name)
	r, err := scanSQLiteSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrRepoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return r, nil
}

// ListSummaries returns every summary in insertion order.
func (s *SQLiteStore) ListSummaries(ctx context.Context) ([]domain.RepositorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteSummaryColumns+` FROM repo_summaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RepositorySummary
	for rows.Next() {
		r, err := scanSQLiteSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListRepoNames returns the names of all indexed repositories in insertion order.
func (s *SQLiteStore) ListRepoNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT repo_name FROM repo_summaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list repo names: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

// ReplaceRepository swaps the repository's summary and chunks in one transaction.
func (s *SQLiteStore) ReplaceRepository(ctx context.Context, summary domain.RepositorySummary, chunks []domain.Chunk) error {
	if err := port.CheckDimension(summary.Embedding, s.dimension); err != nil {
		return fmt.Errorf("replace %s: summary: %w", summary.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM repo_chunks WHERE repo_name = ?`, summary.Name); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM repo_summaries WHERE repo_name = ?`, summary.Name); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO repo_summaries (`+sqliteSummaryColumns+`, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.Name, summary.HeadCommit, summary.TotalCommits,
		string(mustJSON(summary.Branches)), string(mustJSON(summary.Tags)), string(mustJSON(summary.Contributors)),
		string(mustJSON(summary.MostActive)), formatTime(summary.FirstCommitDate), formatTime(summary.LastCommitDate),
		string(mustJSON(summary.Languages)), summary.FilesCount, string(mustJSON(summary.CommitMessages)),
		serializeVector(summary.Embedding),
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

var _ port.Store = (*SQLiteStore)(nil)
