package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "repolens.db"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func demoSummary(name string) domain.RepositorySummary {
	return domain.RepositorySummary{
		Name:            name,
		HeadCommit:      "abc123",
		TotalCommits:    250,
		Branches:        []string{"main", "dev"},
		Tags:            []string{"v1.0"},
		Contributors:    []string{"alice", "bob"},
		MostActive:      domain.Contributor{ID: "alice", Commits: 100},
		FirstCommitDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastCommitDate:  time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC),
		Languages:       map[string]int{"go": 12, "md": 3},
		FilesCount:      15,
		CommitMessages:  []string{"initial", "add parser"},
		Embedding:       []float32{1, 0, 0},
	}
}

func TestSQLiteReplaceAndGetSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.ReplaceRepository(ctx, demoSummary("demo"), nil))

	got, err := s.GetSummary(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.HeadCommit)
	assert.Equal(t, 250, got.TotalCommits)
	assert.Equal(t, []string{"main", "dev"}, got.Branches)
	assert.Equal(t, domain.Contributor{ID: "alice", Commits: 100}, got.MostActive)
	assert.True(t, got.FirstCommitDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, map[string]int{"go": 12, "md": 3}, got.Languages)
	msg, ok := got.LastCommitMessage()
	assert.True(t, ok)
	assert.Equal(t, "add parser", msg)
}

func TestSQLiteGetSummaryNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetSummary(context.Background(), "missing")
	assert.ErrorIs(t, err, port.ErrRepoNotFound)
}

func TestSQLiteReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	chunks := []domain.Chunk{
		{RepoName: "demo", ChunkIndex: 0, FilePath: "main.go", Text: "package main", Embedding: []float32{1, 0, 0}},
		{RepoName: "demo", ChunkIndex: 1, FilePath: "README.md", Text: "# demo", Embedding: []float32{0, 1, 0}},
	}
	require.NoError(t, s.ReplaceRepository(ctx, demoSummary("demo"), chunks))
	require.NoError(t, s.ReplaceRepository(ctx, demoSummary("demo"), chunks[:1]))

	names, err := s.ListRepoNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, names)

	res, err := s.SimilaritySearch(ctx, []float32{1, 1, 0}, port.SearchOptions{TopK: 10, SimilarityThreshold: 0})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "main.go", res[0].FilePath)
}

func TestSQLiteReplaceRejectsBadDimension(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	chunks := []domain.Chunk{{RepoName: "demo", ChunkIndex: 0, FilePath: "a.go", Embedding: []float32{1, 0}}}
	err := s.ReplaceRepository(ctx, demoSummary("demo"), chunks)
	assert.ErrorIs(t, err, port.ErrDimensionMismatch)

	_, err = s.GetSummary(ctx, "demo")
	assert.ErrorIs(t, err, port.ErrRepoNotFound, "failed replace must not leave a summary behind")
}

func TestSQLiteSimilaritySearchRanksAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, c := range []domain.Chunk{
		{RepoName: "demo", ChunkIndex: 0, FilePath: "notes", Text: "plain", Embedding: []float32{1, 0, 0}},
		{RepoName: "demo", ChunkIndex: 1, FilePath: "main.go", Text: "code", Embedding: []float32{0.95, 0.3, 0}},
		{RepoName: "demo", ChunkIndex: 2, FilePath: "far.md", Text: "far", Embedding: []float32{0, 0, 1}},
		{RepoName: "other", ChunkIndex: 0, FilePath: "x.go", Text: "other", Embedding: []float32{1, 0, 0}},
	} {
		require.NoError(t, s.InsertChunk(ctx, c))
	}

	res, err := s.SimilaritySearch(ctx, []float32{1, 0, 0}, port.SearchOptions{
		TopK:                5,
		SimilarityThreshold: port.DefaultSimilarityThreshold,
		Repository:          "demo",
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "main.go", res[0].FilePath)
	assert.True(t, res[0].IsCode)
	assert.Equal(t, "go", res[0].FileType)
	assert.Equal(t, "notes", res[1].FilePath)
	assert.InDelta(t, 1.0, res[1].SimilarityScore, 1e-6)
	assert.GreaterOrEqual(t, res[0].FinalScore, res[1].FinalScore)

	_, err = s.SimilaritySearch(ctx, []float32{1, 0}, port.SearchOptions{TopK: 5})
	assert.ErrorIs(t, err, port.ErrDimensionMismatch)
}

func TestSQLiteSimilaritySearchZeroTopK(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	require.NoError(t, s.InsertChunk(ctx, domain.Chunk{RepoName: "demo", FilePath: "a.go", Embedding: []float32{1, 0, 0}}))

	res, err := s.SimilaritySearch(ctx, []float32{1, 0, 0}, port.SearchOptions{TopK: 0})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSQLiteLegacyContributorColumn(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO repo_summaries (repo_name, total_commits, most_active_contributor) VALUES (?, ?, ?)`,
		"legacy", 3, `"carol"`)
	require.NoError(t, err)

	got, err := s.GetSummary(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, domain.Contributor{ID: "carol"}, got.MostActive)
	assert.True(t, got.FirstCommitDate.IsZero())
}
