package structured

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/intent"
	"github.com/arturoeanton/repolens/internal/port"
)

type memSummaries struct {
	rows map[string]domain.RepositorySummary
	err  error
}

func (m memSummaries) GetSummary(_ context.Context, name string) (*domain.RepositorySummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.rows[name]
	if !ok {
		return nil, port.ErrRepoNotFound
	}
	return &s, nil
}

func (m memSummaries) ListRepoNames(context.Context) ([]string, error) { return nil, nil }

func (m memSummaries) ListSummaries(context.Context) ([]domain.RepositorySummary, error) {
	return nil, nil
}

func demoSummary() domain.RepositorySummary {
	return domain.RepositorySummary{
		Name:            "demo",
		TotalCommits:    250,
		Branches:        []string{"main"},
		Tags:            []string{"v1.0"},
		Contributors:    []string{"a@x.com", "b@x.com"},
		MostActive:      domain.Contributor{ID: "a@x.com", Commits: 100},
		FirstCommitDate: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		LastCommitDate:  time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC),
		Languages:       map[string]int{".go": 40, ".md": 5, ".py": 5},
		FilesCount:      60,
		CommitMessages:  []string{"initial commit", "add api", "fix bug in parser"},
	}
}

func newDemoAnswerer(rows ...domain.RepositorySummary) *Answerer {
	m := memSummaries{rows: map[string]domain.RepositorySummary{}}
	for _, r := range rows {
		m.rows[r.Name] = r
	}
	return NewAnswerer(m)
}

func TestAnswer_MostActive(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, ok := a.Answer(context.Background(), intent.MostActive, "demo")
	require.True(t, ok)
	assert.Equal(t, "Most active contributor: a@x.com with 100 commits (40.0% of total commits)", got)
}

func TestAnswer_MostActiveZeroCommits(t *testing.T) {
	s := demoSummary()
	s.TotalCommits = 0
	a := newDemoAnswerer(s)

	got, _ := a.Answer(context.Background(), intent.MostActive, "demo")
	assert.Equal(t, "Most active contributor: a@x.com with 100 commits (0.0% of total commits)", got)
}

func TestAnswer_Version(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, ok := a.Answer(context.Background(), intent.Version, "demo")
	require.True(t, ok)
	assert.Equal(t, "Version tags for demo:\n- v1.0\n\nActive branches:\n- main", got)
}

func TestAnswer_VersionEmptySections(t *testing.T) {
	s := demoSummary()
	s.Tags = nil
	s.Branches = nil
	a := newDemoAnswerer(s)

	got, _ := a.Answer(context.Background(), intent.Version, "demo")
	assert.Equal(t, "No version tags found\n\nNo active branches found", got)
}

func TestAnswer_CommitCount(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, _ := a.Answer(context.Background(), intent.CommitCount, "demo")
	assert.Equal(t, "Total commits: 250", got)
}

func TestAnswer_Languages(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, _ := a.Answer(context.Background(), intent.Languages, "demo")
	assert.Equal(t, "Repository contains 60 files:\n\nLanguage breakdown:\n- .go: 40 files\n- .md: 5 files\n- .py: 5 files", got)
}

func TestAnswer_ContributionTrend(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, _ := a.Answer(context.Background(), intent.ContributionTrend, "demo")
	assert.Contains(t, got, "- First commit: 2024-01-01")
	assert.Contains(t, got, "- Last commit: 2024-04-10")
	assert.Contains(t, got, "- Repository age: 99 days")
	assert.Contains(t, got, "- Average commits per day: 2.53")
}

func TestAnswer_ContributionTrendZeroCommits(t *testing.T) {
	s := demoSummary()
	s.TotalCommits = 0
	s.FirstCommitDate = time.Time{}
	s.LastCommitDate = time.Time{}
	a := newDemoAnswerer(s)

	got, ok := a.Answer(context.Background(), intent.ContributionTrend, "demo")
	require.True(t, ok)
	assert.Contains(t, got, "- Repository age: 0 days")
	assert.Contains(t, got, "- Average commits per day: 0.00")
	assert.Contains(t, got, "- First commit: N/A")
}

func TestAnswer_LastCommit(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, _ := a.Answer(context.Background(), intent.LastCommit, "demo")
	assert.Equal(t, "Last commit message: fix bug in parser", got)
}

func TestAnswer_Dependencies(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	got, ok := a.Answer(context.Background(), intent.Dependencies, "demo")
	require.True(t, ok)
	assert.Contains(t, got, "Likely dependencies based on project languages:")
	assert.Contains(t, got, "Python dependencies")
	assert.Contains(t, got, "Go dependencies")
	assert.NotContains(t, got, "Java dependencies")
}

func TestAnswer_NotFound(t *testing.T) {
	a := newDemoAnswerer()
	ctx := context.Background()

	want := map[intent.Intent]string{
		intent.CommitCount:       "No commit information found",
		intent.MostActive:        "No contributor information found",
		intent.Languages:         "No language or file information found",
		intent.Version:           "No version information found",
		intent.Dependencies:      "No language information found",
		intent.ContributionTrend: "No contribution data found",
		intent.LastCommit:        "No commit messages found",
	}
	for it, msg := range want {
		got, ok := a.Answer(ctx, it, "missing")
		assert.True(t, ok, it)
		assert.Equal(t, msg, got, it)
	}
}

func TestAnswer_StoreErrorRendersNotFound(t *testing.T) {
	a := NewAnswerer(memSummaries{err: errors.New("connection refused")})

	got, ok := a.Answer(context.Background(), intent.CommitCount, "demo")
	assert.True(t, ok)
	assert.Equal(t, "No commit information found", got)
}

func TestAnswer_NotUnderstood(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	for _, it := range []intent.Intent{intent.None, intent.Files} {
		got, ok := a.Answer(context.Background(), it, "demo")
		assert.False(t, ok)
		assert.Equal(t, NotUnderstood, got)
	}
}

func TestAnswer_Deterministic(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	for _, it := range intent.All() {
		first, _ := a.Answer(context.Background(), it, "demo")
		second, _ := a.Answer(context.Background(), it, "demo")
		assert.Equal(t, first, second, it)
	}
}

func TestAnswer_RegisteredIntents(t *testing.T) {
	a := newDemoAnswerer(demoSummary())

	for _, it := range intent.All() {
		_, ok := a.Answer(context.Background(), it, "demo")
		assert.Equal(t, it != intent.Files, ok, it)
	}
}
