package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRepository(t *testing.T) {
	known := []string{"alpha", "payments-api", "Billing"}

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"explicit in repo", "how many commits in repo payments-api", "payments-api"},
		{"in repo is case-insensitive", "tags in repo billing", "Billing"},
		{"substring", "what languages does Payments-API use?", "payments-api"},
		{"substring beats fuzzy", "alpha or alphx?", "alpha"},
		{"fuzzy match", "paymnts-api", "payments-api"},
		{"fallback to first", "who is the most active contributor?", "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRepository(tt.question, known, NewDiffMatcher()))
		})
	}
}

func TestResolveRepositoryUnknownInRepoFallsThrough(t *testing.T) {
	got := ResolveRepository("commits in repo nowhere for alpha", []string{"beta", "alpha"}, NewDiffMatcher())
	assert.Equal(t, "alpha", got)
}

func TestResolveRepositoryEmpty(t *testing.T) {
	assert.Equal(t, "", ResolveRepository("anything", nil, NewDiffMatcher()))
}

type fixedMatcher string

func (m fixedMatcher) Closest(string, []string) (string, bool) { return string(m), m != "" }

func TestResolveRepositoryUsesMatcher(t *testing.T) {
	known := []string{"alpha", "beta"}
	assert.Equal(t, "beta", ResolveRepository("no names here", known, fixedMatcher("beta")))
	assert.Equal(t, "alpha", ResolveRepository("no names here", known, fixedMatcher("")))
	assert.Equal(t, "alpha", ResolveRepository("no names here", known, nil))
}

func TestDiffMatcherCutoff(t *testing.T) {
	m := NewDiffMatcher()

	got, ok := m.Closest("paymnts-api", []string{"alpha", "payments-api"})
	assert.True(t, ok)
	assert.Equal(t, "payments-api", got)

	_, ok = m.Closest("completely unrelated question text", []string{"xyz"})
	assert.False(t, ok)

	_, ok = DiffMatcher{Cutoff: 0.99}.Closest("paymnts-api", []string{"payments-api"})
	assert.False(t, ok)
}
