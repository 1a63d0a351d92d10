package domain

import (
	"sort"
	"time"
)

// Contributor identifies a committer together with the number of commits attributed to them.
type Contributor struct {
	ID      string `json:"id"      yaml:"id"`
	Commits int    `json:"commits" yaml:"commits"`
}

// RepositorySummary is the aggregate metadata row kept for every indexed repository.
// Re-indexing a repository replaces its summary.
type RepositorySummary struct {
	Name            string         `json:"repo_name"`
	HeadCommit      string         `json:"commit_hash"`
	TotalCommits    int            `json:"total_commits"`
	Branches        []string       `json:"branches"`
	Tags            []string       `json:"tags"`
	Contributors    []string       `json:"contributors"`
	MostActive      Contributor    `json:"most_active_contributor"`
	FirstCommitDate time.Time      `json:"first_commit_date"`
	LastCommitDate  time.Time      `json:"last_commit_date"`
	Languages       map[string]int `json:"languages"`
	FilesCount      int            `json:"files_count"`
	CommitMessages  []string       `json:"commit_messages"` // oldest first, last element is the most recent
	Embedding       []float32      `json:"-"`
}

// LanguageCount is one entry of the language breakdown.
type LanguageCount struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
}

// TopLanguages returns up to n languages ordered by file count, ties broken by name.
// A non-positive n returns the full breakdown.
func (r *RepositorySummary) TopLanguages(n int) []LanguageCount {
	out := make([]LanguageCount, 0, len(r.Languages))
	for lang, count := range r.Languages {
		out = append(out, LanguageCount{Language: lang, Files: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Language < out[j].Language
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LastCommitMessage returns the most recent commit message.
func (r *RepositorySummary) LastCommitMessage() (string, bool) {
	if len(r.CommitMessages) == 0 {
		return "", false
	}
	return r.CommitMessages[len(r.CommitMessages)-1], true
}

// AgeDays is the number of whole days between the first and last commit.
func (r *RepositorySummary) AgeDays() int {
	if r.FirstCommitDate.IsZero() || r.LastCommitDate.IsZero() {
		return 0
	}
	return int(r.LastCommitDate.Sub(r.FirstCommitDate).Hours() / 24)
}
