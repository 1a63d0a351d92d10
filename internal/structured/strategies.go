package structured

import (
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/intent"
)

// DefaultStrategies returns one strategy per answerable intent.
// Files has no strategy and therefore renders as NotUnderstood.
func DefaultStrategies() []Strategy {
	return []Strategy{
		CommitCountStrategy{},
		MostActiveStrategy{},
		LanguagesStrategy{},
		VersionStrategy{},
		DependenciesStrategy{},
		ContributionTrendStrategy{},
		LastCommitStrategy{},
	}
}

// CommitCountStrategy reports the total number of commits.
type CommitCountStrategy struct{}

func (CommitCountStrategy) Intent() intent.Intent { return intent.CommitCount }

func (CommitCountStrategy) Render(_ string, s *domain.RepositorySummary) string {
	if s == nil {
		return "No commit information found"
	}
	return fmt.Sprintf("Total commits: %d", s.TotalCommits)
}

// MostActiveStrategy reports the top contributor and their share of commits.
type MostActiveStrategy struct{}

func (MostActiveStrategy) Intent() intent.Intent { return intent.MostActive }

func (MostActiveStrategy) Render(_ string, s *domain.RepositorySummary) string {
	if s == nil || s.MostActive.ID == "" {
		return "No contributor information found"
	}
	var pct float64
	if s.TotalCommits > 0 {
		pct = float64(s.MostActive.Commits) / float64(s.TotalCommits) * 100
	}
	return fmt.Sprintf("Most active contributor: %s with %d commits (%.1f%% of total commits)",
		s.MostActive.ID, s.MostActive.Commits, pct)
}

// LanguagesStrategy lists file counts per language.
type LanguagesStrategy struct{}

func (LanguagesStrategy) Intent() intent.Intent { return intent.Languages }

func (LanguagesStrategy) Render(_ string, s *domain.RepositorySummary) string {
	if s == nil {
		return "No language or file information found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Repository contains %d files:\n\nLanguage breakdown:", s.FilesCount)
	for _, lc := range s.TopLanguages(0) {
		fmt.Fprintf(&b, "\n- %s: %d files", lc.Language, lc.Files)
	}
	return b.String()
}

// VersionStrategy lists tags and branches.
type VersionStrategy struct{}

func (VersionStrategy) Intent() intent.Intent { return intent.Version }

func (VersionStrategy) Render(repo string, s *domain.RepositorySummary) string {
	if s == nil {
		return "No version information found"
	}
	var parts []string
	if len(s.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("Version tags for %s:", repo))
		for _, t := range s.Tags {
			parts = append(parts, "- "+t)
		}
	} else {
		parts = append(parts, "No version tags found")
	}

	if len(s.Branches) > 0 {
		parts = append(parts, "\nActive branches:")
		for _, br := range s.Branches {
			parts = append(parts, "- "+br)
		}
	} else {
		parts = append(parts, "\nNo active branches found")
	}
	return strings.Join(parts, "\n")
}

// DependenciesStrategy guesses dependency ecosystems from the language breakdown.
// The output is advisory; no manifest is read.
type DependenciesStrategy struct{}

func (DependenciesStrategy) Intent() intent.Intent { return intent.Dependencies }

func (DependenciesStrategy) Render(_ string, s *domain.RepositorySummary) string {
	if s == nil || len(s.Languages) == 0 {
		return "No language information found"
	}

	langs := make(map[string]bool, len(s.Languages))
	for k := range s.Languages {
		langs[strings.TrimPrefix(strings.ToLower(k), ".")] = true
	}

	lines := []string{"Likely dependencies based on project languages:"}
	if langs["java"] {
		lines = append(lines,
			"Java dependencies (check pom.xml or build.gradle):",
			"- Spring Framework",
			"- Maven/Gradle build system")
	}
	if langs["python"] || langs["py"] {
		lines = append(lines,
			"\nPython dependencies (check requirements.txt or setup.py):",
			"- Python packages",
			"- pip package manager")
	}
	if langs["javascript"] || langs["js"] {
		lines = append(lines,
			"\nJavaScript dependencies (check package.json):",
			"- npm packages",
			"- Node.js runtime")
	}
	if langs["go"] {
		lines = append(lines,
			"\nGo dependencies (check go.mod):",
			"- Go modules")
	}
	return strings.Join(lines, "\n")
}

// ContributionTrendStrategy reports repository age and commit frequency.
type ContributionTrendStrategy struct{}

func (ContributionTrendStrategy) Intent() intent.Intent { return intent.ContributionTrend }

func (ContributionTrendStrategy) Render(repo string, s *domain.RepositorySummary) string {
	if s == nil {
		return "No contribution data found"
	}
	days := s.AgeDays()
	var avg float64
	if days > 0 {
		avg = float64(s.TotalCommits) / float64(days)
	}
	return fmt.Sprintf(`Contribution trend for %s:
- First commit: %s
- Last commit: %s
- Total commits: %d
- Repository age: %d days
- Average commits per day: %.2f`,
		repo, formatDate(s.FirstCommitDate), formatDate(s.LastCommitDate), s.TotalCommits, days, avg)
}

// LastCommitStrategy reports the most recent commit message.
type LastCommitStrategy struct{}

func (LastCommitStrategy) Intent() intent.Intent { return intent.LastCommit }

func (LastCommitStrategy) Render(_ string, s *domain.RepositorySummary) string {
	if s == nil {
		return "No commit messages found"
	}
	msg, ok := s.LastCommitMessage()
	if !ok {
		return "No commit messages found"
	}
	return "Last commit message: " + msg
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}
