package service

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultMatchCutoff is the minimum similarity ratio for a fuzzy repository match.
const DefaultMatchCutoff = 0.5

// RepoMatcher picks the known repository name closest to a piece of text.
type RepoMatcher interface {
	// Closest returns the best candidate, or false when none is close enough.
	Closest(text string, candidates []string) (string, bool)
}

// DiffMatcher scores candidates with difflib's SequenceMatcher ratio over characters.
type DiffMatcher struct {
	Cutoff float64
}

// NewDiffMatcher returns a matcher using DefaultMatchCutoff.
func NewDiffMatcher() DiffMatcher {
	return DiffMatcher{Cutoff: DefaultMatchCutoff}
}

// Closest returns the highest-ratio candidate at or above the cutoff.
// Ties keep the earlier candidate.
func (m DiffMatcher) Closest(text string, candidates []string) (string, bool) {
	target := strings.Split(strings.ToLower(text), "")

	best, bestRatio := "", -1.0
	for _, c := range candidates {
		sm := difflib.NewMatcher(strings.Split(strings.ToLower(c), ""), target)
		if sm.RealQuickRatio() < m.Cutoff || sm.QuickRatio() < m.Cutoff {
			continue
		}
		if r := sm.Ratio(); r >= m.Cutoff && r > bestRatio {
			best, bestRatio = c, r
		}
	}
	return best, bestRatio >= 0
}

var inRepoPattern = regexp.MustCompile(`in repo (\S+)`)

// ResolveRepository infers which known repository a question is about.
// Precedence: an explicit "in repo X", a case-insensitive substring match,
// a fuzzy match, then the first known repository. It returns "" only when
// known is empty.
func ResolveRepository(question string, known []string, matcher RepoMatcher) string {
	lower := strings.ToLower(question)

	if m := inRepoPattern.FindStringSubmatch(lower); m != nil {
		for _, name := range known {
			if strings.ToLower(name) == m[1] {
				return name
			}
		}
	}

	for _, name := range known {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}

	if matcher != nil {
		if name, ok := matcher.Closest(question, known); ok {
			return name
		}
	}

	if len(known) > 0 {
		return known[0]
	}
	return ""
}
