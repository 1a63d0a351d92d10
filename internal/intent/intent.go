// Package intent maps free-text questions to structured-query intents.
package intent

import "strings"

// Intent is a coarse category of question answerable from repository metadata.
type Intent string

const (
	None              Intent = ""
	CommitCount       Intent = "commit_count"
	MostActive        Intent = "most_active"
	Languages         Intent = "languages"
	Files             Intent = "files"
	Version           Intent = "version"
	Dependencies      Intent = "dependencies"
	ContributionTrend Intent = "contribution_trend"
	LastCommit        Intent = "last_commit"
)

type rule struct {
	intent  Intent
	phrases []string
}

// rules is checked top to bottom; the first intent with a matching phrase wins.
var rules = []rule{
	{CommitCount, []string{
		"how many commits", "total commits", "number of commits",
		"commit count", "commits are there", "tell me the commits", "show me commit count",
	}},
	{MostActive, []string{
		"most commits", "top contributor", "who contributed most",
		"most active", "who made the most", "who has contributed", "biggest contributor",
		"primary contributor", "main developer", "who leads the development", "who wrote the most amount of codes",
	}},
	{Languages, []string{
		"what languages", "programming languages", "tech stack",
		"written in", "developed in", "coding languages", "tell me about languages used",
		"show me the tech stack", "what technologies are used", "which programming languages",
		"development stack", "code languages", "what is it built with", "development technologies",
	}},
	{Files, []string{
		"what files", "show files", "list files",
		"what documents", "file structure", "repository contents",
	}},
	{Version, []string{
		"version", "release", "tag", "tagged version", "what version is it",
		"tell me about versions", "show me releases", "latest version", "current release",
		"which version", "release history", "version information",
	}},
	{Dependencies, []string{
		"dependencies", "packages", "libraries", "frameworks",
	}},
	{ContributionTrend, []string{
		"contribution trend", "commit trend", "activity trend",
		"commit history", "contribution history", "how active is development",
		"show me development activity", "tell me about commit patterns", "development timeline",
		"project activity", "how often are commits made", "frequency of updates", "development progress",
	}},
	{LastCommit, []string{
		"last commit", "recent commit", "latest commit", "most recent change",
	}},
}

// All returns every intent in match order.
func All() []Intent {
	out := make([]Intent, len(rules))
	for i, r := range rules {
		out[i] = r.intent
	}
	return out
}

// Phrases returns a copy of the trigger phrases for an intent.
func Phrases(i Intent) []string {
	for _, r := range rules {
		if r.intent == i {
			return append([]string(nil), r.phrases...)
		}
	}
	return nil
}

// Classify returns the first intent whose trigger phrase occurs in the lowercased question.
func Classify(question string) (Intent, bool) {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(q, p) {
				return r.intent, true
			}
		}
	}
	return None, false
}
