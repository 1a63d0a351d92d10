// Package structured renders deterministic answers from repository metadata.
package structured

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/intent"
	"github.com/arturoeanton/repolens/internal/port"
)

// NotUnderstood is returned when no strategy handles the intent.
// Callers treat it as "no structured answer", never as an error.
const NotUnderstood = "Question not understood"

// Strategy renders the answer for one intent (Strategy Pattern).
type Strategy interface {
	// Intent returns the intent this strategy answers.
	Intent() intent.Intent

	// Render builds the answer. summary is nil when the repository is unknown.
	Render(repo string, summary *domain.RepositorySummary) string
}

// Answerer dispatches intents to their strategies.
type Answerer struct {
	summaries  port.SummaryStore
	strategies map[intent.Intent]Strategy
}

// NewAnswerer creates an answerer with the given strategies.
// When none are given the built-in strategies are registered.
func NewAnswerer(summaries port.SummaryStore, strategies ...Strategy) *Answerer {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	m := make(map[intent.Intent]Strategy, len(strategies))
	for _, s := range strategies {
		m[s.Intent()] = s
	}
	return &Answerer{summaries: summaries, strategies: m}
}

// Answer looks up the repository summary and renders the strategy for it.
// The boolean is false when the result is NotUnderstood.
func (a *Answerer) Answer(ctx context.Context, it intent.Intent, repo string) (string, bool) {
	s, ok := a.strategies[it]
	if !ok {
		return NotUnderstood, false
	}

	summary, err := a.summaries.GetSummary(ctx, repo)
	if err != nil {
		if !errors.Is(err, port.ErrRepoNotFound) {
			slog.Error("load repository summary", "repo", repo, "intent", it, "error", err)
		}
		summary = nil
	}
	return s.Render(repo, summary), true
}
