package service

import (
	"context"
	"sync"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

// memStore is an in-memory port.Store used across service tests.
type memStore struct {
	mu        sync.Mutex
	order     []string
	summaries map[string]domain.RepositorySummary
	chunks    map[string][]domain.Chunk

	results    []domain.RetrievedContext
	searchErr  error
	listErr    error
	replaceErr error
	lastSearch port.SearchOptions
}

func newMemStore(summaries ...domain.RepositorySummary) *memStore {
	s := &memStore{
		summaries: map[string]domain.RepositorySummary{},
		chunks:    map[string][]domain.Chunk{},
	}
	for _, sum := range summaries {
		s.order = append(s.order, sum.Name)
		s.summaries[sum.Name] = sum
	}
	return s
}

func (s *memStore) InsertChunk(_ context.Context, c domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[c.RepoName] = append(s.chunks[c.RepoName], c)
	return nil
}

func (s *memStore) SimilaritySearch(_ context.Context, _ []float32, opts port.SearchOptions) ([]domain.RetrievedContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSearch = opts
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *memStore) GetSummary(_ context.Context, name string) (*domain.RepositorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[name]
	if !ok {
		return nil, port.ErrRepoNotFound
	}
	return &sum, nil
}

func (s *memStore) ListRepoNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.order...), nil
}

func (s *memStore) ListSummaries(_ context.Context) ([]domain.RepositorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RepositorySummary, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.summaries[name])
	}
	return out, nil
}

func (s *memStore) ReplaceRepository(_ context.Context, summary domain.RepositorySummary, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	if _, ok := s.summaries[summary.Name]; !ok {
		s.order = append(s.order, summary.Name)
	}
	s.summaries[summary.Name] = summary
	s.chunks[summary.Name] = chunks
	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

var _ port.Store = (*memStore)(nil)

// fakeAI is a scripted port.AIProvider.
type fakeAI struct {
	mu          sync.Mutex
	dim         int
	embedErr    error
	completeErr error
	reply       string
	embedCalls  []string
	requests    []port.CompletionRequest
}

func (f *fakeAI) ModelName() string { return "fake-model" }

func (f *fakeAI) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls = append(f.embedCalls, text)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(f.embedCalls) + i)
	}
	return vec, nil
}

func (f *fakeAI) Complete(_ context.Context, req port.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.reply, nil
}

func (f *fakeAI) lastRequest() port.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return port.CompletionRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// runeTokenizer treats every rune as one token.
type runeTokenizer struct{}

func (runeTokenizer) Encode(s string) []int {
	out := make([]int, 0, len(s))
	for _, r := range s {
		out = append(out, int(r))
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	rs := make([]rune, len(tokens))
	for i, t := range tokens {
		rs[i] = rune(t)
	}
	return string(rs)
}
