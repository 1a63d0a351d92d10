package service

import (
	"context"
	"fmt"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/intent"
	"github.com/arturoeanton/repolens/internal/logging"
	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/retrieval"
	"github.com/arturoeanton/repolens/internal/structured"
)

// RepositoryAnswer is the formatted answer for one repository.
type RepositoryAnswer struct {
	Repository string `json:"repository"`
	Answer     string `json:"answer"`
}

// AnswerService answers natural-language questions about indexed repositories
// by combining structured metadata answers with retrieved context.
type AnswerService struct {
	summaries port.SummaryStore
	retriever *retrieval.Retriever
	answerer  *structured.Answerer
	completer port.Completer
	matcher   RepoMatcher
}

// NewAnswerService wires the answer pipeline. A nil matcher falls back to DiffMatcher.
func NewAnswerService(
	summaries port.SummaryStore,
	retriever *retrieval.Retriever,
	answerer *structured.Answerer,
	completer port.Completer,
	matcher RepoMatcher,
) *AnswerService {
	if matcher == nil {
		matcher = NewDiffMatcher()
	}
	return &AnswerService{
		summaries: summaries,
		retriever: retriever,
		answerer:  answerer,
		completer: completer,
		matcher:   matcher,
	}
}

// Answer returns a Markdown answer for the question. When repository is empty it is
// inferred from the question. Failures degrade to informative text, never an error.
func (s *AnswerService) Answer(ctx context.Context, question, repository string, topK int) string {
	_, answer := s.answer(ctx, question, repository, topK)
	return answer
}

// AnswerEach runs the pipeline once per repository, in order. With no repositories
// the question is answered for the inferred one.
func (s *AnswerService) AnswerEach(ctx context.Context, question string, repositories []string, topK int) []RepositoryAnswer {
	if len(repositories) == 0 {
		repo, answer := s.answer(ctx, question, "", topK)
		return []RepositoryAnswer{{Repository: repo, Answer: answer}}
	}

	out := make([]RepositoryAnswer, 0, len(repositories))
	for _, repo := range repositories {
		resolved, answer := s.answer(ctx, question, repo, topK)
		out = append(out, RepositoryAnswer{Repository: resolved, Answer: answer})
	}
	return out
}

// Repositories lists the names of all indexed repositories.
func (s *AnswerService) Repositories(ctx context.Context) ([]string, error) {
	return s.summaries.ListRepoNames(ctx)
}

func (s *AnswerService) resolve(ctx context.Context, question, repository string) (string, error) {
	if repository != "" {
		return repository, nil
	}
	known, err := s.summaries.ListRepoNames(ctx)
	if err != nil {
		return "", fmt.Errorf("list repositories: %w", err)
	}
	return ResolveRepository(question, known, s.matcher), nil
}

func (s *AnswerService) answer(ctx context.Context, question, repository string, topK int) (string, string) {
	log := logging.FromContext(ctx)
	repo, err := s.resolve(ctx, question, repository)
	if err != nil {
		log.Error("resolve repository", "error", err)
		return "", IndexUnavailableMessage
	}
	if repo == "" {
		return "", NoRepositoriesMessage
	}
	log.Info("answer question", "repo", repo, "explicit", repository != "")

	var contexts []domain.RetrievedContext
	if it, ok := intent.Classify(question); ok {
		if text, understood := s.answerer.Answer(ctx, it, repo); understood {
			log.Debug("structured answer", "repo", repo, "intent", it)
			contexts = append(contexts, structuredContext(repo, text))
		}
	}

	summary, err := s.summaries.GetSummary(ctx, repo)
	if err != nil {
		log.Warn("repository summary unavailable", "repo", repo, "error", err)
		summary = nil
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, repo, topK)
	if err != nil {
		log.Warn("retrieval failed, answering from metadata only", "repo", repo, "error", err)
	}
	contexts = append(contexts, retrieved...)

	raw, err := s.completer.Complete(ctx, port.CompletionRequest{
		System:      systemMessage,
		Prompt:      BuildPrompt(question, repo, summary, contexts),
		Temperature: answerTemperature,
	})
	if err != nil {
		log.Error("completion failed", "repo", repo, "error", err)
		return repo, ApologyMessage
	}

	confidence := Confidence(contexts, ClassifyQuestion(question))
	log.Info("answer ready", "repo", repo, "contexts", len(contexts), "confidence", confidence)
	return repo, FormatAnswer(repo, raw, confidence)
}

// structuredContext wraps a structured answer so it ranks above every retrieved chunk.
func structuredContext(repo, text string) domain.RetrievedContext {
	return domain.RetrievedContext{
		Chunk: domain.Chunk{
			RepoName:   repo,
			ChunkIndex: -1,
			FilePath:   StructuredContextPath,
			Text:       text,
		},
		SimilarityScore: 1.0,
		FinalScore:      1.0,
		IsDoc:           true,
		FileType:        "txt",
	}
}
