package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arturoeanton/repolens/internal/domain"
)

// Fixed texts of the answer pipeline.
const (
	ApologyMessage        = "I apologize, but I encountered an error while processing your question. Please try again."
	NoRepositoriesMessage = "No repositories have been indexed yet."
	LowConfidenceNote     = "\n\n> **Note:** This answer is based on limited information and should be verified."

	// IndexUnavailableMessage is returned when known repositories cannot be listed.
	IndexUnavailableMessage = "The repository index is currently unavailable. Please try again later."

	// StructuredContextPath marks the synthetic context carrying a structured answer.
	StructuredContextPath = "structured_query_result"

	answerTemperature = 0.3
	contextsPerKind   = 2
)

const systemMessage = `You are a concise repository assistant. Provide brief, focused answers about code repositories.

Guidelines for responses:
1. Keep answers short and direct - maximum 2-3 sentences when possible
2. Only include technical details if specifically asked
3. Use simple language, avoid unnecessary jargon
4. Skip file citations unless explicitly requested
5. Show confidence level only if below 0.7
6. Show the output in Markdown format
7. When the question relates a key value answer show the answers in side by side table
8. Use this exact table format for all metrics:
    | Metric | Value |
    |--------|-------|
    | Key 1 | Value 1 |
    | Key 2 | Value 2 |
`

// QuestionType weights the confidence score.
type QuestionType string

const (
	QuestionCode    QuestionType = "code"
	QuestionDoc     QuestionType = "doc"
	QuestionGeneral QuestionType = "general"
)

var (
	codeKeywords = []string{"code", "implementation", "function", "class"}
	docKeywords  = []string{"documentation", "readme", "guide", "explain"}
)

// ClassifyQuestion buckets a question by keyword. Code keywords win over doc keywords.
func ClassifyQuestion(question string) QuestionType {
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, codeKeywords):
		return QuestionCode
	case containsAny(lower, docKeywords):
		return QuestionDoc
	default:
		return QuestionGeneral
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Confidence scores how well the contexts support an answer, in [0, 1].
func Confidence(contexts []domain.RetrievedContext, qt QuestionType) float64 {
	if len(contexts) == 0 {
		return 0
	}

	best := contexts[0].FinalScore
	var hasCode, hasDoc bool
	for _, c := range contexts {
		best = math.Max(best, c.FinalScore)
		hasCode = hasCode || c.IsCode
		hasDoc = hasDoc || c.IsDoc
	}

	coverage := 0.0
	if hasCode {
		coverage += 0.2
	}
	if hasDoc {
		coverage += 0.2
	}
	countFactor := math.Min(float64(len(contexts))/5, 1) * 0.2

	multiplier := 1.0
	switch qt {
	case QuestionCode:
		multiplier = typeMultiplier(hasCode)
	case QuestionDoc:
		multiplier = typeMultiplier(hasDoc)
	}

	return math.Min((best*0.6+coverage+countFactor)*multiplier, 1.0)
}

func typeMultiplier(present bool) float64 {
	if present {
		return 1.2
	}
	return 0.8
}

// ConfidenceLevel buckets a score as High, Medium or Low.
func ConfidenceLevel(score float64) string {
	switch {
	case score >= 0.8:
		return "High"
	case score >= 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatAnswer renders the final Markdown answer with its confidence header.
func FormatAnswer(repo, body string, confidence float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Repository: %s\n", repo)
	fmt.Fprintf(&b, "## Confidence Level: **%s** (%.2f)\n\n", ConfidenceLevel(confidence), confidence)
	b.WriteString(body)
	if confidence < 0.5 {
		b.WriteString(LowConfidenceNote)
	}
	return b.String()
}

func activityLevel(totalCommits int) string {
	switch {
	case totalCommits > 1000:
		return "high"
	case totalCommits > 100:
		return "medium"
	default:
		return "low"
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}

// repositoryOverview describes the repository for the prompt. A nil summary
// renders the name with empty figures.
func repositoryOverview(repo string, s *domain.RepositorySummary) string {
	if s == nil {
		s = &domain.RepositorySummary{Name: repo}
	}

	langs := s.TopLanguages(3)
	parts := make([]string, len(langs))
	for i, l := range langs {
		parts[i] = fmt.Sprintf("%s (%d files)", l.Language, l.Files)
	}

	contributor := s.MostActive.ID
	if contributor == "" {
		contributor = "N/A"
	}

	var b strings.Builder
	b.WriteString("Repository Overview:\n")
	fmt.Fprintf(&b, "- Name: %s\n", repo)
	fmt.Fprintf(&b, "- Activity Level: %s (%d total commits)\n", activityLevel(s.TotalCommits), s.TotalCommits)
	fmt.Fprintf(&b, "- Primary Languages: %s\n", joinOrNA(parts))
	fmt.Fprintf(&b, "- Project Scale: %d total files\n", s.FilesCount)
	fmt.Fprintf(&b, "- Development Timeline: %s to %s\n", formatDay(s.FirstCommitDate), formatDay(s.LastCommitDate))
	fmt.Fprintf(&b, "- Main Contributor: %s\n", contributor)
	fmt.Fprintf(&b, "- Active Branches: %s\n", joinOrNA(s.Branches))
	fmt.Fprintf(&b, "- Release Tags: %s\n", joinOrNA(s.Tags))
	return b.String()
}

func contextSection(entries []string, empty string) string {
	if len(entries) == 0 {
		return empty
	}
	if len(entries) > contextsPerKind {
		entries = entries[:contextsPerKind]
	}
	return strings.Join(entries, "\n")
}

// BuildPrompt assembles the user prompt: overview, up to two contexts of each
// kind (documentation, code, other), the question and answering instructions.
func BuildPrompt(question, repo string, summary *domain.RepositorySummary, contexts []domain.RetrievedContext) string {
	var code, docs, other []string
	for _, c := range contexts {
		entry := fmt.Sprintf("Source: %s (Relevance: %.2f)\nContent: %s\n", c.FilePath, c.FinalScore, c.Text)
		switch {
		case c.IsCode:
			code = append(code, entry)
		case c.IsDoc:
			docs = append(docs, entry)
		default:
			other = append(other, entry)
		}
	}

	var b strings.Builder
	b.WriteString("Based on the following repository information and context, please provide a comprehensive answer to the question.\n\n")
	b.WriteString(repositoryOverview(repo, summary))
	b.WriteString("\nRelevant Documentation:\n")
	b.WriteString(contextSection(docs, "No relevant documentation found."))
	b.WriteString("\n\nRelevant Code:\n")
	b.WriteString(contextSection(code, "No relevant code snippets found."))
	b.WriteString("\n\nAdditional Context:\n")
	b.WriteString(contextSection(other, "No additional context available."))
	fmt.Fprintf(&b, "\n\nQuestion: %s\n\n", question)
	b.WriteString(`Please provide a detailed answer that:
1. Directly addresses the question using the most relevant information
2. Cites specific files, code, or documentation when applicable
3. Includes technical details and metrics that support your response
4. Clearly indicates confidence levels for different parts of your answer
5. Synthesizes information from multiple sources when available
`)
	return b.String()
}
