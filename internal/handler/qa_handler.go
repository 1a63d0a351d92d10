package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/repolens/internal/logging"
	"github.com/arturoeanton/repolens/internal/service"
)

// QuestionAnswerer is the part of service.AnswerService the HTTP layer uses.
type QuestionAnswerer interface {
	AnswerEach(ctx context.Context, question string, repositories []string, topK int) []service.RepositoryAnswer
	Repositories(ctx context.Context) ([]string, error)
}

// QAHandler handles question answering endpoints.
type QAHandler struct {
	answers QuestionAnswerer
	topK    int
}

// NewQAHandler creates a new QA handler. topK is used when a request does not set one.
func NewQAHandler(answers QuestionAnswerer, topK int) *QAHandler {
	return &QAHandler{answers: answers, topK: topK}
}

// Register sets up QA routes.
func (h *QAHandler) Register(router fiber.Router) {
	router.Post("/answer", h.Answer)
	router.Get("/repos", h.ListRepos)
}

type answerRequest struct {
	Question     string   `json:"question"`
	Repository   string   `json:"repository"`
	Repositories []string `json:"repositories"`
	TopK         int      `json:"top_k"`
}

// Answer answers a question for one repository, several, or the inferred one.
func (h *QAHandler) Answer(c fiber.Ctx) error {
	var body answerRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	body.Question = strings.TrimSpace(body.Question)
	if body.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	var repos []string
	if body.Repository != "" {
		repos = append(repos, body.Repository)
	}
	for _, r := range body.Repositories {
		if r = strings.TrimSpace(r); r != "" && r != body.Repository {
			repos = append(repos, r)
		}
	}

	topK := body.TopK
	if topK <= 0 {
		topK = h.topK
	}

	logging.FromContext(c.Context()).Info("QA request", "repositories", repos, "top_k", topK)
	answers := h.answers.AnswerEach(c.Context(), body.Question, repos, topK)

	return c.JSON(fiber.Map{"answers": answers})
}

// ListRepos returns the names of all indexed repositories.
func (h *QAHandler) ListRepos(c fiber.Ctx) error {
	names, err := h.answers.Repositories(c.Context())
	if err != nil {
		logging.FromContext(c.Context()).Error("list repositories", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list repositories"})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"repositories": names})
}
