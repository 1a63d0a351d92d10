package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/repolens/internal/logging"
	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/service"
)

// RepositoryIndexer is the part of service.IndexService the HTTP layer uses.
type RepositoryIndexer interface {
	Index(ctx context.Context, rec *service.Record, docs []service.Document) (*service.IndexStats, error)
}

// IndexHandler accepts extractor records and indexes them.
type IndexHandler struct {
	indexer RepositoryIndexer
	guards  []fiber.Handler
}

// NewIndexHandler creates a new index handler. guards run before Index.
func NewIndexHandler(indexer RepositoryIndexer, guards ...fiber.Handler) *IndexHandler {
	return &IndexHandler{indexer: indexer, guards: guards}
}

// Register sets up indexing routes.
func (h *IndexHandler) Register(router fiber.Router) {
	handlers := make([]any, 0, len(h.guards)+1)
	for _, g := range h.guards {
		handlers = append(handlers, g)
	}
	handlers = append(handlers, h.Index)
	router.Post("/index", handlers[0], handlers[1:]...)
}

type indexRequest struct {
	Record    json.RawMessage    `json:"record"`
	Documents []service.Document `json:"documents"`
}

// Index replaces the stored summary and chunks for the record's repository.
func (h *IndexHandler) Index(c fiber.Ctx) error {
	var body indexRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(body.Record) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "record is required"})
	}

	rec, err := service.ParseRecord(body.Record)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := h.indexer.Index(c.Context(), rec, body.Documents)
	if err != nil {
		logging.FromContext(c.Context()).Error("index failed", "repo", rec.Name, "error", err)
		return c.Status(indexErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(stats)
}

func indexErrorStatus(err error) int {
	var perr *port.ProviderError
	switch {
	case errors.Is(err, port.ErrDimensionMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &perr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
