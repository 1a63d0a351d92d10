package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/repolens/internal/service"
)

// Version is reported by the health endpoint and the CLI.
const Version = "1.0.0"

// HealthHandler serves liveness and the on-demand provider check.
type HealthHandler struct {
	appName string
	probe   func(ctx context.Context) service.HealthReport
}

// NewHealthHandler creates a health handler. probe runs only when
// /health/providers is requested.
func NewHealthHandler(appName string, probe func(ctx context.Context) service.HealthReport) *HealthHandler {
	return &HealthHandler{appName: appName, probe: probe}
}

// Register sets up health routes.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/health/providers", h.Providers)
}

// Health is a static liveness check.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"app":     h.appName,
		"version": Version,
	})
}

// Providers probes the embedding and chat endpoints.
func (h *HealthHandler) Providers(c fiber.Ctx) error {
	report := h.probe(c.Context())
	status := fiber.StatusOK
	if !report.Healthy() {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(report)
}
