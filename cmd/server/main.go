package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/repolens/internal/app"
	"github.com/arturoeanton/repolens/internal/handler"
	"github.com/arturoeanton/repolens/internal/logging"
	"github.com/arturoeanton/repolens/internal/mcp"
	"github.com/arturoeanton/repolens/internal/middleware"
	"github.com/arturoeanton/repolens/pkg/config"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	logger.Info("🚀 Starting "+cfg.AppName,
		"port", cfg.Port,
		"store", cfg.DSN(),
		"provider", cfg.AIProvider,
		"embed_model", cfg.EmbedModel,
		"chat_model", cfg.ChatModel,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Store, provider and services ─────────────────────────────────────
	application, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	// ── Fiber App ────────────────────────────────────────────────────────
	fiberApp := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.ProviderTimeout,
	})

	// Global middleware
	fiberApp.Use(recover.New())
	fiberApp.Use(middleware.RequestLogger())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// ── Routes ───────────────────────────────────────────────────────────
	api := fiberApp.Group("/api/v1")

	handler.NewHealthHandler(cfg.AppName, application.Health).Register(api)
	handler.NewQAHandler(application.Answers, cfg.RetrievalTopK).Register(api)
	handler.NewIndexHandler(application.Indexer, middleware.BearerAuth(cfg.APIToken)).Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(application.Answers, cfg.RetrievalTopK, cfg.MCPPort, handler.Version, logger)
		go func() {
			if err := mcpServer.Start(); err != nil {
				logger.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Shutdown ─────────────────────────────────────────────────────────
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		<-sigs
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fiberApp.ShutdownWithContext(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// ── Start ────────────────────────────────────────────────────────────
	logger.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
