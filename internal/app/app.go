// Package app wires configuration into the store, AI provider and services.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/repolens/internal/adapter/ai"
	"github.com/arturoeanton/repolens/internal/adapter/store"
	"github.com/arturoeanton/repolens/internal/chunker"
	"github.com/arturoeanton/repolens/internal/embedding"
	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/retrieval"
	"github.com/arturoeanton/repolens/internal/service"
	"github.com/arturoeanton/repolens/internal/structured"
	"github.com/arturoeanton/repolens/pkg/config"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Store    port.Store
	Provider port.AIProvider
	Answers  *service.AnswerService
	Indexer  *service.IndexService
}

// New opens the configured store and builds the services on top of it.
func New(cfg *config.Config) (*App, error) {
	st, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}

	provider := NewProvider(cfg)

	tok, err := chunker.NewTiktoken(chunker.DefaultEncoding)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	embedder := embedding.NewClient(provider, chunker.New(tok), cfg.EmbeddingDimension)

	retriever := retrieval.NewRetriever(embedder, st, cfg.SimilarityThreshold)
	answerer := structured.NewAnswerer(st)

	return &App{
		Config:   cfg,
		Store:    st,
		Provider: provider,
		Answers:  service.NewAnswerService(st, retriever, answerer, provider, nil),
		Indexer:  service.NewIndexService(embedder, st, cfg.ChunkMaxTokens, cfg.SummaryMaxCommits),
	}, nil
}

// NewStore opens the store selected by STORE_DRIVER.
func NewStore(cfg *config.Config) (port.Store, error) {
	slog.Info("opening store", "driver", cfg.StoreDriver, "dsn", cfg.DSN())
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.NewSQLiteStore(cfg.SQLitePath, cfg.EmbeddingDimension)
	case config.DriverPostgres:
		return store.NewPostgresStore(store.PostgresConfig{
			DatabaseURL: cfg.DatabaseURL,
			Schema:      cfg.DBSchema,
			Table:       cfg.DBTable,
			Dimension:   cfg.EmbeddingDimension,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewProvider builds the AI provider selected by AI_PROVIDER.
func NewProvider(cfg *config.Config) port.AIProvider {
	retry := ai.RetryConfig{
		MaxRetries:   cfg.ProviderMaxRetries,
		InitialDelay: cfg.ProviderRetryDelay,
	}
	if cfg.AIProvider == config.ProviderOllama {
		return ai.NewOllamaProvider(
			ai.OllamaEndpointConfig{BaseURL: cfg.OllamaEmbedURL, Model: cfg.EmbedModel, Token: cfg.OllamaToken},
			ai.OllamaEndpointConfig{BaseURL: cfg.OllamaChatURL, Model: cfg.ChatModel, Token: cfg.OllamaToken},
			cfg.ProviderTimeout,
			retry,
		)
	}
	return ai.NewOpenAIProvider(ai.OpenAIConfig{
		APIKey:         cfg.AIAPIKey,
		BaseURL:        cfg.AIBaseURL,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbedModel,
		Timeout:        cfg.ProviderTimeout,
		Retry:          retry,
	})
}

// Health probes the embedding and chat endpoints.
func (a *App) Health(ctx context.Context) service.HealthReport {
	return service.HealthCheck(ctx, a.Provider, a.Config.EmbeddingDimension)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
