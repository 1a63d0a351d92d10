package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "general", cfg.DBSchema)
	assert.Equal(t, "reposvectorial", cfg.DBTable)
	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.Equal(t, 3072, cfg.EmbeddingDimension)
	assert.Equal(t, 8000, cfg.ChunkMaxTokens)
	assert.Equal(t, 50, cfg.SummaryMaxCommits)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.InDelta(t, 0.8, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 3, cfg.ProviderMaxRetries)
	assert.Equal(t, 2*time.Second, cfg.ProviderRetryDelay)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_DIMENSION", "1024")
	t.Setenv("PROVIDER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, ProviderOllama, cfg.AIProvider)
	assert.Equal(t, 1024, cfg.EmbeddingDimension)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "sqlite:///tmp/x.db", cfg.DSN())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("AI_PROVIDER", "bard")
	t.Setenv("RETRIEVAL_TOP_K", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORE_DRIVER "mysql"`)
	assert.Contains(t, err.Error(), `unknown AI_PROVIDER "bard"`)
	assert.Contains(t, err.Error(), "RETRIEVAL_TOP_K must be positive")
}

func TestLoadRejectsUnparsableValue(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSION", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSNMasksCredentials(t *testing.T) {
	cfg := &Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://user:secret@db:5432/repolens"}
	assert.Equal(t, "postgres://***@db:5432/repolens", cfg.DSN())
	assert.NotContains(t, cfg.DSN(), "secret")
}
