package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/arturoeanton/repolens/internal/port"
	"github.com/arturoeanton/repolens/internal/retrieval"
)

// PostgresConfig names the database and the tables holding summaries and chunks.
type PostgresConfig struct {
	DatabaseURL string
	Schema      string // e.g. general
	Table       string // summary table; chunks live in <Table>_chunks
	Dimension   int
}

// PostgresStore implements port.Store over Postgres + pgvector.
// The tables are expected to exist; no DDL is issued.
type PostgresStore struct {
	db          *sql.DB
	dimension   int
	summaries   string
	chunks      string
	codePattern string
	docPattern  string
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newPostgresStore(db, cfg), nil
}

func newPostgresStore(db *sql.DB, cfg PostgresConfig) *PostgresStore {
	return &PostgresStore{
		db:          db,
		dimension:   cfg.Dimension,
		summaries:   qualify(cfg.Schema, cfg.Table),
		chunks:      qualify(cfg.Schema, cfg.Table+"_chunks"),
		codePattern: extensionPattern(retrieval.CodeExtensions),
		docPattern:  extensionPattern(retrieval.DocExtensions),
	}
}

func qualify(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

// Ping verifies the connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

var _ port.Store = (*PostgresStore)(nil)
