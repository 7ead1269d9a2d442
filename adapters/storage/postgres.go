package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanquote/core/pricing"
)

const createStateTable = `
CREATE TABLE IF NOT EXISTS pricing_state (
	id         SMALLINT PRIMARY KEY CHECK (id = 1),
	version    BIGINT      NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	document   JSONB       NOT NULL
)`

// A save never moves the stored version backwards.
const upsertState = `
INSERT INTO pricing_state (id, version, updated_at, document)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET version = EXCLUDED.version, updated_at = EXCLUDED.updated_at, document = EXCLUDED.document
WHERE pricing_state.version < EXCLUDED.version`

const selectState = `SELECT document FROM pricing_state WHERE id = 1`

// PostgresStore keeps the state as a single JSONB row
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, checks the connection and creates the table
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL configuration is required")
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createStateTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create pricing_state table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*pricing.State, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, selectState).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing state: %w", err)
	}

	var state pricing.State
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing state: %w", err)
	}
	return &state, nil
}

func (s *PostgresStore) Save(ctx context.Context, state *pricing.State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal pricing state: %w", err)
	}

	tag, err := s.pool.Exec(ctx, upsertState, int64(state.Version), state.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("failed to save pricing state (version %d): %w", state.Version, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stored pricing state is newer than version %d", state.Version)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
