package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS wear_cache (
    node_id    TEXT        NOT NULL,
    cache_key  TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (node_id, cache_key)
)`

// Postgres stores the cache in a shared table, one row per node and key
type Postgres struct {
	pool   *pgxpool.Pool
	nodeID string
}

// NewPostgres connects and creates the cache table if needed.
func NewPostgres(ctx context.Context, dsn, nodeID string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if _, err := pool.Exec(ctx, createCacheTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create wear_cache table: %w", err)
	}
	return &Postgres{pool: pool, nodeID: nodeID}, nil
}

func (s *Postgres) Get(ctx context.Context, key string) (events.DataMap, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM wear_cache WHERE node_id = $1 AND cache_key = $2`,
		s.nodeID, key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}

	var value events.DataMap
	if err := decodeValue(payload, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value events.DataMap) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
        INSERT INTO wear_cache (node_id, cache_key, payload, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (node_id, cache_key)
        DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		s.nodeID, key, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
