// Package db provides PostgreSQL storage for published rule sets.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of *pgxpool.Pool the store uses
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
	q    querier
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("failed to connect to database: database URL is empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, q: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `CREATE TABLE IF NOT EXISTS rule_sets (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	version      TEXT NOT NULL,
	content      JSONB NOT NULL,
	published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (name, version)
)`

// EnsureSchema creates the rule_sets table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create rule_sets table: %w", err)
	}
	return nil
}
