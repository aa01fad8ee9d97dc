package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps snapshots in the session_snapshots table. Values are
// BYTEA so they come back byte for byte.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const createSnapshotsTable = `CREATE TABLE IF NOT EXISTS session_snapshots (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the snapshot table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("failed to create session_snapshots table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM session_snapshots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO session_snapshots (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM session_snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection when the underlying db supports it.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
