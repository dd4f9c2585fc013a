package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore keeps records in a single Postgres table keyed by id.
type PostgresStore struct {
	pool    *pgxpool.Pool
	queries sqlQueries
	logger  *zap.Logger
}

// NewPostgresStore opens a pool for dsn, verifies it and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn, table string, maxConns int32, logger *zap.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{
		pool:    pool,
		queries: newSQLQueries(table, postgresPlaceholder, "TIMESTAMPTZ"),
		logger:  logger,
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, s.queries.createTable); err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}
	return nil
}

// GetCount reads the counter row
func (s *PostgresStore) GetCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, s.queries.getCount, CounterKey).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HasVisited checks for the marker row
func (s *PostgresStore) HasVisited(ctx context.Context, visitorID string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, s.queries.hasVisited, VisitedKey(visitorID)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkVisited inserts the marker row unless it already exists
func (s *PostgresStore) MarkVisited(ctx context.Context, visitorID string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, s.queries.markVisited, VisitedKey(visitorID), at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementCounter upserts the counter row and returns the new count
func (s *PostgresStore) IncrementCounter(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, s.queries.increment, CounterKey).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Ping checks the pool
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
