package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a single SQLite table keyed by id. Writes go
// through one connection, so SQLite's own locking serializes the upserts.
type SQLiteStore struct {
	db      *sql.DB
	queries sqlQueries
	logger  *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at path and creates the table
// if needed. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path, table string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		queries: newSQLQueries(table, sqlitePlaceholder, "TEXT"),
		logger:  logger,
	}
	if _, err := db.ExecContext(ctx, s.queries.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	logger.Info("sqlite ledger opened", zap.String("path", path), zap.String("table", table))
	return s, nil
}

// GetCount reads the counter row
func (s *SQLiteStore) GetCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, s.queries.getCount, CounterKey).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HasVisited checks for the marker row
func (s *SQLiteStore) HasVisited(ctx context.Context, visitorID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, s.queries.hasVisited, VisitedKey(visitorID)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkVisited inserts the marker row unless it already exists
func (s *SQLiteStore) MarkVisited(ctx context.Context, visitorID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.queries.markVisited, VisitedKey(visitorID), at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IncrementCounter upserts the counter row and returns the new count
func (s *SQLiteStore) IncrementCounter(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.queries.increment, CounterKey).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Ping checks the database
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
