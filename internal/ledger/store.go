// Package ledger persists visit state in a single key-value table: one counter
// record and one visited marker per visitor id.
package ledger

import (
	"context"
	"time"
)

const (
	// CounterKey identifies the single counter record.
	CounterKey = "global_counter"
	// VisitedPrefix prefixes the key of every visited marker.
	VisitedPrefix = "visited:"
)

// Operation names used in errors, logs and metrics.
const (
	OpGetCount         = "get_count"
	OpHasVisited       = "has_visited"
	OpMarkVisited      = "mark_visited"
	OpIncrementCounter = "increment_counter"
)

// VisitedKey returns the record key for a visitor id.
func VisitedKey(visitorID string) string {
	return VisitedPrefix + visitorID
}

// Store is implemented by each backend. Implementations return raw backend
// errors; the Ledger classifies them.
type Store interface {
	// GetCount returns the counter value, or 0 when the counter record is absent.
	GetCount(ctx context.Context) (int64, error)
	// HasVisited reports whether a visited marker exists for the id.
	HasVisited(ctx context.Context, visitorID string) (bool, error)
	// MarkVisited creates the visited marker if it does not exist yet and
	// reports whether this call created it. It must be a single conditional
	// write in the backend.
	MarkVisited(ctx context.Context, visitorID string, at time.Time) (bool, error)
	// IncrementCounter atomically adds one to the counter, creating it at zero
	// first when absent, and returns the new value.
	IncrementCounter(ctx context.Context) (int64, error)
	// Ping checks connectivity to the backend.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// VisitedRecord is the persisted shape of a visited marker.
type VisitedRecord struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Visited   bool      `json:"visited" dynamodbav:"visited"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// CounterRecord is the persisted shape of the counter.
type CounterRecord struct {
	ID    string `json:"id" dynamodbav:"id"`
	Count int64  `json:"count" dynamodbav:"count"`
}
