package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It is meant for local
// development and tests; state is lost on restart and not shared between
// processes.
type MemoryStore struct {
	mu         sync.Mutex
	count      int64
	hasCounter bool
	visited    map[string]VisitedRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visited: make(map[string]VisitedRecord),
	}
}

// GetCount returns the counter value
func (s *MemoryStore) GetCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

// HasVisited reports whether a marker exists
func (s *MemoryStore) HasVisited(ctx context.Context, visitorID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[VisitedKey(visitorID)]
	return ok, nil
}

// MarkVisited creates the marker if absent
func (s *MemoryStore) MarkVisited(ctx context.Context, visitorID string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := VisitedKey(visitorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visited[key]; ok {
		return false, nil
	}
	s.visited[key] = VisitedRecord{ID: key, Visited: true, Timestamp: at}
	return true, nil
}

// IncrementCounter adds one to the counter
func (s *MemoryStore) IncrementCounter(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasCounter = true
	s.count++
	return s.count, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of records, counter included when present.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.visited)
	if s.hasCounter {
		n++
	}
	return n
}

// Visited returns a copy of the marker for the id.
func (s *MemoryStore) Visited(visitorID string) (VisitedRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.visited[VisitedKey(visitorID)]
	return rec, ok
}
