// Package service implements visit tracking on top of the ledger.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MaxVisitorIDLength bounds visitor ids so the derived record key fits every backend.
const MaxVisitorIDLength = 512

// VisitLedger is the subset of *ledger.Ledger the service depends on.
type VisitLedger interface {
	GetCount(ctx context.Context) int64
	HasVisited(ctx context.Context, visitorID string) bool
	MarkVisited(ctx context.Context, visitorID string) (bool, error)
	IncrementCounter(ctx context.Context) (int64, error)
}

// Observer receives visit outcomes. *metrics.Metrics implements it.
type Observer interface {
	RecordVisit(isNewVisit bool)
}

// Visit is the outcome of RecordVisit.
type Visit struct {
	Count      int64
	IsNewVisit bool
}

// VisitService counts each visitor id at most once.
type VisitService struct {
	ledger   VisitLedger
	observer Observer
	logger   *zap.Logger
}

// NewVisitService creates a new VisitService. observer may be nil.
func NewVisitService(ledger VisitLedger, observer Observer, logger *zap.Logger) *VisitService {
	return &VisitService{
		ledger:   ledger,
		observer: observer,
		logger:   logger,
	}
}

// RecordVisit counts visitorID if it has not been seen before and returns the
// resulting total. The visited marker is created conditionally, and only the
// request that created it increments the counter, so concurrent first visits
// for the same id are counted once.
func (s *VisitService) RecordVisit(ctx context.Context, visitorID string) (*Visit, error) {
	if err := validateVisitorID(visitorID); err != nil {
		return nil, err
	}

	if s.ledger.HasVisited(ctx, visitorID) {
		return s.repeatVisit(ctx), nil
	}

	created, err := s.ledger.MarkVisited(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark visitor: %w", err)
	}
	if !created {
		s.logger.Debug("visitor marked concurrently", zap.String("visitor_id", visitorID))
		return s.repeatVisit(ctx), nil
	}

	count, err := s.ledger.IncrementCounter(ctx)
	if err != nil {
		// The marker stays, so this visitor is never counted.
		s.logger.Error("visitor marked but counter not incremented",
			zap.String("visitor_id", visitorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}

	s.observe(true)
	s.logger.Debug("new visit recorded",
		zap.String("visitor_id", visitorID),
		zap.Int64("count", count),
	)
	return &Visit{Count: count, IsNewVisit: true}, nil
}

// ReadCount returns the current total without recording anything.
func (s *VisitService) ReadCount(ctx context.Context) int64 {
	return s.ledger.GetCount(ctx)
}

func (s *VisitService) repeatVisit(ctx context.Context) *Visit {
	s.observe(false)
	return &Visit{Count: s.ledger.GetCount(ctx), IsNewVisit: false}
}

func (s *VisitService) observe(isNew bool) {
	if s.observer != nil {
		s.observer.RecordVisit(isNew)
	}
}

func validateVisitorID(visitorID string) error {
	if strings.TrimSpace(visitorID) == "" {
		return ErrMissingVisitorID
	}
	if len(visitorID) > MaxVisitorIDLength {
		return &InvalidArgumentError{
			Message: fmt.Sprintf("id must be at most %d characters", MaxVisitorIDLength),
		}
	}
	return nil
}
