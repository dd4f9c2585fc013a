package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Observer receives per-operation measurements. *metrics.Metrics implements it.
type Observer interface {
	RecordLedgerOperation(op string, duration time.Duration, err error)
	RecordDegradedRead(op string)
}

type noopObserver struct{}

func (noopObserver) RecordLedgerOperation(string, time.Duration, error) {}
func (noopObserver) RecordDegradedRead(string)                          {}

// Ledger applies the failure policy on top of a Store: reads degrade to their
// zero value, writes propagate a *Error.
type Ledger struct {
	store    Store
	logger   *zap.Logger
	observer Observer
	timeout  time.Duration
	now      func() time.Time
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithTimeout sets the per-call store timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithClock overrides the timestamp source for visited markers.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New wraps a Store.
func New(store Store, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		logger:   logger,
		observer: noopObserver{},
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the wrapped backend.
func (l *Ledger) Store() Store {
	return l.store
}

// GetCount returns the counter value. A store failure is logged and reported as 0.
func (l *Ledger) GetCount(ctx context.Context) int64 {
	var count int64
	err := l.do(ctx, OpGetCount, func(ctx context.Context) error {
		var err error
		count, err = l.store.GetCount(ctx)
		return err
	})
	if err != nil {
		l.degraded(OpGetCount, CounterKey, err)
		return 0
	}
	return count
}

// HasVisited reports whether the id was already counted. A store failure is
// logged and reported as false.
func (l *Ledger) HasVisited(ctx context.Context, visitorID string) bool {
	var visited bool
	err := l.do(ctx, OpHasVisited, func(ctx context.Context) error {
		var err error
		visited, err = l.store.HasVisited(ctx, visitorID)
		return err
	})
	if err != nil {
		l.degraded(OpHasVisited, VisitedKey(visitorID), err)
		return false
	}
	return visited
}

// MarkVisited creates the visited marker for the id if absent and reports
// whether this call created it.
func (l *Ledger) MarkVisited(ctx context.Context, visitorID string) (bool, error) {
	var created bool
	at := l.now().UTC()
	err := l.do(ctx, OpMarkVisited, func(ctx context.Context) error {
		var err error
		created, err = l.store.MarkVisited(ctx, visitorID, at)
		return err
	})
	if err != nil {
		return false, wrap(OpMarkVisited, VisitedKey(visitorID), err)
	}
	return created, nil
}

// IncrementCounter atomically increments the counter and returns the new value.
func (l *Ledger) IncrementCounter(ctx context.Context) (int64, error) {
	var count int64
	err := l.do(ctx, OpIncrementCounter, func(ctx context.Context) error {
		var err error
		count, err = l.store.IncrementCounter(ctx)
		return err
	})
	if err != nil {
		return 0, wrap(OpIncrementCounter, CounterKey, err)
	}
	return count, nil
}

// Ping checks the backend within the ledger timeout.
func (l *Ledger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.store.Ping(ctx)
}

func (l *Ledger) do(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	l.observer.RecordLedgerOperation(op, time.Since(start), err)
	return err
}

func (l *Ledger) degraded(op, key string, err error) {
	l.observer.RecordDegradedRead(op)
	l.logger.Warn("ledger read degraded to default",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
