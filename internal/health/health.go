// Package health provides the readiness endpoint.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errNoStore = errors.New("no ledger store configured")

// Pinger checks a dependency. *ledger.Ledger implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusRecorder is notified of every readiness result. *metrics.Metrics implements it.
type StatusRecorder interface {
	SetHealthStatus(healthy bool)
}

// HealthCheck manages health check functionality.
type HealthCheck struct {
	store     Pinger
	recorder  StatusRecorder
	logger    *zap.Logger
	timeout   time.Duration
	mu        sync.RWMutex
	ready     bool
	lastCheck time.Time
}

// NewHealthCheck creates a new HealthCheck instance. recorder may be nil.
func NewHealthCheck(store Pinger, recorder StatusRecorder, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		store:    store,
		recorder: recorder,
		logger:   logger,
		timeout:  5 * time.Second,
	}
}

// ReadinessResponse represents the response for the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// ReadinessHandler handles GET /ready requests.
// Returns 200 OK when the ledger store answers a ping, 503 otherwise.
func (hc *HealthCheck) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	err := hc.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ReadinessResponse{
			Status: "not_ready",
			Checks: map[string]string{"ledger": "unhealthy"},
			Error:  "ledger store unavailable",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: "ready",
		Checks: map[string]string{"ledger": "healthy"},
	})
}

// Check pings the store and updates the cached readiness.
func (hc *HealthCheck) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	err := errNoStore
	if hc.store != nil {
		err = hc.store.Ping(ctx)
	}
	if err != nil {
		hc.logger.Warn("readiness check failed", zap.Error(err))
	}
	hc.SetReady(err == nil)
	return err
}

// IsReady returns the result of the last check.
func (hc *HealthCheck) IsReady() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.ready
}

// LastCheck returns when readiness was last evaluated.
func (hc *HealthCheck) LastCheck() time.Time {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastCheck
}

// SetReady records a readiness result.
func (hc *HealthCheck) SetReady(ready bool) {
	hc.mu.Lock()
	hc.ready = ready
	hc.lastCheck = time.Now()
	hc.mu.Unlock()

	if hc.recorder != nil {
		hc.recorder.SetHealthStatus(ready)
	}
}
