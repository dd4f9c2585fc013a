// Package metrics provides Prometheus metrics for the visit counter.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "visitcounter"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	responseSize     *prometheus.HistogramVec
	ledgerOpsTotal   *prometheus.CounterVec
	ledgerOpDuration *prometheus.HistogramVec
	ledgerDegraded   *prometheus.CounterVec
	visitsTotal      *prometheus.CounterVec
	healthStatus     prometheus.Gauge
}

// NewMetrics creates metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		responseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{16, 64, 256, 1024, 4096, 16384},
			},
			[]string{"method", "path"},
		),
		ledgerOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Total number of ledger store operations",
			},
			[]string{"operation", "status"},
		),
		ledgerOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger store operation duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		ledgerDegraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_degraded_reads_total",
				Help:      "Reads answered with a default value because the store failed",
			},
			[]string{"operation"},
		),
		visitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "visits_total",
				Help:      "Recorded visits by outcome",
			},
			[]string{"outcome"},
		),
		healthStatus: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "health_status",
				Help:      "Health status of the server (1 = healthy, 0 = unhealthy)",
			},
		),
	}
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the response size.
func (m *Metrics) RecordResponseSize(method, path string, size int) {
	m.responseSize.WithLabelValues(method, path).Observe(float64(size))
}

// IncRequestsInFlight increments the in-flight requests counter.
func (m *Metrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter.
func (m *Metrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

// RecordLedgerOperation records one store call.
func (m *Metrics) RecordLedgerOperation(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ledgerOpsTotal.WithLabelValues(op, status).Inc()
	m.ledgerOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordDegradedRead records a read that fell back to its default.
func (m *Metrics) RecordDegradedRead(op string) {
	m.ledgerDegraded.WithLabelValues(op).Inc()
}

// RecordVisit records a visit outcome.
func (m *Metrics) RecordVisit(isNewVisit bool) {
	outcome := "repeat"
	if isNewVisit {
		outcome = "new"
	}
	m.visitsTotal.WithLabelValues(outcome).Inc()
}

// SetHealthStatus sets the health status.
func (m *Metrics) SetHealthStatus(healthy bool) {
	if healthy {
		m.healthStatus.Set(1)
	} else {
		m.healthStatus.Set(0)
	}
}

// MetricsServer provides a separate HTTP server for Prometheus metrics.
type MetricsServer struct {
	server *http.Server
	logger *zap.Logger
}

// NewMetricsServer creates a new metrics server exposing gatherer at path.
func NewMetricsServer(port int, path string, gatherer prometheus.Gatherer, logger *zap.Logger) *MetricsServer {
	serveMux := http.NewServeMux()
	serveMux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           serveMux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the metrics server. It returns nil after Shutdown.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("starting metrics server", zap.String("addr", ms.server.Addr))
	if err := ms.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

// Handler returns the metrics server's handler.
func (ms *MetricsServer) Handler() http.Handler {
	return ms.server.Handler
}

// MetricsMiddleware creates middleware that records HTTP metrics. It labels
// requests by route template so unknown paths share one series.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncRequestsInFlight()
			defer m.DecRequestsInFlight()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routePath(r)
			m.RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
			m.RecordResponseSize(r.Method, path, rw.size)
		})
	}
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// metricsResponseWriter wraps http.ResponseWriter to capture metrics.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// WriteHeader captures the status code.
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
