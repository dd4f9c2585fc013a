package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/bootstrap"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type unavailableStore struct {
	*ledger.MemoryStore
}

func (unavailableStore) Ping(context.Context) error {
	return errors.New("dial tcp: connection refused")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         3000,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  time.Minute,
		},
		Ledger: config.LedgerConfig{
			Backend: config.BackendMemory,
			Table:   "visits",
			Timeout: time.Second,
		},
		Share: config.ShareConfig{DefaultScheme: "https"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, store ledger.Store, m *metrics.Metrics) http.Handler {
	t.Helper()

	opts := []bootstrap.Option{bootstrap.WithStore(store)}
	if m != nil {
		opts = append(opts, bootstrap.WithMetrics(m))
	}
	app, err := bootstrap.New(context.Background(), cfg, zap.NewNop(), opts...)
	require.NoError(t, err)

	srv := NewServer(app, m)
	srv.SetupRoutes()
	return srv.Handler()
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestVisitFlow(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	// Fresh store.
	rec := get(h, "/api/count")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	// First visit.
	rec = get(h, "/api/visit?id=x1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1,"newVisit":true,"id":"x1"}`, rec.Body.String())
	assertCORS(t, rec)

	// Repeat visit, through the bare alias.
	rec = get(h, "/visit?id=x1")
	assert.JSONEq(t, `{"count":1,"newVisit":false,"id":"x1"}`, rec.Body.String())

	// Missing id leaves the total alone.
	rec = get(h, "/api/visit")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing id parameter"}`, rec.Body.String())
	assertCORS(t, rec)

	rec = get(h, "/count")
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestGenerateRoute(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	for _, path := range []string{"/generate", "/api/generate"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "localhost:3000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
		var body handler.GenerateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Regexp(t, `^[a-z]+-[a-z]+-[0-9]+$`, body.ID)
		assert.Equal(t, "http://localhost:3000?id="+body.ID, body.URL)
	}
}

func TestGenerateBehindProxy(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	req.Host = "didanyonereadmycoverletter.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body handler.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.URL, "https://didanyonereadmycoverletter.com?id="))
}

func TestHealthRoutes(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	for _, path := range []string{"/health", "/api/health"} {
		rec := get(h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var body handler.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		_, err := time.Parse(time.RFC3339, body.Timestamp)
		assert.NoError(t, err)
	}
}

func TestReadiness(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

		rec := get(h, "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)
	})

	t.Run("store unreachable", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewMetrics(reg)
		h := newTestServer(t, testConfig(), unavailableStore{ledger.NewMemoryStore()}, m)

		rec := get(h, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)

		expected := `
# HELP visitcounter_health_status Health status of the server (1 = healthy, 0 = unhealthy)
# TYPE visitcounter_health_status gauge
visitcounter_health_status 0
`
		assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "visitcounter_health_status"))
	})
}

func TestPreflight(t *testing.T) {
	store := ledger.NewMemoryStore()
	h := newTestServer(t, testConfig(), store, nil)

	for _, path := range []string{"/api/visit?id=x1", "/count", "/no-such-route"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)
		assertCORS(t, rec)
	}

	assert.Zero(t, store.Len())
}

func TestUnknownRoutes(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	rec := get(h, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	assertCORS(t, rec)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/visit?id=x1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), nil)

	rec := get(h, "/api/count")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/count", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimiter = config.RateLimiterConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2}
	h := newTestServer(t, cfg, ledger.NewMemoryStore(), nil)

	assert.Equal(t, http.StatusOK, get(h, "/api/count").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/count").Code)

	rec := get(h, "/api/count")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assertCORS(t, rec)
}

func TestMetricsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	h := newTestServer(t, testConfig(), ledger.NewMemoryStore(), m)

	get(h, "/api/visit?id=a")
	get(h, "/api/visit?id=a")
	get(h, "/api/visit?id=b")

	expected := `
# HELP visitcounter_http_requests_total Total number of HTTP requests
# TYPE visitcounter_http_requests_total counter
visitcounter_http_requests_total{method="GET",path="/api/visit",status="200"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "visitcounter_http_requests_total"))

	expected = `
# HELP visitcounter_visits_total Recorded visits by outcome
# TYPE visitcounter_visits_total counter
visitcounter_visits_total{outcome="new"} 2
visitcounter_visits_total{outcome="repeat"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "visitcounter_visits_total"))
}

func TestStaticSite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := testConfig()
	cfg.Server.StaticDir = dir
	h := newTestServer(t, cfg, ledger.NewMemoryStore(), nil)

	rec := get(h, "/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	// Client-side routes load the app shell.
	rec = get(h, "/?id=brave-otter-42")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = get(h, "/some/page")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	// API routes still win, and unknown API paths stay JSON errors.
	rec = get(h, "/api/count")
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	rec = get(h, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}
