// Package server provides the long-running HTTP server for the visit counter.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/bootstrap"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/converter"
	apierrors "github.com/bluecurio/didanyonereadmycoverletter.com/internal/errors"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/health"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/metrics"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the HTTP server.
type Server struct {
	router      *mux.Router
	handler     http.Handler
	httpServer  *http.Server
	handlers    *handler.Handlers
	healthCheck *health.HealthCheck
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         *config.Config
}

// NewServer creates a new HTTP server for app. m may be nil.
func NewServer(app *bootstrap.App, m *metrics.Metrics) *Server {
	cfg := app.Config
	router := mux.NewRouter()

	var recorder health.StatusRecorder
	if m != nil {
		recorder = m
	}

	var pinger health.Pinger
	if app.Ledger != nil {
		pinger = app.Ledger
	}

	return &Server{
		router:      router,
		handler:     router,
		handlers:    app.Handlers,
		healthCheck: health.NewHealthCheck(pinger, recorder, app.Logger),
		metrics:     m,
		logger:      app.Logger,
		cfg:         cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	// Preflight and unmatched requests must see CORS too, so the chain wraps
	// the whole router.
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
		middleware.CORS,
	}

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	if s.metrics != nil {
		s.router.Use(metrics.MetricsMiddleware(s.metrics))
	}

	routes := map[string]handler.Func{
		"/generate": s.handlers.Generate,
		"/visit":    s.handlers.Visit,
		"/count":    s.handlers.Count,
		"/health":   s.handlers.Health,
	}

	// Each endpoint answers at the root and under /api.
	api := s.router.PathPrefix("/api").Subrouter()
	for path, fn := range routes {
		h := converter.HTTPHandler(fn, s.logger)
		s.router.Handle(path, h).Methods(http.MethodGet)
		api.Handle(path, h).Methods(http.MethodGet)
	}

	s.router.HandleFunc("/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		s.router.PathPrefix("/").Handler(&spaHandler{dir: dir, index: "index.html"}).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteErrorResponse(w, http.StatusNotFound, apierrors.MessageNotFound)
	})

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteErrorResponse(w, http.StatusMethodNotAllowed, apierrors.MessageMethodNotAllowed)
	})

	s.handler = middleware.Chain(middlewareChain...)(s.router)
	s.httpServer.Handler = s.handler
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.Int("port", s.cfg.Server.Port),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	s.healthCheck.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the http.Handler for the server, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// spaHandler serves files from dir and falls back to index for paths that
// do not name a file, so client-side routes load the app.
type spaHandler struct {
	dir   string
	index string
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Unknown API paths are errors, not pages.
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		apierrors.WriteErrorResponse(w, http.StatusNotFound, apierrors.MessageNotFound)
		return
	}

	path := filepath.Join(h.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, h.index))
		return
	}

	http.FileServer(http.Dir(h.dir)).ServeHTTP(w, r)
}
