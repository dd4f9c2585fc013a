// Package bootstrap assembles the visit counter from configuration. Both the
// HTTP server and the serverless functions start here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	apierrors "github.com/bluecurio/didanyonereadmycoverletter.com/internal/errors"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/idgen"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/metrics"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/service"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// App holds the wired components.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Store        ledger.Store
	Ledger       *ledger.Ledger
	Visits       *service.VisitService
	ErrorHandler *apierrors.Handler
	Handlers     *handler.Handlers
}

type options struct {
	withoutStore bool
	store        ledger.Store
	metrics      *metrics.Metrics
	ids          handler.IDGenerator
}

// Option customizes New.
type Option func(*options)

// WithoutStore skips opening a store. Only Generate and Health work.
func WithoutStore() Option {
	return func(o *options) {
		o.withoutStore = true
	}
}

// WithStore uses store instead of opening the configured backend.
func WithStore(store ledger.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithMetrics records ledger operations and visit outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithIDGenerator replaces the default word-list generator.
func WithIDGenerator(ids handler.IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// New wires store, ledger, service and handlers.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      o.metrics,
		ErrorHandler: apierrors.NewHandler(logger),
	}

	ids := o.ids
	if ids == nil {
		ids = idgen.New()
	}

	var visits handler.VisitTracker
	if !o.withoutStore {
		store := o.store
		if store == nil {
			var err error
			store, err = OpenStore(ctx, cfg.Ledger, logger)
			if err != nil {
				return nil, err
			}
		}
		app.Store = store

		ledgerOpts := []ledger.Option{ledger.WithTimeout(cfg.Ledger.Timeout)}
		var visitObserver service.Observer
		if o.metrics != nil {
			ledgerOpts = append(ledgerOpts, ledger.WithObserver(o.metrics))
			visitObserver = o.metrics
		}

		app.Ledger = ledger.New(store, logger, ledgerOpts...)
		app.Visits = service.NewVisitService(app.Ledger, visitObserver, logger)
		visits = app.Visits
	}

	app.Handlers = handler.NewHandlers(ids, visits, app.ErrorHandler, logger, cfg.Share)
	return app, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// OpenStore connects to the configured backend.
func OpenStore(ctx context.Context, cfg config.LedgerConfig, logger *zap.Logger) (ledger.Store, error) {
	logger.Info("opening ledger store",
		zap.String("backend", cfg.Backend),
		zap.String("table", cfg.Table),
	)

	switch cfg.Backend {
	case config.BackendDynamoDB:
		client, err := ledger.NewDynamoDBClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, err
		}
		return ledger.NewDynamoDBStore(client, cfg.Table, logger), nil
	case config.BackendRedis:
		store, err := ledger.NewRedisStore(ctx, cfg.Redis.URL, cfg.Table, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPostgres:
		store, err := ledger.NewPostgresStore(ctx, cfg.Postgres.DSN, cfg.Table, cfg.Postgres.MaxConns, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		store, err := ledger.NewSQLiteStore(ctx, cfg.SQLite.Path, cfg.Table, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMemory:
		return ledger.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

// InitSentry configures error reporting when a DSN is set. The returned
// function flushes buffered events and is safe to call when reporting is off.
func InitSentry(cfg config.SentryConfig, release string) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}
