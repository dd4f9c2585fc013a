// Package main provides the entry point for the visit counter HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/bootstrap"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/logging"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/metrics"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting visit counter",
		zap.String("version", version),
		zap.Int("server_port", cfg.Server.Port),
		zap.String("ledger_backend", cfg.Ledger.Backend),
	)

	flush, err := bootstrap.InitSentry(cfg.Sentry, version)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize metrics
	var m *metrics.Metrics
	var opts []bootstrap.Option
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(prometheus.DefaultRegisterer)
		opts = append(opts, bootstrap.WithMetrics(m))
	}

	app, err := bootstrap.New(ctx, cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close ledger store", zap.Error(err))
		}
	}()

	httpServer := server.NewServer(app, m)
	httpServer.SetupRoutes()

	var metricsServer *metrics.MetricsServer
	if m != nil {
		m.SetHealthStatus(true)
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Start)
	if metricsServer != nil {
		g.Go(metricsServer.Start)
	}

	// Shut everything down on a signal or when either server fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")
		if m != nil {
			m.SetHealthStatus(false)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP server", zap.Error(err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown metrics server", zap.Error(err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("visit counter shutdown complete")
	return nil
}
