package function

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/bootstrap"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/logging"
	"go.uber.org/zap"
)

// Selector picks the endpoint a function deployment serves.
type Selector func(h *handler.Handlers) handler.Func

// Run configures the app from the environment and hands the selected
// handler to the Lambda runtime. It does not return.
func Run(name string, selectFn Selector, opts ...bootstrap.Option) {
	cfg, err := config.Load(os.Getenv("VISITCOUNTER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(zap.String("function", name))

	if _, err := bootstrap.InitSentry(cfg.Sentry, name); err != nil {
		logger.Fatal("failed to initialize error reporting", zap.Error(err))
	}

	app, err := bootstrap.New(context.Background(), cfg, logger, opts...)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	logger.Info("function ready",
		zap.String("ledger_backend", cfg.Ledger.Backend),
		zap.Bool("store", app.Store != nil),
	)

	lambda.Start(New(name, selectFn(app.Handlers), logger))
}
