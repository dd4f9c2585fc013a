// Package function hosts handler.Func values as AWS Lambda functions behind
// API Gateway proxy integration.
package function

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/converter"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const flushTimeout = 2 * time.Second

// Handler is the signature lambda.Start expects for proxy events.
type Handler func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// New wraps fn with CORS handling and request logging. Failures are already
// encoded in the response, so the returned error is always nil.
func New(name string, fn handler.Func, logger *zap.Logger) Handler {
	fn = handler.WithCORS(fn)

	return func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		start := time.Now()
		req := converter.FromProxyRequest(ev)

		resp := fn(ctx, req)

		logger.Info("function invocation",
			zap.String("function", name),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", req.RequestID),
		)

		// Events are sent asynchronously and the runtime may freeze once we return.
		if resp.StatusCode >= http.StatusInternalServerError && sentry.CurrentHub().Client() != nil {
			sentry.Flush(flushTimeout)
		}

		return converter.ToProxyResponse(resp), nil
	}
}
