// Package errors maps service and ledger errors to client responses.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/service"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MessageInternal         = "Internal server error"
	MessageNotFound         = "Not found"
	MessageMethodNotAllowed = "Method not allowed"
	MessageRateLimited      = "Too many requests"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler classifies errors, logs them and reports unexpected ones to Sentry.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Resolve turns err into a status code and body. Only invalid-argument
// messages reach the client; everything else is logged with op and request id
// and answered with a generic message.
func (h *Handler) Resolve(ctx context.Context, op, requestID string, err error) (int, ErrorResponse) {
	status := StatusCode(err)
	if status == http.StatusBadRequest {
		h.logger.Debug("rejected request",
			zap.String("operation", op),
			zap.String("request_id", requestID),
			zap.String("reason", err.Error()),
		)
		return status, ErrorResponse{Error: err.Error()}
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		fields = append(fields, zap.String("ledger_op", lerr.Op), zap.String("key", lerr.Key))
	}
	h.logger.Error("request failed", fields...)
	h.report(ctx, op, requestID, err)

	return status, ErrorResponse{Error: MessageInternal}
}

// HandleError resolves err and writes the response.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	requestID := r.Header.Get("X-Request-ID")
	status, body := h.Resolve(r.Context(), op, requestID, err)
	WriteJSON(w, status, body)
}

func (h *Handler) report(ctx context.Context, op, requestID string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", op)
		if requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		hub.CaptureException(err)
	})
}

// WriteErrorResponse writes {"error": message} with the given status.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
