// Package handler implements the visit counter endpoints independently of how
// they are hosted.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	apierrors "github.com/bluecurio/didanyonereadmycoverletter.com/internal/errors"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/service"
	"go.uber.org/zap"
)

// Operation names used in logs.
const (
	OpGenerate = "generate"
	OpVisit    = "visit"
	OpCount    = "count"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

var errNoShareHost = errors.New("no share domain configured and request has no host")

// IDGenerator produces visitor ids.
type IDGenerator interface {
	Generate() string
}

// VisitTracker is implemented by *service.VisitService.
type VisitTracker interface {
	RecordVisit(ctx context.Context, visitorID string) (*service.Visit, error)
	ReadCount(ctx context.Context) int64
}

// Handlers contains all handlers and their dependencies.
type Handlers struct {
	ids          IDGenerator
	visits       VisitTracker
	errorHandler *apierrors.Handler
	logger       *zap.Logger
	share        config.ShareConfig
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance. visits may be nil for a
// deployment that only generates ids.
func NewHandlers(
	ids IDGenerator,
	visits VisitTracker,
	errorHandler *apierrors.Handler,
	logger *zap.Logger,
	share config.ShareConfig,
) *Handlers {
	return &Handlers{
		ids:          ids,
		visits:       visits,
		errorHandler: errorHandler,
		logger:       logger,
		share:        share,
		now:          time.Now,
	}
}

// Generate creates a visitor id and the share URL that carries it.
func (h *Handlers) Generate(ctx context.Context, req *Request) *Response {
	id := h.ids.Generate()

	shareURL, err := h.shareURL(req, id)
	if err != nil {
		return h.fail(ctx, OpGenerate, req, err)
	}

	return h.json(OpGenerate, req, http.StatusOK, GenerateResponse{ID: id, URL: shareURL})
}

// Visit records a visit for the id query parameter and returns the total.
func (h *Handlers) Visit(ctx context.Context, req *Request) *Response {
	if h.visits == nil {
		return h.fail(ctx, OpVisit, req, errors.New("visit tracking not configured"))
	}

	id := req.QueryParam("id")
	visit, err := h.visits.RecordVisit(ctx, id)
	if err != nil {
		return h.fail(ctx, OpVisit, req, err)
	}

	return h.json(OpVisit, req, http.StatusOK, VisitResponse{
		Count:    visit.Count,
		NewVisit: visit.IsNewVisit,
		ID:       id,
	})
}

// Count returns the total without recording a visit.
func (h *Handlers) Count(ctx context.Context, req *Request) *Response {
	if h.visits == nil {
		return h.fail(ctx, OpCount, req, errors.New("visit tracking not configured"))
	}

	return h.json(OpCount, req, http.StatusOK, CountResponse{Count: h.visits.ReadCount(ctx)})
}

// Health reports liveness.
func (h *Handlers) Health(ctx context.Context, req *Request) *Response {
	return h.json("health", req, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}

func (h *Handlers) shareURL(req *Request, id string) (string, error) {
	host := h.share.Domain
	if host == "" {
		host = req.Host
	}
	if host == "" {
		return "", errNoShareHost
	}

	scheme := req.Scheme
	if scheme == "" {
		scheme = h.share.DefaultScheme
	}
	if scheme == "" {
		scheme = "https"
	}

	return scheme + "://" + host + "?" + url.Values{"id": {id}}.Encode(), nil
}

func (h *Handlers) fail(ctx context.Context, op string, req *Request, err error) *Response {
	status, body := h.errorHandler.Resolve(ctx, op, req.RequestID, err)
	return h.json(op, req, status, body)
}

func (h *Handlers) json(op string, req *Request, status int, v interface{}) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response",
			zap.String("operation", op),
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(apierrors.ErrorResponse{Error: apierrors.MessageInternal})
	}

	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
