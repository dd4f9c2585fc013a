package function

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/config"
	apierrors "github.com/bluecurio/didanyonereadmycoverletter.com/internal/errors"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/idgen"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingStore struct {
	*ledger.MemoryStore
}

func (failingStore) MarkVisited(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("connection reset by peer")
}

func newHandlers(store ledger.Store) *handler.Handlers {
	logger := zap.NewNop()
	l := ledger.New(store, logger)
	return handler.NewHandlers(
		idgen.New(),
		service.NewVisitService(l, nil, logger),
		apierrors.NewHandler(logger),
		logger,
		config.ShareConfig{Domain: "didanyonereadmycoverletter.com"},
	)
}

func visitEvent(id string) events.APIGatewayProxyRequest {
	ev := events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/api/visit",
		Headers:    map[string]string{"host": "abc.execute-api.us-east-1.amazonaws.com"},
	}
	if id != "" {
		ev.QueryStringParameters = map[string]string{"id": id}
	}
	return ev
}

func assertCORS(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
	assert.Equal(t, "GET,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
}

func TestGenerateFunction(t *testing.T) {
	h := newHandlers(ledger.NewMemoryStore())
	fn := New("generate", h.Generate, zap.NewNop())

	resp, err := fn(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/generate"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assertCORS(t, resp)

	var body handler.GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Regexp(t, `^[a-z]+-[a-z]+-[0-9]+$`, body.ID)
	assert.Equal(t, "https://didanyonereadmycoverletter.com?id="+body.ID, body.URL)
}

func TestVisitFunction(t *testing.T) {
	store := ledger.NewMemoryStore()
	h := newHandlers(store)
	visit := New("visit", h.Visit, zap.NewNop())
	count := New("count", h.Count, zap.NewNop())

	resp, err := visit(context.Background(), visitEvent("x1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1,"newVisit":true,"id":"x1"}`, resp.Body)
	assertCORS(t, resp)

	resp, err = visit(context.Background(), visitEvent("x1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"newVisit":false,"id":"x1"}`, resp.Body)

	resp, err = count(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, resp.Body)

	_, ok := store.Visited("x1")
	assert.True(t, ok)
}

func TestVisitFunctionErrors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		fn := New("visit", newHandlers(ledger.NewMemoryStore()).Visit, zap.NewNop())

		resp, err := fn(context.Background(), visitEvent(""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Missing id parameter"}`, resp.Body)
		assertCORS(t, resp)
	})

	t.Run("store failure", func(t *testing.T) {
		fn := New("visit", newHandlers(failingStore{ledger.NewMemoryStore()}).Visit, zap.NewNop())

		resp, err := fn(context.Background(), visitEvent("x1"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Internal server error"}`, resp.Body)
		assertCORS(t, resp)
	})
}

func TestPreflight(t *testing.T) {
	store := ledger.NewMemoryStore()
	fn := New("visit", newHandlers(store).Visit, zap.NewNop())

	ev := visitEvent("x1")
	ev.HTTPMethod = http.MethodOptions
	resp, err := fn(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assertCORS(t, resp)
	assert.Zero(t, store.Len())
}

func TestInvocationLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fn := New("count", newHandlers(ledger.NewMemoryStore()).Count, zap.New(core))

	ev := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/count"}
	ev.RequestContext.RequestID = "req-123"
	_, err := fn(context.Background(), ev)
	require.NoError(t, err)

	entries := logs.FilterMessage("function invocation").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "count", fields["function"])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}
