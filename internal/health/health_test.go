package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type statusSpy struct {
	last *bool
}

func (s *statusSpy) SetHealthStatus(healthy bool) {
	s.last = &healthy
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready when the store answers", func(t *testing.T) {
		store := new(MockPinger)
		store.On("Ping", mock.Anything).Return(nil)
		spy := &statusSpy{}
		hc := NewHealthCheck(store, spy, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		hc.ReadinessHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "healthy", resp.Checks["ledger"])
		assert.True(t, hc.IsReady())
		require.NotNil(t, spy.last)
		assert.True(t, *spy.last)
	})

	t.Run("not ready when the store fails", func(t *testing.T) {
		store := new(MockPinger)
		store.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))
		spy := &statusSpy{}
		hc := NewHealthCheck(store, spy, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		hc.ReadinessHandler(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.NotEmpty(t, resp.Error)
		assert.NotContains(t, resp.Error, "connection refused")
		assert.False(t, hc.IsReady())
		require.NotNil(t, spy.last)
		assert.False(t, *spy.last)
	})
}

func TestSetReady(t *testing.T) {
	hc := NewHealthCheck(new(MockPinger), nil, zap.NewNop())

	assert.False(t, hc.IsReady())
	assert.True(t, hc.LastCheck().IsZero())

	hc.SetReady(true)
	assert.True(t, hc.IsReady())
	assert.False(t, hc.LastCheck().IsZero())
}

func TestCheckWithoutStore(t *testing.T) {
	hc := NewHealthCheck(nil, nil, zap.NewNop())

	assert.Error(t, hc.Check(context.Background()))
	assert.False(t, hc.IsReady())
	assert.False(t, hc.LastCheck().IsZero())
}
