package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteStore(t *testing.T) {
	ledgertest.RunStoreSuite(t, func(t *testing.T) ledger.Store {
		s, err := ledger.NewSQLiteStore(context.Background(), ":memory:", "didanyonereadmycoverletter.com", zap.NewNop())
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := ledger.NewSQLiteStore(ctx, path, "visits", zap.NewNop())
	require.NoError(t, err)

	_, err = s.MarkVisited(ctx, "alpha-wolf-7", time.Now())
	require.NoError(t, err)
	_, err = s.IncrementCounter(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := ledger.NewSQLiteStore(ctx, path, "visits", zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	visited, err := reopened.HasVisited(ctx, "alpha-wolf-7")
	require.NoError(t, err)
	assert.True(t, visited)
}

func TestSQLiteStoreClosed(t *testing.T) {
	s, err := ledger.NewSQLiteStore(context.Background(), ":memory:", "visits", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.IncrementCounter(context.Background())
	assert.Error(t, err)
}
