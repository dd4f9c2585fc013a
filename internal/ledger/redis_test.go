package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger/ledgertest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T, table string) (*ledger.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return ledger.NewRedisStoreFromClient(client, table, zap.NewNop()), mr
}

func TestRedisStore(t *testing.T) {
	ledgertest.RunStoreSuite(t, func(t *testing.T) ledger.Store {
		s, _ := newRedisStore(t, "visits")
		return s
	})
}

func TestRedisStoreKeys(t *testing.T) {
	s, mr := newRedisStore(t, "didanyonereadmycoverletter.com")
	defer s.Close()
	ctx := context.Background()

	created, err := s.MarkVisited(ctx, "alpha-wolf-7", time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	_, err = s.IncrementCounter(ctx)
	require.NoError(t, err)

	assert.True(t, mr.Exists("didanyonereadmycoverletter.com:visited:alpha-wolf-7"))

	count, err := mr.Get("didanyonereadmycoverletter.com:global_counter")
	require.NoError(t, err)
	assert.Equal(t, "1", count)

	raw, err := mr.Get("didanyonereadmycoverletter.com:visited:alpha-wolf-7")
	require.NoError(t, err)
	assert.Contains(t, raw, `"visited":true`)
}

func TestRedisStoreConnect(t *testing.T) {
	t.Run("connects via URL", func(t *testing.T) {
		mr := miniredis.RunT(t)

		s, err := ledger.NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", "visits", zap.NewNop())
		require.NoError(t, err)
		defer s.Close()

		assert.NoError(t, s.Ping(context.Background()))
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		_, err := ledger.NewRedisStore(context.Background(), "not-a-url", "visits", zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("fails when the server is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := ledger.NewRedisStore(context.Background(), "redis://"+addr, "visits", zap.NewNop())
		assert.Error(t, err)
	})
}

func TestRedisStoreFailures(t *testing.T) {
	s, mr := newRedisStore(t, "visits")
	defer s.Close()
	mr.Close()

	l := ledger.New(s, zap.NewNop(), ledger.WithTimeout(time.Second))
	ctx := context.Background()

	assert.Equal(t, int64(0), l.GetCount(ctx))
	assert.False(t, l.HasVisited(ctx, "alpha-wolf-7"))

	_, err := l.MarkVisited(ctx, "alpha-wolf-7")
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)

	_, err = l.IncrementCounter(ctx)
	assert.ErrorIs(t, err, ledger.ErrStorageUnavailable)
}
