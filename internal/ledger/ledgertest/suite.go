// Package ledgertest holds the conformance checks every ledger.Store backend must pass.
package ledgertest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc returns a fresh, empty store. The suite closes it.
type NewStoreFunc func(t *testing.T) ledger.Store

// RunStoreSuite runs the conformance checks against stores built by newStore.
func RunStoreSuite(t *testing.T, newStore NewStoreFunc) {
	t.Helper()

	fresh := func(t *testing.T) ledger.Store {
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("fresh store has zero count", func(t *testing.T) {
		s := fresh(t)

		count, err := s.GetCount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("increment initializes absent counter", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()

		n, err := s.IncrementCounter(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.IncrementCounter(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		count, err := s.GetCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("mark visited is create-if-absent", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()

		visited, err := s.HasVisited(ctx, "alpha-wolf-7")
		require.NoError(t, err)
		assert.False(t, visited)

		created, err := s.MarkVisited(ctx, "alpha-wolf-7", time.Now())
		require.NoError(t, err)
		assert.True(t, created)

		visited, err = s.HasVisited(ctx, "alpha-wolf-7")
		require.NoError(t, err)
		assert.True(t, visited)

		created, err = s.MarkVisited(ctx, "alpha-wolf-7", time.Now())
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("markers are independent of the counter", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()

		_, err := s.MarkVisited(ctx, "beta-fox-3", time.Now())
		require.NoError(t, err)

		count, err := s.GetCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		visited, err := s.HasVisited(ctx, "gamma-owl-9")
		require.NoError(t, err)
		assert.False(t, visited)
	})

	t.Run("ids that look like the counter key stay separate", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()

		created, err := s.MarkVisited(ctx, ledger.CounterKey, time.Now())
		require.NoError(t, err)
		assert.True(t, created)

		n, err := s.IncrementCounter(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()
		const workers = 32

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.IncrementCounter(ctx); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		count, err := s.GetCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), count)
	})

	t.Run("concurrent marks create exactly once", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()
		const workers = 16

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.MarkVisited(ctx, "delta-yak-12", time.Now())
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
	})

	t.Run("many distinct ids", func(t *testing.T) {
		s := fresh(t)
		ctx := context.Background()

		for i := 0; i < 20; i++ {
			created, err := s.MarkVisited(ctx, fmt.Sprintf("calm-otter-%d", i), time.Now())
			require.NoError(t, err)
			assert.True(t, created)
		}
		for i := 0; i < 20; i++ {
			visited, err := s.HasVisited(ctx, fmt.Sprintf("calm-otter-%d", i))
			require.NoError(t, err)
			assert.True(t, visited)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := fresh(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
