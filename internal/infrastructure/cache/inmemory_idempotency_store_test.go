package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *InMemoryIdempotencyStore {
	t.Helper()
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("new event", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-boarded-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("duplicate event", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-boarded-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "evt-boarded-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired entry is reusable", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-boarded-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "evt-boarded-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("unknown event", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "evt-unknown")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("recorded event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-settled-1", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "evt-settled-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt-settled-2", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "evt-settled-2")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, 0, store.Size())

	store.MarkProcessed(ctx, "evt-1", time.Hour)
	store.MarkProcessed(ctx, "evt-2", time.Hour)
	assert.Equal(t, 2, store.Size())

	// Re-marking an existing entry does not grow the store
	store.MarkProcessed(ctx, "evt-1", time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.MarkProcessed(ctx, "short-1", 10*time.Millisecond)
	store.MarkProcessed(ctx, "short-2", 10*time.Millisecond)
	store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const goroutines = 100
	results := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "evt-contended", time.Hour)
			results <- err == nil && isNew
		}()
	}

	newCount := 0
	for i := 0; i < goroutines; i++ {
		if <-results {
			newCount++
		}
	}

	assert.Equal(t, 1, newCount, "exactly one caller should win the mark")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
