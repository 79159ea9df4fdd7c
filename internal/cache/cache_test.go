package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/model"
)

func setupCache(t *testing.T) *TaskCache {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}
	client.Del(ctx, defaultPrefix+"owner-1")

	return New(client, time.Minute)
}

func TestTaskCache_FetchMissThenHit(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]model.Task, error) {
		loads++
		return []model.Task{{ID: "a", Title: "Cached task"}}, nil
	}

	tasks, err := c.Fetch(ctx, "owner-1", load)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, loads)

	tasks, err = c.Fetch(ctx, "owner-1", load)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, loads, "second fetch should hit the cache")
}

func TestTaskCache_Invalidate(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]model.Task, error) {
		loads++
		return []model.Task{{ID: "a"}}, nil
	}

	_, err := c.Fetch(ctx, "owner-1", load)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "owner-1"))

	_, err = c.Fetch(ctx, "owner-1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "fetch after invalidation should reload")
}

func TestTaskCache_LoadErrorPropagates(t *testing.T) {
	c := setupCache(t)

	_, err := c.Fetch(context.Background(), "owner-1", func(context.Context) ([]model.Task, error) {
		return nil, errors.New("repo down")
	})
	assert.Error(t, err)
}

func TestTaskCache_ConcurrentMissesCollapse(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	var loads atomic.Int32
	load := func(context.Context) ([]model.Task, error) {
		loads.Add(1)
		time.Sleep(50 * time.Millisecond)
		return []model.Task{{ID: "a"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(ctx, "owner-1", load)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load(), "concurrent misses should share one load")
}
