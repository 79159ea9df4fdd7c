// Package cache is a Redis cache-aside layer for per-owner task lists.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/taskflow/taskflow-api/internal/model"
)

const defaultPrefix = "taskflow:tasks:"

// TaskCache caches the full task list per owner. Concurrent cache misses
// for the same owner are collapsed into one repository load.
type TaskCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

func New(client *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

// Fetch returns the owner's cached task list, falling back to load on a
// miss and writing the result back. Cache read errors degrade to a plain
// load rather than failing the request.
func (c *TaskCache) Fetch(ctx context.Context, ownerID string, load func(context.Context) ([]model.Task, error)) ([]model.Task, error) {
	key := c.prefix + ownerID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var tasks []model.Task
		if err := json.Unmarshal(data, &tasks); err == nil {
			return tasks, nil
		}
		// A corrupt entry behaves like a miss.
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		tasks, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(tasks); err == nil {
			c.client.Set(ctx, key, data, c.ttl)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Task), nil
}

// Invalidate drops the owner's cached list.
func (c *TaskCache) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, c.prefix+ownerID).Err(); err != nil {
		return fmt.Errorf("task cache delete: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *TaskCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
