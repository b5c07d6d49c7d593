package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rediwater/rediwater/internal/shared"
)

const cacheVersionKey = "rediwater:dashboard:version"

// Cache stores computed dashboard payloads in Redis under a version that
// Bump advances, so every write invalidates all cached entries at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache builds a Cache whose entries expire after ttl.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	return ver, err
}

// Key composes a versioned cache key.
func (c *Cache) Key(ctx context.Context, parts ...string) (string, error) {
	joined := "rediwater:dashboard:" + strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads key into dest, calling loader and storing its result on a miss.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("dashboard: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached payload.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// InvalidatingRecorder records activity through Next and then bumps the
// cache, since every recorded event changes what the dashboard shows.
type InvalidatingRecorder struct {
	Next  shared.ActivityRecorder
	Cache *Cache
}

// Record stores the entry and bumps the cache even when storing fails.
func (r InvalidatingRecorder) Record(ctx context.Context, activity shared.Activity) error {
	var recordErr error
	if r.Next != nil {
		recordErr = r.Next.Record(ctx, activity)
	}
	if err := r.Cache.Bump(ctx); err != nil {
		return errors.Join(recordErr, fmt.Errorf("dashboard: bump cache: %w", err))
	}
	return recordErr
}

// Changed bumps the cache for writes that produce no feed entry.
func (r InvalidatingRecorder) Changed(ctx context.Context, entityType string) error {
	notifyErr := shared.NotifyChange(ctx, r.Next, entityType)
	if err := r.Cache.Bump(ctx); err != nil {
		return errors.Join(notifyErr, fmt.Errorf("dashboard: bump cache after %s change: %w", entityType, err))
	}
	return notifyErr
}
