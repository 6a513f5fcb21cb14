package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// CachedClient wraps a RunLister with a Redis response cache. A route that
// several riders search in the same window hits the upstream API once.
type CachedClient struct {
	inner  RunLister
	rdb    *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedClient creates the caching wrapper.
func NewCachedClient(inner RunLister, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedClient {
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl, logger: log}
}

func cacheKey(fromStopID, toStopID, date string) string {
	return fmt.Sprintf("schedule:search:%s:%s:%s", fromStopID, toStopID, date)
}

// ListRuns serves from cache when possible, otherwise fetches from the
// upstream client and stores the result. Cache failures degrade to a plain
// fetch; only the upstream lookup itself can fail the call.
func (c *CachedClient) ListRuns(ctx context.Context, fromStopID, toStopID, date string) ([]Run, error) {
	key := cacheKey(fromStopID, toStopID, date)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var runs []Run
		if err := json.Unmarshal(cached, &runs); err == nil {
			c.logger.WithPayload(map[string]interface{}{"key": key}).Debug("Schedule served from cache")
			return runs, nil
		}
		// Unreadable entry: drop it and fall through to the API.
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Schedule cache read failed")
	}

	runs, err := c.inner.ListRuns(ctx, fromStopID, toStopID, date)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(runs); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Schedule cache write failed")
		}
	}
	return runs, nil
}
