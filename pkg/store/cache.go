package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slickwilli/neoview/models"
)

const (
	StatsCacheKey      = "neoview:glucose:stats"
	StatsGenerationKey = "neoview:glucose:stats:generation"
)

// StatsCache serves Stats from Redis and forwards everything else to the
// wrapped store. Cached values are keyed by a generation counter that every
// write bumps, so a value computed before a write can never be served after
// it. Redis errors are logged and the wrapped store answers instead.
type StatsCache struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(inner Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	return &StatsCache{
		Store:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("stats_cache"),
	}
}

// StatsKey is the Redis key holding stats for one generation.
func StatsKey(generation int64) string {
	return fmt.Sprintf("%s:%d", StatsCacheKey, generation)
}

func (c *StatsCache) Insert(ctx context.Context, r models.Reading) error {
	if err := c.Store.Insert(ctx, r); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *StatsCache) Clear(ctx context.Context) (int, error) {
	n, err := c.Store.Clear(ctx)
	if err != nil {
		return n, err
	}
	c.invalidate(ctx)
	return n, nil
}

func (c *StatsCache) Stats(ctx context.Context) (models.Stats, error) {
	generation, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("error reading stats generation", zap.Error(err))
		return c.Store.Stats(ctx)
	}
	key := StatsKey(generation)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var stats models.Stats
		if err := json.Unmarshal(raw, &stats); err == nil {
			if stats.CategoryDistribution == nil {
				stats.CategoryDistribution = models.Distribution{}
			}
			return stats, nil
		}
		c.logger.Warn("discarding undecodable cached stats")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("error reading cached stats", zap.Error(err))
	}

	stats, err := c.Store.Stats(ctx)
	if err != nil {
		return stats, err
	}
	// A write that lands after generation was read bumps the counter, so this
	// value is only ever stored under a key no later reader asks for.
	if raw, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("error caching stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (c *StatsCache) generation(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, StatsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *StatsCache) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, StatsGenerationKey).Err(); err != nil {
		c.logger.Warn("error invalidating cached stats", zap.Error(err))
	}
}
