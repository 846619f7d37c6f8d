package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// TimelineKey is the sorted set holding the global timeline.
	TimelineKey = "timeline:global"

	// TimelineCacheCap is the maximum number of tweet ids kept in the cache.
	TimelineCacheCap = 1000
)

// TimelineCache mirrors the newest part of the global tweet index. Members are
// tweet ids scored by the id itself, so the sort order is the ledger order
// regardless of when the worker got to an entry.
type TimelineCache interface {
	// Add inserts a tweet id and trims the set to TimelineCacheCap.
	Add(ctx context.Context, tweetID int64) error

	// Range returns ids newest first, starting at offset.
	Range(ctx context.Context, offset, limit int) ([]int64, error)

	// Size returns the number of cached ids.
	Size(ctx context.Context) (int64, error)

	// Oldest returns the smallest cached id, or 0 when the cache is empty.
	Oldest(ctx context.Context) (int64, error)

	// Rebuild atomically replaces the cache contents with ids.
	Rebuild(ctx context.Context, ids []int64) error
}

// RedisTimelineCache implements TimelineCache using a Redis sorted set.
type RedisTimelineCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTimelineCache creates a new TimelineCache backed by Redis.
func NewTimelineCache(client *redis.Client, logger *zap.Logger) TimelineCache {
	return &RedisTimelineCache{client: client, logger: logger.Named("timeline_cache")}
}

func member(id int64) redis.Z {
	return redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)}
}

// Add runs ZADD + ZREMRANGEBYRANK in one pipeline.
func (c *RedisTimelineCache) Add(ctx context.Context, tweetID int64) error {
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, TimelineKey, member(tweetID))
	// rank 0 is the oldest id
	pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-TimelineCacheCap-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add tweet to timeline cache: %w", err)
	}
	c.logger.Debug("added", zap.Int64("tweet_id", tweetID))
	return nil
}

func (c *RedisTimelineCache) Range(ctx context.Context, offset, limit int) ([]int64, error) {
	if limit <= 0 {
		return []int64{}, nil
	}
	startTime := time.Now()

	members, err := c.client.ZRevRange(ctx, TimelineKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("range timeline cache: %w", err)
	}

	ids := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse tweet id %q: %w", m, err)
		}
		ids[i] = id
	}

	c.logger.Debug("range",
		zap.Int("offset", offset),
		zap.Int("limit", limit),
		zap.Int("returned", len(ids)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return ids, nil
}

func (c *RedisTimelineCache) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, TimelineKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get timeline cache size: %w", err)
	}
	return size, nil
}

func (c *RedisTimelineCache) Oldest(ctx context.Context) (int64, error) {
	members, err := c.client.ZRange(ctx, TimelineKey, 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("get oldest timeline cache entry: %w", err)
	}
	if len(members) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tweet id %q: %w", members[0], err)
	}
	return id, nil
}

// Rebuild runs DEL + ZADD in a MULTI block so readers never see a partial set.
func (c *RedisTimelineCache) Rebuild(ctx context.Context, ids []int64) error {
	startTime := time.Now()

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, TimelineKey)
	if len(ids) > 0 {
		members := make([]redis.Z, len(ids))
		for i, id := range ids {
			members[i] = member(id)
		}
		pipe.ZAdd(ctx, TimelineKey, members...)
		pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-TimelineCacheCap-1))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild timeline cache: %w", err)
	}

	c.logger.Info("rebuilt", zap.Int("tweets", len(ids)), zap.Duration("duration", time.Since(startTime)))
	return nil
}
