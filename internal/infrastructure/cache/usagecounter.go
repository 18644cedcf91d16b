package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tierworks/sellertiers/internal/application/entitlement"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

// Usage keys never expire: an expired listing counter would read as zero and
// reopen the quota.
const usageKeyPrefix = "seller:usage:"

// incrFloorZeroScript adds ARGV[1] to a string counter, or to hash field
// ARGV[2] when given, clamping the result at zero.
// KEYS[1] = counter key
// Returns the new value.
var incrFloorZeroScript = redis.NewScript(`
local value
if ARGV[2] ~= '' then
    value = redis.call('HINCRBY', KEYS[1], ARGV[2], ARGV[1])
    if value < 0 then
        redis.call('HSET', KEYS[1], ARGV[2], 0)
        value = 0
    end
else
    value = redis.call('INCRBY', KEYS[1], ARGV[1])
    if value < 0 then
        redis.call('SET', KEYS[1], 0)
        value = 0
    end
end
return value
`)

// RedisUsageCounter keeps per-seller usage counters: active listings as a
// plain counter, photos per listing in a hash, and boost events in a sorted
// set scored by unix milliseconds.
type RedisUsageCounter struct {
	client *redis.Client
	logger logger.Interface
}

var (
	_ entitlement.UsageProvider = (*RedisUsageCounter)(nil)
	_ entitlement.UsageRecorder = (*RedisUsageCounter)(nil)
)

func NewRedisUsageCounter(client *redis.Client, logger logger.Interface) *RedisUsageCounter {
	return &RedisUsageCounter{
		client: client,
		logger: logger,
	}
}

func (c *RedisUsageCounter) key(sellerID string, metric entitlement.UsageMetric) string {
	return fmt.Sprintf("%s%s:%s", usageKeyPrefix, sellerID, metric)
}

func (c *RedisUsageCounter) ActiveListings(ctx context.Context, sellerID string) (int64, error) {
	value, err := c.client.Get(ctx, c.key(sellerID, entitlement.MetricActiveListings)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read active listings: %w", err)
	}
	return value, nil
}

func (c *RedisUsageCounter) ListingPhotos(ctx context.Context, sellerID, listingID string) (int64, error) {
	value, err := c.client.HGet(ctx, c.key(sellerID, entitlement.MetricListingPhotos), listingID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read listing photos: %w", err)
	}
	return value, nil
}

func (c *RedisUsageCounter) BoostsSince(ctx context.Context, sellerID string, since time.Time) (int64, error) {
	count, err := c.client.ZCount(ctx,
		c.key(sellerID, entitlement.MetricBoosts),
		strconv.FormatInt(since.UnixMilli(), 10),
		"+inf",
	).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count boosts: %w", err)
	}
	return count, nil
}

// Record applies delta to the metric. Boost events are append-only, so a
// negative boost delta is rejected.
func (c *RedisUsageCounter) Record(ctx context.Context, sellerID string, metric entitlement.UsageMetric, listingID string, delta int64, at time.Time) error {
	if delta > entitlement.MaxUsageDelta || delta < -entitlement.MaxUsageDelta {
		return fmt.Errorf("usage delta %d out of range", delta)
	}
	key := c.key(sellerID, metric)

	switch metric {
	case entitlement.MetricActiveListings:
		if err := incrFloorZeroScript.Run(ctx, c.client, []string{key}, delta, "").Err(); err != nil {
			return fmt.Errorf("failed to record active listings: %w", err)
		}
	case entitlement.MetricListingPhotos:
		if listingID == "" {
			return fmt.Errorf("listing id is required for %s", metric)
		}
		if err := incrFloorZeroScript.Run(ctx, c.client, []string{key}, delta, listingID).Err(); err != nil {
			return fmt.Errorf("failed to record listing photos: %w", err)
		}
	case entitlement.MetricBoosts:
		if delta <= 0 {
			return fmt.Errorf("boost delta must be positive, got %d", delta)
		}
		members := make([]redis.Z, 0, delta)
		for i := int64(0); i < delta; i++ {
			members = append(members, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
		}
		if err := c.client.ZAdd(ctx, key, members...).Err(); err != nil {
			return fmt.Errorf("failed to record boosts: %w", err)
		}
	default:
		return fmt.Errorf("unknown usage metric %q", metric)
	}

	c.logger.Debugw("usage recorded",
		"seller_id", sellerID,
		"metric", metric,
		"listing_id", listingID,
		"delta", delta,
	)
	return nil
}
