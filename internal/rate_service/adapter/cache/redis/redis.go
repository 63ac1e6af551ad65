package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Cache keeps one hash per base currency under "rates:{BASE}", one field
// per target currency holding the decimal rate string, with the TTL applied
// to the whole record. Every operation degrades to a no-op or a miss when
// redis is unreachable; errors are logged, never returned.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		rdb: client,
		ttl: ttl,
	}
}

func InitCache(ctx context.Context, options *redis.Options, ttl time.Duration) (*Cache, error) {
	const op = "cache.redis.InitCache"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return NewCache(redisClient, ttl), nil
}

func key(base entities.CurrencyCode) string {
	return "rates:" + base.String()
}

func (c *Cache) Store(ctx context.Context, base entities.CurrencyCode, rates map[entities.CurrencyCode]decimal.Decimal) {
	if len(rates) == 0 {
		return
	}

	fields := make(map[string]string, len(rates))
	for target, rate := range rates {
		fields[target.String()] = rate.String()
	}

	k := key(base)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, k, fields)
	pipe.Expire(ctx, k, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("cache store failed", "base", base, "error", err)
	}
}

func (c *Cache) Get(ctx context.Context, base, target entities.CurrencyCode) (decimal.Decimal, bool) {
	value, err := c.rdb.HGet(ctx, key(base), target.String()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "base", base, "target", target, "error", err)
		}
		return decimal.Zero, false
	}

	rate, err := decimal.NewFromString(value)
	if err != nil {
		slog.Warn("cache holds unparsable rate", "base", base, "target", target, "value", value)
		return decimal.Zero, false
	}

	return rate, true
}

func (c *Cache) GetAll(ctx context.Context, base entities.CurrencyCode) map[entities.CurrencyCode]decimal.Decimal {
	fields, err := c.rdb.HGetAll(ctx, key(base)).Result()
	if err != nil {
		slog.Warn("cache get all failed", "base", base, "error", err)
		return nil
	}

	rates := make(map[entities.CurrencyCode]decimal.Decimal, len(fields))
	for target, value := range fields {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			slog.Warn("cache holds unparsable rate", "base", base, "target", target, "value", value)
			continue
		}
		rates[entities.CurrencyCode(target)] = rate
	}

	return rates
}

func (c *Cache) Evict(ctx context.Context, base entities.CurrencyCode) {
	if err := c.rdb.Del(ctx, key(base)).Err(); err != nil {
		slog.Warn("cache evict failed", "base", base, "error", err)
	}
}

func (c *Cache) EvictAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, "rates:*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache evict all scan failed", "error", err)
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache evict all failed", "error", err)
	}
}

func (c *Cache) IsAvailable(ctx context.Context) bool {
	return c.rdb.Ping(ctx).Err() == nil
}
