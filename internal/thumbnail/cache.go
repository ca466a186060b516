package thumbnail

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "thumbnail:"

// Cache remembers generated thumbnail paths.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache returns a Cache backed by Redis.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, cacheKeyPrefix+key, value, ttl).Err()
}

// CachedGenerator consults the cache before generating. A hit whose file is
// gone from disk counts as a miss. Cache failures are logged and otherwise
// ignored.
type CachedGenerator struct {
	next   Generator
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGenerator wraps next with cache. A nil cache returns next unchanged.
func NewCachedGenerator(next Generator, cache Cache, ttl time.Duration, logger *zap.Logger) Generator {
	if cache == nil {
		return next
	}
	return &CachedGenerator{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (g *CachedGenerator) Generate(ctx context.Context, sourceURL, fileName string) (string, error) {
	key := sourceURL + "|" + fileName
	if path, ok, err := g.cache.Get(ctx, key); err != nil {
		g.logger.Debug("thumbnail cache get failed", zap.String("source_url", sourceURL), zap.Error(err))
	} else if ok {
		if _, statErr := os.Stat(path); statErr == nil {
			return path, nil
		}
		g.logger.Debug("cached thumbnail missing on disk", zap.String("path", path))
	}

	path, err := g.next.Generate(ctx, sourceURL, fileName)
	if err != nil {
		return "", err
	}
	if err := g.cache.Set(ctx, key, path, g.ttl); err != nil {
		g.logger.Debug("thumbnail cache set failed", zap.String("source_url", sourceURL), zap.Error(err))
	}
	return path, nil
}
