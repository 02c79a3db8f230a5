package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKey = "settings:" + GlobalID

// Cache holds the current settings between reads.
type Cache interface {
	Get(ctx context.Context) (*Settings, bool)
	Set(ctx context.Context, s *Settings)
	Invalidate(ctx context.Context)
}

// LocalCache keeps the settings in process memory.
type LocalCache struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewLocalCache(ttl time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (l *LocalCache) Get(_ context.Context) (*Settings, bool) {
	v, ok := l.c.Get(cacheKey)
	if !ok {
		return nil, false
	}
	s := v.(Settings)
	return &s, true
}

func (l *LocalCache) Set(_ context.Context, s *Settings) {
	l.c.Set(cacheKey, *s, l.ttl)
}

func (l *LocalCache) Invalidate(_ context.Context) {
	l.c.Delete(cacheKey)
}

// RedisCache shares the settings between API replicas. Errors are logged
// and treated as a miss so the database stays authoritative.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, logger: logger.Named("SettingsRedisCache")}
}

func (r *RedisCache) Get(ctx context.Context) (*Settings, bool) {
	raw, err := r.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Redis get failed", zap.Error(err))
		}
		return nil, false
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Warn("Discarding malformed cached settings", zap.Error(err))
		return nil, false
	}
	return &s, true
}

func (r *RedisCache) Set(ctx context.Context, s *Settings) {
	raw, err := json.Marshal(s)
	if err != nil {
		r.logger.Warn("Failed to encode settings for cache", zap.Error(err))
		return
	}
	if err := r.rdb.Set(ctx, cacheKey, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("Redis set failed", zap.Error(err))
	}
}

func (r *RedisCache) Invalidate(ctx context.Context) {
	if err := r.rdb.Del(ctx, cacheKey).Err(); err != nil {
		r.logger.Warn("Redis delete failed", zap.Error(err))
	}
}
