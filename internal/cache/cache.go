package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stock-forecast-service/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

// Key prefixes for cached forecasts and rankings
const (
	ForecastKeyPrefix    = "forecast:stock:"
	RiskRankingKeyPrefix = "risk:ranking:"
)

// Cache defines the interface for cache operations
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPattern deletes all keys matching a trailing-* pattern
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ForecastKey is the cache key of a stock's depletion forecast
func ForecastKey(stockID int64) string {
	return fmt.Sprintf("%s%d", ForecastKeyPrefix, stockID)
}

// RiskRankingKey is the cache key of the high-risk ranking computed for a day
func RiskRankingKey(day time.Time) string {
	return RiskRankingKeyPrefix + day.UTC().Format("2006-01-02")
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache creates a Redis cache, falling back to memory when Redis is unreachable
func NewCache(cfg *config.Config, logger *zap.Logger) Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis, using in-memory cache",
			zap.String("host", cfg.RedisHost),
			zap.String("port", cfg.RedisPort),
			zap.Error(err),
		)
		rdb.Close()
		return NewInMemoryCache(logger)
	}

	logger.Info("Redis cache initialized successfully",
		zap.String("host", cfg.RedisHost),
		zap.String("port", cfg.RedisPort),
		zap.Int("db", cfg.RedisDB),
	)

	return NewRedisCache(rdb, logger)
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		c.logger.Warn("Forecast cache read failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Forecast cache write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("Forecast cache invalidation failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Forecast cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("Forecast cache pattern invalidation failed", zap.String("pattern", pattern), zap.Error(err))
			return fmt.Errorf("cache delete %s: %w", pattern, err)
		}
		c.logger.Debug("Invalidated cached keys", zap.String("pattern", pattern), zap.Int("count", len(keys)))
	}
	return nil
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// InMemoryCache is the fallback when Redis is not available
type InMemoryCache struct {
	logger *zap.Logger
	mu     sync.Mutex
	data   map[string]cacheEntry
	now    func() time.Time
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewInMemoryCache(logger *zap.Logger) *InMemoryCache {
	return &InMemoryCache{
		logger: logger,
		data:   make(map[string]cacheEntry),
		now:    time.Now,
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	c.data[key] = cacheEntry{
		value:     stored,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

func (c *InMemoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for key := range c.data {
		if (wildcard && strings.HasPrefix(key, prefix)) || key == pattern {
			delete(c.data, key)
		}
	}
	return nil
}

// live returns an unexpired entry, evicting it if stale. Caller holds mu.
func (c *InMemoryCache) live(key string) (cacheEntry, bool) {
	entry, exists := c.data[key]
	if !exists {
		return cacheEntry{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.data, key)
		return cacheEntry{}, false
	}
	return entry, true
}

// GetJSON reads key and decodes it into dest
func GetJSON(ctx context.Context, cache Cache, key string, dest interface{}) error {
	data, err := cache.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON encodes value and stores it under key
func SetJSON(ctx context.Context, cache Cache, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return cache.Set(ctx, key, data, ttl)
}

// TTL returns a time.Duration from seconds
func TTL(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
