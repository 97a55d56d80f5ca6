package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coursemate/coursemate/agent"
	"github.com/coursemate/coursemate/citation"
	"github.com/coursemate/coursemate/config"
)

// RedisCache implements AnswerCache using Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for cached answers (0 means no expiration)
}

// NewRedisCache creates a new Redis-based answer cache
func NewRedisCache(cfg *RedisConfig) (*RedisCache, error) {
	if cfg == nil {
		cfg = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "coursemate:answers:",
			TTL:    time.Hour,
		}
	}
	if err := config.ValidateRedisConfig(cfg.Addr, cfg.DB, cfg.Prefix); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisCache{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}, nil
}

// cachedResponse is the serialized representation stored in Redis.
type cachedResponse struct {
	Response   string              `json:"response"`
	Citations  []citation.Citation `json:"citations"`
	Confidence float64             `json:"confidence"`
}

// Get returns the cached response for the key, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*agent.Response, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var cached cachedResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &agent.Response{
		Response:   cached.Response,
		Citations:  cached.Citations,
		Confidence: cached.Confidence,
	}, nil
}

// Set stores a response under the key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, resp *agent.Response) error {
	if resp == nil || resp.ShouldEscalate {
		return nil
	}
	raw, err := json.Marshal(cachedResponse{
		Response:   resp.Response,
		Citations:  resp.Citations,
		Confidence: resp.Confidence,
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
