package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache stores JSON-encoded values under string keys with a TTL
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)          // Load key into dest, false when missing
	Set(ctx context.Context, key string, value any, ttl time.Duration) error // Store value for ttl
	Delete(ctx context.Context, key string) error                         // Remove one key
	DeletePrefix(ctx context.Context, prefix string) error                // Remove every key starting with prefix
}

// RedisCache is a Cache backed by Redis
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps a Redis client
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// Set sets a value in Redis with a specified TTL
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Delete deletes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err() // Delete key from Redis
}

// DeletePrefix deletes every key matching prefix* using SCAN so Redis is never blocked
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Iterate matching keys in batches
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err // Scan failed
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err() // Delete the remainder
	}
	return nil
}
