package edgecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the edge cache with Redis so warm responses survive process
// recycling and are shared across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}

	cacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		cacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	// Redis expiry enforces the TTL; no sweeper needed.
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
