// Package cache stores opaque cached payloads keyed per entity. The
// store never judges freshness itself; entries carry their cached-at
// timestamp and the policy engine decides validity.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached payload plus the moment it was written.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	CachedAt time.Time       `json:"cached_at"`
}

// Store is the keyed get/upsert contract the read paths consume.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Upsert(ctx context.Context, key string, payload any, cachedAt time.Time) error
}

// RedisStore implements Store on Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get retrieves an entry. A missing key returns (nil, nil).
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A corrupt entry is treated as a miss; the read path refetches
		// and overwrites it.
		return nil, nil
	}

	return &entry, nil
}

// Upsert writes an entry, replacing any previous value for the key.
// Concurrent writers race and last-writer-wins is fine: every write is
// derived from authoritative upstream data, never from the prior entry.
func (s *RedisStore) Upsert(ctx context.Context, key string, payload any, cachedAt time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	entry, err := json.Marshal(Entry{Payload: body, CachedAt: cachedAt})
	if err != nil {
		return fmt.Errorf("cache marshal entry %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, entry, 0).Err(); err != nil {
		return fmt.Errorf("cache upsert %s: %w", key, err)
	}

	return nil
}

// Key builders, one per cached entity kind.

func GamesKey(date time.Time) string { return "games:" + date.Format("2006-01-02") }
func BoxScoreKey(gameID int) string  { return fmt.Sprintf("boxscore:%d", gameID) }
func StandingsKey(season int) string { return fmt.Sprintf("standings:%d", season) }
