package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"trektoo-proxy-go/internal/config"
)

// keyPrefix namespaces image cache keys in redis.
const keyPrefix = "trektoo:image:"

// connectionTimeout is the timeout for verifying the redis connection.
const connectionTimeout = 5 * time.Second

// RedisStore is a Store backed by redis. Entries are written with a redis
// TTL matching the cache TTL so stale keys are reclaimed server-side; the
// lazy age check in ImageCache still applies on read.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates and pings a redis client from config.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.Cache.RedisAddress == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the entry for id.
func (s *RedisStore) Get(ctx context.Context, id int) (Entry, bool, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, true, nil
}

// Set writes the entry for id with the store TTL.
func (s *RedisStore) Set(ctx context.Context, id int, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear drops all image cache keys.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

func key(id int) string {
	return keyPrefix + strconv.Itoa(id)
}
