package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/config"
)

// RedisStore backs the cache with Redis so entries survive restarts and can
// be shared between replicas. Redis handles expiry via key TTLs.
type RedisStore struct {
	client *redis.Client
	prefix string
	stats  *Stats
	logger *logrus.Logger
}

// NewRedisClient connects a go-redis client from config.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, logger *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "series_cache:",
		stats:  &Stats{},
		logger: logger,
	}
}

// Get retrieves and decodes an entry; any Redis or decode error counts as a
// miss so callers fall through to a fresh fetch.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool) {
	data, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		s.stats.miss()
		return nil, false
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Redis get failed")
		s.stats.miss()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Corrupt cache entry")
		s.stats.miss()
		return nil, false
	}

	s.stats.hit()
	return &entry, true
}

// Set stores the entry with a Redis key TTL.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	s.stats.set()
	return nil
}

// Stats exposes the hit/miss counters.
func (s *RedisStore) Stats() *Stats { return s.stats }
