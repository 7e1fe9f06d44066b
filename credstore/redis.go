package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one credential record per device in a single Redis hash,
// keyed "<prefix>:<deviceID>". A hash write covering several fields is a
// single command, which is what gives MultiSet its atomicity.
type RedisStore struct {
	redis    redis.UniversalClient
	prefix   string
	deviceID string
}

// NewRedisStore creates a RedisStore for one device record.
func NewRedisStore(client redis.UniversalClient, prefix, deviceID string) *RedisStore {
	if prefix == "" {
		prefix = "cred"
	}
	return &RedisStore{redis: client, prefix: prefix, deviceID: deviceID}
}

func (s *RedisStore) key() string {
	return s.prefix + ":" + s.deviceID
}

// Get describes the get operation and its observable behavior.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.redis.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credstore: get %s: %w", key, err)
	}
	return val, nil
}

// Set describes the set operation and its observable behavior.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.HSet(ctx, s.key(), key, value).Err(); err != nil {
		return fmt.Errorf("credstore: set %s: %w", key, err)
	}
	return nil
}

// Remove describes the remove operation and its observable behavior.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.redis.HDel(ctx, s.key(), key).Err(); err != nil {
		return fmt.Errorf("credstore: remove %s: %w", key, err)
	}
	return nil
}

// MultiSet describes the multiset operation and its observable behavior.
func (s *RedisStore) MultiSet(ctx context.Context, pairs [][2]string) error {
	if len(pairs) == 0 {
		return nil
	}
	args := make([]any, 0, len(pairs)*2)
	for _, pair := range pairs {
		args = append(args, pair[0], pair[1])
	}
	if err := s.redis.HSet(ctx, s.key(), args...).Err(); err != nil {
		return fmt.Errorf("credstore: multiset: %w", err)
	}
	return nil
}

// MultiRemove describes the multiremove operation and its observable behavior.
func (s *RedisStore) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.HDel(ctx, s.key(), keys...).Err(); err != nil {
		return fmt.Errorf("credstore: multiremove: %w", err)
	}
	return nil
}
