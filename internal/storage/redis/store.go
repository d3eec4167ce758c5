package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store adapts a go-redis client to the storage.Store interface
type Store struct {
	client *redis.Client
}

// NewStore wraps an established go-redis client
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Incr atomically increments the counter at key
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// Expire sets the time-to-live on an existing key
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

// SetEx stores value at key with the given time-to-live
func (s *Store) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Exists reports whether key is present
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Del removes keys
func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Ping probes the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection
func (s *Store) Close() error {
	return s.client.Close()
}
