package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a prefixed key/value store with per-key expiry.
type Store struct {
	db     redis.UniversalClient
	prefix string
}

// NewStore returns a Store whose keys are all prefixed with prefix.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{db: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Set stores value under key. A non-positive ttl means no expiry.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.db.Set(ctx, s.key(key), value, ttl).Err()
}

// Get returns the value under key, or ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.db.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete removes key. Deleting a missing key returns ErrKeyNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.db.Del(ctx, s.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// TTL returns the remaining lifetime of key.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.db.TTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, err
	}
	if d == -2 {
		return 0, ErrKeyNotFound
	}
	return d, nil
}
