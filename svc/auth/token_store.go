package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/filevault/pkg/redis"
)

// TokenKeyPrefix namespaces session keys in Redis.
const TokenKeyPrefix = "auth_"

// RedisTokenStore keeps sessions in Redis with native key expiry.
type RedisTokenStore struct {
	store *redis.Store
}

// NewRedisTokenStore returns a TokenStore over client using TokenKeyPrefix.
func NewRedisTokenStore(client goredis.UniversalClient) *RedisTokenStore {
	return &RedisTokenStore{store: redis.NewStore(client, TokenKeyPrefix)}
}

func (s *RedisTokenStore) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.store.Set(ctx, token, userID, ttl)
}

func (s *RedisTokenStore) Get(ctx context.Context, token string) (string, error) {
	v, err := s.store.Get(ctx, token)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return "", ErrTokenNotFound
	}
	return v, err
}

func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	err := s.store.Delete(ctx, token)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return ErrTokenNotFound
	}
	return err
}

// MemoryTokenStore keeps sessions in process memory. Expired entries are
// dropped when read.
type MemoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryToken
	now     func() time.Time
}

type memoryToken struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryTokenStore returns an empty store. now may be nil.
func NewMemoryTokenStore(now func() time.Time) *MemoryTokenStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenStore{entries: make(map[string]memoryToken), now: now}
}

func (s *MemoryTokenStore) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryToken{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(token)
	if !ok {
		return "", ErrTokenNotFound
	}
	return e.userID, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(token); !ok {
		return ErrTokenNotFound
	}
	delete(s.entries, token)
	return nil
}

func (s *MemoryTokenStore) lookup(token string) (memoryToken, bool) {
	e, ok := s.entries[token]
	if !ok {
		return memoryToken{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, token)
		return memoryToken{}, false
	}
	return e, true
}
