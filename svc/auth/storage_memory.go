package auth

import (
	"context"
	"sync"

	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// MemoryUserStorage keeps users in process memory.
type MemoryUserStorage struct {
	mu      sync.RWMutex
	byID    map[objectid.ID]User
	byEmail map[string]objectid.ID
}

// NewMemoryUserStorage returns an empty store.
func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{
		byID:    make(map[objectid.ID]User),
		byEmail: make(map[string]objectid.ID),
	}
}

func (s *MemoryUserStorage) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrEmailAlreadyExists
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *MemoryUserStorage) GetUserByID(_ context.Context, id objectid.ID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryUserStorage) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}
