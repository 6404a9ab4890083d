package files

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// MemoryNodeStorage keeps nodes in process memory, ordered by id.
type MemoryNodeStorage struct {
	mu    sync.RWMutex
	nodes map[objectid.ID]Node
}

// NewMemoryNodeStorage returns an empty store.
func NewMemoryNodeStorage() *MemoryNodeStorage {
	return &MemoryNodeStorage{nodes: make(map[objectid.ID]Node)}
}

func (s *MemoryNodeStorage) CreateNode(_ context.Context, n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = *n
	return nil
}

func (s *MemoryNodeStorage) GetNode(_ context.Context, id objectid.ID) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryNodeStorage) GetUserNode(ctx context.Context, id, userID objectid.ID) (*Node, error) {
	n, err := s.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *MemoryNodeStorage) ListNodes(_ context.Context, userID, parentID objectid.ID, skip, limit int) ([]Node, error) {
	s.mu.RLock()
	matched := make([]Node, 0)
	for _, n := range s.nodes {
		if n.UserID == userID && n.ParentID == parentID {
			matched = append(matched, n)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Node) int {
		ao, bo := a.ID.ObjectID(), b.ID.ObjectID()
		return bytes.Compare(ao[:], bo[:])
	})
	if skip < 0 || skip >= len(matched) {
		return []Node{}, nil
	}
	end := min(skip+limit, len(matched))
	return matched[skip:end], nil
}

func (s *MemoryNodeStorage) SetPublic(_ context.Context, id, userID objectid.ID, public bool) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n.IsPublic = public
	s.nodes[id] = n
	return &n, nil
}

func (s *MemoryNodeStorage) CountNodes(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.nodes)), nil
}
