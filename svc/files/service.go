package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/svc/auth"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (objectid.ID, error)
}

// NodeStorage persists file nodes.
type NodeStorage interface {
	CreateNode(ctx context.Context, n *Node) error
	// GetNode returns ErrNotFound when no node has id.
	GetNode(ctx context.Context, id objectid.ID) (*Node, error)
	// GetUserNode returns ErrNotFound unless userID owns the node.
	GetUserNode(ctx context.Context, id, userID objectid.ID) (*Node, error)
	// ListNodes returns the user's children of parentID in insertion order.
	ListNodes(ctx context.Context, userID, parentID objectid.ID, skip, limit int) ([]Node, error)
	// SetPublic returns the updated node, or ErrNotFound.
	SetPublic(ctx context.Context, id, userID objectid.ID, public bool) (*Node, error)
	CountNodes(ctx context.Context) (int64, error)
}

// Uploader persists node content and schedules derived work.
type Uploader interface {
	Store(ctx context.Context, data string) (string, error)
	EnqueueThumbnail(ctx context.Context, fileID, userID objectid.ID)
}

// ContentStorage reads stored node bytes.
type ContentStorage interface {
	Open(ctx context.Context, key string) (*file.Object, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// UserCounter reports the number of registered users.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// Manager applies hierarchy rules on top of NodeStorage.
type Manager struct {
	auth     Authenticator
	nodes    NodeStorage
	uploader Uploader
	content  ContentStorage
	users    UserCounter
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithUserCounter enables the users total in Stats.
func WithUserCounter(u UserCounter) Option {
	return func(m *Manager) {
		m.users = u
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager.
func NewManager(a Authenticator, nodes NodeStorage, uploader Uploader, content ContentStorage, opts ...Option) *Manager {
	m := &Manager{
		auth:     a,
		nodes:    nodes,
		uploader: uploader,
		content:  content,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("files"))
	return m
}

// CreateNode validates in and stores a new node owned by the token's user.
// File and image content is written before the metadata. Images get a
// thumbnail job once the node exists.
func (m *Manager) CreateNode(ctx context.Context, token string, in CreateNodeInput) (*Node, error) {
	userID, err := m.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !in.Type.Valid() {
		return nil, ErrMissingType
	}
	if in.Type.HasContent() && in.Data == "" {
		return nil, ErrMissingData
	}

	parentID, err := objectid.Parse(in.ParentID)
	if err != nil {
		return nil, ErrParentNotFound
	}
	if parentID.Valid() {
		parent, err := m.nodes.GetNode(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to load parent: %w", err)
		}
		if parent.Type != TypeFolder {
			return nil, ErrParentNotAFolder
		}
	}

	n := &Node{
		ID:       objectid.New(),
		UserID:   userID,
		Name:     in.Name,
		Type:     in.Type,
		IsPublic: in.IsPublic,
		ParentID: parentID,
	}

	if in.Type.HasContent() {
		key, err := m.uploader.Store(ctx, in.Data)
		if err != nil {
			return nil, err
		}
		n.LocalPath = key
	}

	if err := m.nodes.CreateNode(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	if n.Type == TypeImage {
		m.uploader.EnqueueThumbnail(ctx, n.ID, n.UserID)
	}
	return n, nil
}

// Get returns the caller's node id. Nodes of other users are ErrNotFound.
func (m *Manager) Get(ctx context.Context, token, id string) (*Node, error) {
	userID, err := m.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return m.userNode(ctx, id, userID)
}

// maxPage is the last page whose offset fits in an int.
const maxPage = (math.MaxInt - PageSize) / PageSize

// List returns page of the caller's nodes under parentID. Pages past the
// end and unknown parents yield an empty slice.
func (m *Manager) List(ctx context.Context, token, parentID string, page int) ([]Node, error) {
	userID, err := m.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	pid, err := objectid.Parse(parentID)
	if err != nil {
		return []Node{}, nil
	}
	page = max(page, 0)
	if page > maxPage {
		return []Node{}, nil
	}

	nodes, err := m.nodes.ListNodes(ctx, userID, pid, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

// SetVisibility flips the public flag of the caller's node.
func (m *Manager) SetVisibility(ctx context.Context, token, id string, public bool) (*Node, error) {
	userID, err := m.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	nid, err := objectid.Parse(id)
	if err != nil || nid.IsZero() {
		return nil, ErrNotFound
	}
	n, err := m.nodes.SetPublic(ctx, nid, userID, public)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update node: %w", err)
	}
	return n, nil
}

// ReadContent opens the bytes of node id. token may be empty; private nodes
// are visible to their owner only. For images a size from RenditionWidths
// selects the matching thumbnail; other sizes serve the original.
func (m *Manager) ReadContent(ctx context.Context, token, id string, size int) (*Content, error) {
	nid, err := objectid.Parse(id)
	if err != nil || nid.IsZero() {
		return nil, ErrNotFound
	}
	n, err := m.nodes.GetNode(ctx, nid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load node: %w", err)
	}

	if !n.IsPublic {
		caller, err := m.caller(ctx, token)
		if err != nil {
			return nil, err
		}
		if caller != n.UserID {
			return nil, ErrNotFound
		}
	}

	if n.Type == TypeFolder {
		return nil, ErrFolderHasNoContent
	}

	key := n.LocalPath
	if n.Type == TypeImage && IsRenditionWidth(size) {
		key = file.RenditionKey(key, size)
	}

	obj, err := m.content.Open(ctx, key)
	if err != nil {
		if errors.Is(err, file.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	head, err := file.Peek(obj)
	if err != nil {
		_ = obj.Body.Close()
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	return &Content{
		Name:        n.Name,
		ContentType: file.DetectContentType(n.Name, head),
		Size:        obj.Size,
		Body:        obj.Body,
	}, nil
}

// RenditionStatus reports which thumbnails of the caller's image exist.
func (m *Manager) RenditionStatus(ctx context.Context, token, id string) (map[int]bool, error) {
	userID, err := m.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	n, err := m.userNode(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.Type != TypeImage {
		return nil, ErrNotAnImage
	}

	status := make(map[int]bool, len(RenditionWidths))
	for _, w := range RenditionWidths {
		ok, err := m.content.Exists(ctx, file.RenditionKey(n.LocalPath, w))
		if err != nil {
			return nil, fmt.Errorf("failed to check rendition: %w", err)
		}
		status[w] = ok
	}
	return status, nil
}

// Stats counts users and nodes.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	files, err := m.nodes.CountNodes(ctx)
	if err != nil {
		return s, fmt.Errorf("failed to count files: %w", err)
	}
	s.Files = files
	if m.users != nil {
		users, err := m.users.CountUsers(ctx)
		if err != nil {
			return s, fmt.Errorf("failed to count users: %w", err)
		}
		s.Users = users
	}
	return s, nil
}

func (m *Manager) userNode(ctx context.Context, id string, userID objectid.ID) (*Node, error) {
	nid, err := objectid.Parse(id)
	if err != nil || nid.IsZero() {
		return nil, ErrNotFound
	}
	n, err := m.nodes.GetUserNode(ctx, nid, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load node: %w", err)
	}
	return n, nil
}

// caller resolves an optional token. Missing or dead tokens are anonymous.
func (m *Manager) caller(ctx context.Context, token string) (objectid.ID, error) {
	if token == "" {
		return objectid.Root, nil
	}
	id, err := m.auth.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return objectid.Root, nil
		}
		return objectid.Root, err
	}
	return id, nil
}
