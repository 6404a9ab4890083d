// Package upload persists submitted node content and hands image work to
// the background queue.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/svc/thumbnail"
)

// Storage is the write side of durable byte storage.
type Storage interface {
	EnsureDir(ctx context.Context) error
	WriteFile(ctx context.Context, key string, data []byte) error
}

// Enqueuer schedules background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (*queue.Job, error)
}

// ThumbnailMaxRetries caps thumbnail job attempts.
const ThumbnailMaxRetries = 3

// Pipeline writes decoded content under random keys.
type Pipeline struct {
	storage  Storage
	enqueuer Enqueuer
	newKey   func() string
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithKeyGenerator replaces the random storage key source.
func WithKeyGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newKey = fn
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline returns a Pipeline over storage and enqueuer.
func NewPipeline(storage Storage, enqueuer Enqueuer, opts ...Option) *Pipeline {
	p := &Pipeline{
		storage:  storage,
		enqueuer: enqueuer,
		newKey:   uuid.NewString,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("upload"))
	return p
}

// Store decodes base64 content, writes it under a fresh key and returns
// the key. Storage errors are returned as is, wrapped in ErrStoreFailure.
func (p *Pipeline) Store(ctx context.Context, data string) (string, error) {
	raw, err := decode(data)
	if err != nil {
		return "", err
	}
	if err := p.storage.EnsureDir(ctx); err != nil {
		return "", errors.Join(ErrStoreFailure, err)
	}
	key := p.newKey()
	if err := p.storage.WriteFile(ctx, key, raw); err != nil {
		return "", errors.Join(ErrStoreFailure, err)
	}
	return key, nil
}

// EnqueueThumbnail schedules rendition generation for an image node.
// Failures are logged only; the node already exists.
func (p *Pipeline) EnqueueThumbnail(ctx context.Context, fileID, userID objectid.ID) {
	job, err := p.enqueuer.Enqueue(ctx,
		thumbnail.Payload{FileID: fileID, UserID: userID},
		queue.WithMaxRetries(ThumbnailMaxRetries),
	)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to enqueue thumbnail job",
			logger.FileID(fileID),
			logger.UserID(userID),
			logger.Error(err),
		)
		return
	}
	p.logger.DebugContext(ctx, "thumbnail job enqueued",
		logger.FileID(fileID),
		logger.JobID(job.ID),
	)
}

// decode accepts standard and URL-safe base64, padded or not.
func decode(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(data); err == nil {
			return raw, nil
		}
	}
	return nil, ErrInvalidData
}
