package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/metrics"
	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/svc/files"
)

// NodeReader loads a user's node.
type NodeReader interface {
	GetUserNode(ctx context.Context, id, userID objectid.ID) (*files.Node, error)
}

// Storage reads originals and writes renditions.
type Storage interface {
	Open(ctx context.Context, key string) (*file.Object, error)
	WriteFile(ctx context.Context, key string, data []byte) error
}

// Recorder counts finished jobs.
type Recorder interface {
	ThumbnailCompleted(result string)
}

// CompleteFunc runs after all renditions of a node were written.
type CompleteFunc func(ctx context.Context, node *files.Node, keys []string)

// Generator turns image nodes into renditions.
type Generator struct {
	nodes      NodeReader
	storage    Storage
	widths     []int
	recorder   Recorder
	onComplete CompleteFunc
	logger     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder sets the job result counter.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) {
		g.recorder = r
	}
}

// WithOnComplete registers a completion hook.
func WithOnComplete(fn CompleteFunc) Option {
	return func(g *Generator) {
		g.onComplete = fn
	}
}

// WithWidths overrides the rendition widths.
func WithWidths(widths ...int) Option {
	return func(g *Generator) {
		if len(widths) > 0 {
			g.widths = widths
		}
	}
}

// WithLogger sets the generator logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator returns a Generator.
func NewGenerator(nodes NodeReader, storage Storage, opts ...Option) *Generator {
	g := &Generator{
		nodes:   nodes,
		storage: storage,
		widths:  files.RenditionWidths,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("thumbnail"))
	return g
}

// Handler exposes Generate as a queue handler for JobName.
func (g *Generator) Handler() queue.Handler {
	return queue.NewJobHandler[Payload](g.Generate)
}

// Generate writes every rendition of the payload's image. A failed
// rendition fails the job; renditions already written are kept.
func (g *Generator) Generate(ctx context.Context, p Payload) error {
	start := time.Now()
	node, keys, err := g.generate(ctx, p)
	if err != nil {
		g.record(metrics.ResultFailure)
		return err
	}
	g.record(metrics.ResultSuccess)

	g.logger.InfoContext(ctx, "thumbnails generated",
		logger.FileID(p.FileID),
		logger.UserID(p.UserID),
		slog.Int("count", len(keys)),
		logger.Duration(time.Since(start)),
	)
	if g.onComplete != nil {
		g.onComplete(ctx, node, keys)
	}
	return nil
}

func (g *Generator) generate(ctx context.Context, p Payload) (*files.Node, []string, error) {
	if p.FileID.IsZero() {
		return nil, nil, ErrMissingFileID
	}
	if p.UserID.IsZero() {
		return nil, nil, ErrMissingUserID
	}

	node, err := g.nodes.GetUserNode(ctx, p.FileID, p.UserID)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to load node: %w", err)
	}
	if node.LocalPath == "" {
		return nil, nil, ErrFileNotFound
	}

	data, err := g.read(ctx, node.LocalPath)
	if err != nil {
		return nil, nil, err
	}
	src, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range g.widths {
		if _, err := targetHeight(src.Image.Bounds(), w); err != nil {
			return nil, nil, fmt.Errorf("width %d: %w", w, err)
		}
	}

	keys := make([]string, len(g.widths))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, w := range g.widths {
		eg.Go(func() error {
			out, err := Resize(src, w)
			if err != nil {
				return fmt.Errorf("width %d: %w", w, err)
			}
			key := file.RenditionKey(node.LocalPath, w)
			if err := g.storage.WriteFile(egCtx, key, out); err != nil {
				return errors.Join(ErrWriteFailed, err)
			}
			keys[i] = key
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return node, keys, nil
}

func (g *Generator) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := g.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, file.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open original: %w", err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read original: %w", err)
	}
	return data, nil
}

func (g *Generator) record(result string) {
	if g.recorder != nil {
		g.recorder.ThumbnailCompleted(result)
	}
}
