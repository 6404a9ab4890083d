// Package app assembles the service from configuration: connections,
// storage backends, domain services, the HTTP router and the thumbnail worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/pkg/clientip"
	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/metrics"
	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/redis"
	"github.com/dmitrymomot/filevault/pkg/requestid"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/files"
	"github.com/dmitrymomot/filevault/svc/thumbnail"
	"github.com/dmitrymomot/filevault/svc/upload"
)

// App owns every long lived dependency.
type App struct {
	Config  Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	DB      *mongo.Database
	Redis   *goredis.Client
	Storage file.Storage

	Auth      *auth.Service
	Files     *files.Manager
	Jobs      *queue.MongoStorage
	Enqueuer  *queue.Enqueuer
	Generator *thumbnail.Generator
	Worker    *queue.Worker
	Limiter   *ratelimiter.Bucket // nil when rate limiting is disabled
}

// NewLogger builds the process logger tagged with the app name and env.
// Records emitted with a request context carry request_id and client_ip.
func NewLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}

// New connects to MongoDB and Redis, prepares indexes and the storage
// backend, then wires the services. On error every opened connection is
// closed.
func New(ctx context.Context, cfg Config, log *slog.Logger) (_ *App, err error) {
	if log == nil {
		log = logger.Discard()
	}
	a := &App{Config: cfg, Logger: log, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.DB, err = mongox.NewWithDatabase(ctx, cfg.Mongo); err != nil {
		return nil, err
	}
	if a.Redis, err = redis.Connect(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.Storage, err = file.New(ctx, cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to init file storage: %w", err)
	}

	users := auth.NewMongoUserStorage(a.DB)
	nodes := files.NewMongoNodeStorage(a.DB)
	a.Jobs = queue.NewMongoStorage(a.DB, queue.WithMongoBackoff(cfg.Queue.Backoff()))
	for name, ensure := range map[string]func(context.Context) error{
		"users": users.EnsureIndexes,
		"files": nodes.EnsureIndexes,
		"jobs":  a.Jobs.EnsureIndexes,
	} {
		if err = ensure(ctx); err != nil {
			return nil, fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	if cfg.RateLimit.Enabled {
		a.Limiter, err = ratelimiter.NewBucket(ratelimiter.NewRedisStore(a.Redis), cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to init rate limiter: %w", err)
		}
	}

	a.Auth = auth.NewService(users, auth.NewRedisTokenStore(a.Redis),
		append(cfg.Auth.Options(), auth.WithLogger(log))...)

	if a.Enqueuer, err = queue.NewEnqueuer(a.Jobs, queue.WithDefaultQueue(cfg.Queue.Queue)); err != nil {
		return nil, fmt.Errorf("failed to init enqueuer: %w", err)
	}
	pipeline := upload.NewPipeline(a.Storage, a.Enqueuer, upload.WithLogger(log))
	a.Files = files.NewManager(a.Auth, nodes, pipeline, a.Storage,
		files.WithUserCounter(a.Auth),
		files.WithLogger(log),
	)

	a.Generator = thumbnail.NewGenerator(nodes, a.Storage,
		thumbnail.WithRecorder(a.Metrics),
		thumbnail.WithLogger(log),
	)
	a.Worker, err = queue.NewWorker(a.Jobs, append(cfg.Queue.WorkerOptions(),
		queue.WithWorkerLogger(log),
		queue.WithObserver(a.Metrics.ObserveJob),
	)...)
	if err != nil {
		return nil, fmt.Errorf("failed to init worker: %w", err)
	}
	a.Worker.RegisterHandlers(a.Generator.Handler())

	return a, nil
}

// API returns the endpoint set with db and redis probes attached.
func (a *App) API() *handler.API {
	return handler.NewAPI(a.Auth, a.Files).
		WithProbe("db", mongox.Healthcheck(a.DB)).
		WithProbe("redis", redis.Healthcheck(a.Redis))
}

// Router returns the HTTP handler serving the API and /metrics.
func (a *App) Router() http.Handler {
	return handler.NewRouter(a.API(),
		handler.WithLogger(a.Logger),
		handler.WithMetrics(a.Metrics),
		handler.WithMaxUploadSize(a.Config.MaxUploadSize),
		handler.WithRateLimiter(a.Limiter),
	)
}

// Close releases the MongoDB and Redis connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect mongo: %w", err))
		}
	}
	return errors.Join(errs...)
}
