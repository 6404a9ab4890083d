package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/filevault/pkg/binder"
	"github.com/dmitrymomot/filevault/pkg/clientip"
	"github.com/dmitrymomot/filevault/pkg/httpserver"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/metrics"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/requestid"
)

// DefaultMaxUploadSize bounds POST /files bodies. Content is base64 encoded,
// so the stored file can be about three quarters of this.
const DefaultMaxUploadSize = 32 << 20

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	limiter       *ratelimiter.Bucket
	maxUploadSize int64
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables request metrics and mounts /metrics.
func WithMetrics(m *metrics.Metrics) RouterOption {
	return func(c *routerConfig) {
		c.metrics = m
	}
}

// WithRateLimiter throttles POST /users and GET /connect per client IP.
func WithRateLimiter(b *ratelimiter.Bucket) RouterOption {
	return func(c *routerConfig) {
		c.limiter = b
	}
}

// WithMaxUploadSize overrides DefaultMaxUploadSize.
func WithMaxUploadSize(n int64) RouterOption {
	return func(c *routerConfig) {
		if n > 0 {
			c.maxUploadSize = n
		}
	}
}

// NewRouter mounts every endpoint of api.
func NewRouter(api *API, opts ...RouterOption) http.Handler {
	cfg := &routerConfig{logger: logger.Discard(), maxUploadSize: DefaultMaxUploadSize}
	for _, opt := range opts {
		opt(cfg)
	}

	onError := NewErrorHandler(cfg.logger)
	errs := WithErrorHandler(onError)
	path := binder.Path(chi.URLParam)
	query := binder.Query()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware,
		RequestLogger(cfg.logger),
	)
	if cfg.metrics != nil {
		r.Use(cfg.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.metrics.Handler())
	}

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(cfg.logger, api.Probes()))

	r.Get("/status", Wrap[NoParams](api.Status, errs))
	r.Get("/stats", Wrap[NoParams](api.Stats, errs))

	r.Group(func(r chi.Router) {
		if cfg.limiter != nil {
			r.Use(credentialLimit(cfg.limiter, onError))
		}
		r.Post("/users", Wrap[RegisterRequest](api.Register, errs, WithBinders(binder.JSON())))
		r.Get("/connect", Wrap[NoParams](api.Connect, errs))
	})
	r.Get("/users/me", Wrap[NoParams](api.Me, errs))
	r.Get("/disconnect", Wrap[NoParams](api.Disconnect, errs))

	r.Route("/files", func(r chi.Router) {
		r.Post("/", Wrap[CreateFileRequest](api.CreateFile, errs, WithBinders(binder.JSON(binder.WithMaxSize(cfg.maxUploadSize)))))
		r.Get("/", Wrap[ListRequest](api.ListFiles, errs, WithBinders(query)))
		r.Get("/{id}", Wrap[FileRequest](api.GetFile, errs, WithBinders(path)))
		r.Put("/{id}/publish", Wrap[FileRequest](api.Publish, errs, WithBinders(path)))
		r.Put("/{id}/unpublish", Wrap[FileRequest](api.Unpublish, errs, WithBinders(path)))
		r.Get("/{id}/data", Wrap[DataRequest](api.FileData, errs, WithBinders(path, query)))
		r.Get("/{id}/thumbnails", Wrap[FileRequest](api.Thumbnails, errs, WithBinders(path)))
	})

	return r
}

// credentialLimit keys the bucket by client IP and answers denials and store
// failures through onError.
func credentialLimit(b *ratelimiter.Bucket, onError ErrorHandler) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(b,
		func(r *http.Request) string {
			if ip := clientip.FromContext(r.Context()); ip != "" {
				return "credentials:" + ip
			}
			return ""
		},
		ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
			onError(NewContext(w, r), ErrTooManyRequests)
		}),
		ratelimiter.WithStoreErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			onError(NewContext(w, r), err)
		}),
	)
}
