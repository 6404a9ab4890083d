package app

import (
	"github.com/dmitrymomot/filevault/pkg/config"
	"github.com/dmitrymomot/filevault/pkg/file"
	"github.com/dmitrymomot/filevault/pkg/httpserver"
	"github.com/dmitrymomot/filevault/pkg/mongo"
	"github.com/dmitrymomot/filevault/pkg/queue"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/redis"
	"github.com/dmitrymomot/filevault/svc/auth"
)

// Config aggregates every component's settings. Nested configs read their
// own variables.
type Config struct {
	Env           string `env:"APP_ENV" envDefault:"development"`
	Name          string `env:"APP_NAME" envDefault:"files_manager"`
	LogLevel      string `env:"LOG_LEVEL"`
	RunWorker     bool   `env:"RUN_WORKER" envDefault:"true"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`

	HTTP      httpserver.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Storage   file.Config
	Queue     queue.Config
	Auth      auth.Config
	RateLimit ratelimiter.Config
}

// LoadConfig reads .env files when present, then the environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
