package queue

import "time"

// Config holds worker and retry settings.
type Config struct {
	Queue        string        `env:"QUEUE_NAME" envDefault:"default"`
	PollInterval time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"2s"`
	LockTimeout  time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"5m"`
	Concurrency  int           `env:"QUEUE_CONCURRENCY" envDefault:"5"`
	RetryBackoff time.Duration `env:"QUEUE_RETRY_BACKOFF" envDefault:"30s"`
}

// WorkerOptions translates cfg into worker options.
func (cfg Config) WorkerOptions() []WorkerOption {
	return []WorkerOption{
		WithQueues(cfg.Queue),
		WithPollInterval(cfg.PollInterval),
		WithLockTimeout(cfg.LockTimeout),
		WithConcurrency(cfg.Concurrency),
	}
}

// Backoff returns the retry schedule for cfg.RetryBackoff.
func (cfg Config) Backoff() BackoffFunc {
	return LinearBackoff(cfg.RetryBackoff)
}
