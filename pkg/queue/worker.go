package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// repoTimeout bounds bookkeeping calls made after a handler returns.
const repoTimeout = 10 * time.Second

// WorkerRepository is the storage side of a Worker.
type WorkerRepository interface {
	// ClaimJob atomically locks the next due job in one of queues.
	// It returns ErrNoJobToClaim when nothing is due.
	ClaimJob(ctx context.Context, workerID uuid.UUID, queues []string, lock time.Duration) (*Job, error)
	// CompleteJob marks a processing job completed.
	CompleteJob(ctx context.Context, id uuid.UUID) error
	// FailJob records a failed attempt and returns the updated job. The job
	// goes back to pending with backoff, or to failed once exhausted.
	FailJob(ctx context.Context, id uuid.UUID, reason string) (*Job, error)
	// MoveToDLQ moves a job to dead letter storage.
	MoveToDLQ(ctx context.Context, id uuid.UUID) error
}

// Observer is notified after every handled job. err is nil on success.
type Observer func(job *Job, err error, elapsed time.Duration)

// Worker polls a repository and runs jobs on a bounded pool of goroutines.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	mu       sync.RWMutex

	id           uuid.UUID
	queues       []string
	pollInterval time.Duration
	lockTimeout  time.Duration
	sem          chan struct{}
	wg           sync.WaitGroup
	running      atomic.Bool

	logger    *slog.Logger
	observers []Observer
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithQueues sets the queues the worker claims from.
func WithQueues(queues ...string) WorkerOption {
	return func(w *Worker) {
		if len(queues) > 0 {
			w.queues = queues
		}
	}
}

// WithPollInterval sets how often the worker looks for due jobs while idle.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithLockTimeout sets the job lock duration, which is also the handler deadline.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.lockTimeout = d
		}
	}
}

// WithConcurrency caps the number of jobs processed at once.
func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.sem = make(chan struct{}, n)
		}
	}
}

// WithWorkerLogger sets the worker logger.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every handled job.
func WithObserver(o Observer) WorkerOption {
	return func(w *Worker) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

// NewWorker returns a Worker reading from repo.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	w := &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		id:           uuid.New(),
		queues:       []string{DefaultQueueName},
		pollInterval: 2 * time.Second,
		lockTimeout:  5 * time.Minute,
		sem:          make(chan struct{}, 5),
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.Component("queue.worker"), slog.String("worker_id", w.id.String()))
	return w, nil
}

// RegisterHandlers adds handlers, replacing any with the same name.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Run returns a function suitable for errgroup. It processes jobs until ctx
// is canceled, then waits for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		w.mu.RLock()
		n := len(w.handlers)
		w.mu.RUnlock()
		if n == 0 {
			return ErrNoHandlers
		}
		if !w.running.CompareAndSwap(false, true) {
			return ErrWorkerStarted
		}
		defer w.running.Store(false)

		w.logger.Info("worker started",
			slog.Any("queues", w.queues),
			slog.Int("concurrency", cap(w.sem)))

		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		for {
			w.fill(ctx)
			select {
			case <-ctx.Done():
				w.logger.Info("worker stopping, waiting for active jobs")
				w.wg.Wait()
				w.logger.Info("worker stopped")
				return nil
			case <-ticker.C:
			}
		}
	}
}

// fill claims jobs until the pool is full or nothing is due.
func (w *Worker) fill(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		job, err := w.repo.ClaimJob(ctx, w.id, w.queues, w.lockTimeout)
		if err != nil || job == nil {
			<-w.sem
			if err != nil && !errors.Is(err, ErrNoJobToClaim) && ctx.Err() == nil {
				w.logger.Error("failed to claim job", logger.Error(err))
			}
			return
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			if err := w.process(job); err != nil && !errors.Is(err, ErrHandlerNotFound) {
				w.logger.Error("job bookkeeping failed", logger.JobID(job.ID), logger.Error(err))
			}
		}()
	}
}

func (w *Worker) process(job *Job) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in handler: %v", r)
			w.logger.Error("handler panicked",
				logger.JobID(job.ID),
				logger.JobName(job.Name),
				slog.Any("panic", r))
			retErr = w.fail(job, err, time.Since(start))
		}
	}()

	w.mu.RLock()
	h, ok := w.handlers[job.Name]
	w.mu.RUnlock()
	if !ok {
		return w.missingHandler(job)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	if err := h.Handle(ctx, job.Payload); err != nil {
		return w.fail(job, err, time.Since(start))
	}
	return w.complete(job, time.Since(start))
}

// missingHandler dead-letters the job right away since retries cannot help.
func (w *Worker) missingHandler(job *Job) error {
	w.logger.Error("no handler registered for job", logger.JobID(job.ID), logger.JobName(job.Name))

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	if _, err := w.repo.FailJob(ctx, job.ID, ErrHandlerNotFound.Error()+": "+job.Name); err != nil {
		return fmt.Errorf("failed to mark job %s as failed: %w", job.ID, err)
	}
	if err := w.repo.MoveToDLQ(ctx, job.ID); err != nil {
		return errors.Join(ErrFailedToMoveToDLQ, err)
	}
	w.notify(job, ErrHandlerNotFound, 0)
	return ErrHandlerNotFound
}

func (w *Worker) fail(job *Job, cause error, elapsed time.Duration) error {
	w.notify(job, cause, elapsed)

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	updated, err := w.repo.FailJob(ctx, job.ID, cause.Error())
	if err != nil {
		return fmt.Errorf("failed to mark job %s as failed: %w", job.ID, err)
	}

	w.logger.Warn("job failed",
		logger.JobID(job.ID),
		logger.JobName(job.Name),
		logger.RetryCount(updated.RetryCount),
		slog.Int("max_retries", updated.MaxRetries),
		logger.Duration(elapsed),
		logger.Error(cause))

	if !updated.Exhausted() {
		return nil
	}
	if err := w.repo.MoveToDLQ(ctx, job.ID); err != nil {
		return errors.Join(ErrFailedToMoveToDLQ, err)
	}
	w.logger.Error("job moved to dead letter queue", logger.JobID(job.ID), logger.JobName(job.Name))
	return nil
}

func (w *Worker) complete(job *Job, elapsed time.Duration) error {
	w.notify(job, nil, elapsed)

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	if err := w.repo.CompleteJob(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
	}
	w.logger.Debug("job completed", logger.JobID(job.ID), logger.JobName(job.Name), logger.Duration(elapsed))
	return nil
}

func (w *Worker) notify(job *Job, err error, elapsed time.Duration) {
	for _, o := range w.observers {
		o(job, err, elapsed)
	}
}
