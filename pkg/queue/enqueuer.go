package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository persists new jobs.
type EnqueuerRepository interface {
	CreateJob(ctx context.Context, job *Job) error
}

// Enqueuer adds jobs to a queue.
type Enqueuer struct {
	repo         EnqueuerRepository
	defaultQueue string
	maxRetries   int
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithDefaultQueue sets the queue used when Enqueue gets no WithQueue.
func WithDefaultQueue(queue string) EnqueuerOption {
	return func(e *Enqueuer) {
		if queue != "" {
			e.defaultQueue = queue
		}
	}
}

// WithDefaultMaxRetries sets the retry cap used when Enqueue gets no WithMaxRetries.
func WithDefaultMaxRetries(n int) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// NewEnqueuer returns an Enqueuer writing to repo.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	e := &Enqueuer{
		repo:         repo,
		defaultQueue: DefaultQueueName,
		maxRetries:   3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	queue      string
	name       string
	maxRetries int
	delay      time.Duration
}

// WithQueue routes the job to queue.
func WithQueue(queue string) EnqueueOption {
	return func(o *enqueueOptions) {
		if queue != "" {
			o.queue = queue
		}
	}
}

// WithJobName overrides the name derived from the payload type.
func WithJobName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxRetries caps the number of attempts (1-10).
func WithMaxRetries(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		if n > 0 && n <= 10 {
			o.maxRetries = n
		}
	}
}

// WithDelay postpones the first attempt.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// Enqueue serializes payload to JSON and stores it as a pending job.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (*Job, error) {
	if payload == nil {
		return nil, ErrPayloadNil
	}

	o := &enqueueOptions{
		queue:      e.defaultQueue,
		name:       jobName(payload),
		maxRetries: e.maxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrPayloadMarshal, err)
	}

	now := time.Now()
	job := &Job{
		ID:          uuid.New(),
		Queue:       o.queue,
		Name:        o.name,
		Payload:     data,
		Status:      JobStatusPending,
		MaxRetries:  o.maxRetries,
		ScheduledAt: now.Add(o.delay),
		CreatedAt:   now,
	}

	if err := e.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job %q in queue %q: %w", job.Name, job.Queue, err)
	}
	return job, nil
}
