package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process job repository for tests and local runs.
// Expired locks are reclaimed on the next ClaimJob and count as a failed
// attempt.
type MemoryStorage struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*Job
	order   []uuid.UUID
	dlq     []DeadJob
	backoff BackoffFunc
	now     func() time.Time
}

// MemoryOption configures a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithMemoryBackoff sets the retry backoff.
func WithMemoryBackoff(b BackoffFunc) MemoryOption {
	return func(ms *MemoryStorage) {
		if b != nil {
			ms.backoff = b
		}
	}
}

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(ms *MemoryStorage) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	ms := &MemoryStorage{
		jobs:    make(map[uuid.UUID]*Job),
		backoff: DefaultBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func (ms *MemoryStorage) CreateJob(_ context.Context, job *Job) error {
	if job == nil {
		return ErrPayloadNil
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.jobs[job.ID]; ok {
		return ErrJobExists
	}
	cp := *job
	ms.jobs[job.ID] = &cp
	ms.order = append(ms.order, job.ID)
	return nil
}

func (ms *MemoryStorage) ClaimJob(_ context.Context, workerID uuid.UUID, queues []string, lock time.Duration) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for {
		stale := ms.earliest(queues, func(j *Job) bool {
			return j.Status == JobStatusProcessing && j.LockedUntil != nil && j.LockedUntil.Before(now)
		})
		if stale == nil {
			break
		}
		stale.RetryCount++
		stale.Error = ErrLockExpired.Error()
		if stale.Exhausted() {
			stale.Status = JobStatusFailed
			stale.LockedUntil = nil
			stale.LockedBy = nil
			ms.deadLetter(stale)
			continue
		}
		return ms.lock(stale, workerID, now.Add(lock)), nil
	}

	due := ms.earliest(queues, func(j *Job) bool {
		return j.Status == JobStatusPending && !j.ScheduledAt.After(now)
	})
	if due == nil {
		return nil, ErrNoJobToClaim
	}
	return ms.lock(due, workerID, now.Add(lock)), nil
}

// earliest returns the matching job with the lowest ScheduledAt.
func (ms *MemoryStorage) earliest(queues []string, match func(*Job) bool) *Job {
	var best *Job
	for _, id := range ms.order {
		job := ms.jobs[id]
		if !slices.Contains(queues, job.Queue) || !match(job) {
			continue
		}
		if best == nil || job.ScheduledAt.Before(best.ScheduledAt) {
			best = job
		}
	}
	return best
}

func (ms *MemoryStorage) lock(job *Job, workerID uuid.UUID, until time.Time) *Job {
	job.Status = JobStatusProcessing
	job.LockedUntil = &until
	job.LockedBy = &workerID
	cp := *job
	return &cp
}

func (ms *MemoryStorage) CompleteJob(_ context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, err := ms.processing(id)
	if err != nil {
		return err
	}
	now := ms.now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil
	return nil
}

func (ms *MemoryStorage) FailJob(_ context.Context, id uuid.UUID, reason string) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, err := ms.processing(id)
	if err != nil {
		return nil, err
	}
	job.RetryCount++
	job.Error = reason
	job.LockedUntil = nil
	job.LockedBy = nil
	if job.Exhausted() {
		job.Status = JobStatusFailed
	} else {
		job.Status = JobStatusPending
		job.ScheduledAt = ms.now().Add(ms.backoff(job.RetryCount))
	}
	cp := *job
	return &cp, nil
}

func (ms *MemoryStorage) MoveToDLQ(_ context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, ok := ms.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	ms.deadLetter(job)
	return nil
}

func (ms *MemoryStorage) deadLetter(job *Job) {
	ms.dlq = append(ms.dlq, DeadJob{
		ID:         uuid.New(),
		JobID:      job.ID,
		Queue:      job.Queue,
		Name:       job.Name,
		Payload:    job.Payload,
		Error:      job.Error,
		RetryCount: job.RetryCount,
		FailedAt:   ms.now(),
	})
	delete(ms.jobs, job.ID)
	ms.order = slices.DeleteFunc(ms.order, func(v uuid.UUID) bool { return v == job.ID })
}

// Job returns a copy of the stored job.
func (ms *MemoryStorage) Job(id uuid.UUID) (*Job, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	job, ok := ms.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// Jobs returns copies of all live jobs in insertion order.
func (ms *MemoryStorage) Jobs() []Job {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]Job, 0, len(ms.order))
	for _, id := range ms.order {
		out = append(out, *ms.jobs[id])
	}
	return out
}

// DeadJobs returns the dead letter entries.
func (ms *MemoryStorage) DeadJobs() []DeadJob {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return slices.Clone(ms.dlq)
}

func (ms *MemoryStorage) processing(id uuid.UUID) (*Job, error) {
	job, ok := ms.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status != JobStatusProcessing {
		return nil, ErrJobNotProcessing
	}
	return job, nil
}
