package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a unit of background work.
//
// RetryCount counts failed attempts. Once it reaches MaxRetries the job is
// marked failed and moved to the dead letter store.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Queue       string     `json:"queue"`
	Name        string     `json:"name"`
	Payload     []byte     `json:"payload,omitempty"`
	Status      JobStatus  `json:"status"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID `json:"locked_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Exhausted reports whether the job has no attempts left.
func (j *Job) Exhausted() bool {
	return j.RetryCount >= j.MaxRetries
}

// DeadJob is a job that exhausted its retries, kept for inspection.
type DeadJob struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	Queue      string    `json:"queue"`
	Name       string    `json:"name"`
	Payload    []byte    `json:"payload,omitempty"`
	Error      string    `json:"error"`
	RetryCount int       `json:"retry_count"`
	FailedAt   time.Time `json:"failed_at"`
}

// BackoffFunc returns how long to wait before the given retry attempt.
type BackoffFunc func(retry int) time.Duration

// LinearBackoff waits retry*step before each retry: step, 2*step, 3*step...
func LinearBackoff(step time.Duration) BackoffFunc {
	return func(retry int) time.Duration {
		return time.Duration(retry) * step
	}
}

// DefaultBackoff is LinearBackoff(30 * time.Second).
var DefaultBackoff = LinearBackoff(30 * time.Second)
