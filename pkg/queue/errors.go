package queue

import "errors"

var (
	ErrRepositoryNil     = errors.New("repository cannot be nil")
	ErrPayloadNil        = errors.New("payload cannot be nil")
	ErrPayloadMarshal    = errors.New("failed to marshal payload to JSON")
	ErrPayloadUnmarshal  = errors.New("failed to unmarshal job payload")
	ErrHandlerNotFound   = errors.New("no handler registered for job")
	ErrNoHandlers        = errors.New("no job handlers registered")
	ErrNoJobToClaim      = errors.New("no job to claim")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobExists         = errors.New("job already exists")
	ErrJobNotProcessing  = errors.New("job is not in processing state")
	ErrWorkerStarted     = errors.New("worker already started")
	ErrWorkerNotStarted  = errors.New("worker not started")
	ErrFailedToMoveToDLQ = errors.New("failed to move job to dead letter queue")
	ErrLockExpired       = errors.New("job lock expired")
)
