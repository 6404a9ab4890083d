package queue

import (
	"context"
	"encoding/json"
	"errors"
)

// Handler processes jobs of a single name.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// JobHandlerFunc handles a decoded payload.
type JobHandlerFunc[T any] func(ctx context.Context, payload T) error

// NewJobHandler returns a Handler that decodes payloads into T. The job
// name is derived from T the same way Enqueue derives it.
func NewJobHandler[T any](fn JobHandlerFunc[T]) Handler {
	var zero T
	return &jobHandler[T]{name: jobName(zero), fn: fn}
}

type jobHandler[T any] struct {
	name string
	fn   JobHandlerFunc[T]
}

func (h *jobHandler[T]) Name() string { return h.name }

func (h *jobHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return errors.Join(ErrPayloadUnmarshal, err)
	}
	return h.fn(ctx, v)
}
