package queue

import (
	"context"
	"errors"
)

// ErrEmpty is returned by Pop when no message arrived within the wait window.
var ErrEmpty = errors.New("queue: empty")

// Queue is a FIFO of opaque message bodies.
type Queue interface {
	Push(ctx context.Context, body []byte) error
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}

// Memory is an in-process Queue backed by a buffered channel, used when the
// predictor runs its uploader in the same process.
type Memory struct {
	ch chan []byte
}

func NewMemory(size int) *Memory {
	return &Memory{ch: make(chan []byte, size)}
}

func (m *Memory) Push(ctx context.Context, body []byte) error {
	select {
	case m.ch <- body:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Pop(ctx context.Context) ([]byte, error) {
	select {
	case body := <-m.ch:
		return body, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Memory) Close() error { return nil }
