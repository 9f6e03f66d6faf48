package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"playstore-predictor/internal/dto"
	"playstore-predictor/pkg/queue"
)

// ErrMalformedMessage marks a dequeued body that is not a queue message. The
// body has been consumed.
var ErrMalformedMessage = errors.New("malformed queue message")

type PredictionQueueRepository interface {
	Enqueue(ctx context.Context, msg dto.QueueMessage) error
	// Dequeue returns queue.ErrEmpty when nothing arrived within the wait window.
	Dequeue(ctx context.Context) (*dto.QueueMessage, error)
}

type predictionQueueRepository struct {
	q queue.Queue
}

func NewPredictionQueueRepository(q queue.Queue) PredictionQueueRepository {
	return &predictionQueueRepository{q: q}
}

func (r *predictionQueueRepository) Enqueue(ctx context.Context, msg dto.QueueMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}
	return r.q.Push(ctx, body)
}

func (r *predictionQueueRepository) Dequeue(ctx context.Context) (*dto.QueueMessage, error) {
	body, err := r.q.Pop(ctx)
	if err != nil {
		return nil, err
	}
	var msg dto.QueueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &msg, nil
}
