package repository

import (
	"context"
	"playstore-predictor/internal/dto"
)

// ChangeFeed hands out subscriptions to change notifications on the
// prediction_history table. Every insert, update and delete is delivered.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is owned by exactly one subscriber. Events are delivered in
// order until Close, which is idempotent and closes C.
type Subscription interface {
	C() <-chan dto.ChangeEvent
	Close() error
}
