package service

import (
	"context"
	"errors"
	"fmt"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/model"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/common"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/queue"
	"time"
)

// Uploader drains the upload queue into prediction_history.
type Uploader interface {
	Run(ctx context.Context) error
	Handle(ctx context.Context, msg *dto.QueueMessage) error
}

type uploader struct {
	log         *logger.Logger
	queueRepo   repository.PredictionQueueRepository
	historyRepo repository.PredictionHistoryRepository
	retryDelay  time.Duration
}

func NewUploader(log *logger.Logger, queueRepo repository.PredictionQueueRepository, historyRepo repository.PredictionHistoryRepository) Uploader {
	return &uploader{
		log:         log,
		queueRepo:   queueRepo,
		historyRepo: historyRepo,
		retryDelay:  time.Second,
	}
}

// Run consumes messages until ctx is cancelled. A message that fails is
// logged and dropped.
func (u *uploader) Run(ctx context.Context) error {
	u.log.InfoContext(ctx, "Uploader service is listening for messages")
	for {
		msg, err := u.queueRepo.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				u.log.InfoContext(ctx, "Uploader service stopped")
				return nil
			}
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if errors.Is(err, repository.ErrMalformedMessage) {
				u.log.WarnContext(ctx, "Dropping malformed message", logger.ErrorField(err))
				continue
			}
			u.log.ErrorContext(ctx, "Failed to read from upload queue", logger.ErrorField(err))
			if err := sleepContext(ctx, u.retryDelay); err != nil {
				return nil
			}
			continue
		}

		if err := u.Handle(ctx, msg); err != nil {
			u.log.ErrorContext(ctx, "Error processing message",
				logger.StringField("action", msg.Action),
				logger.ErrorField(err))
		}
	}
}

func (u *uploader) Handle(ctx context.Context, msg *dto.QueueMessage) error {
	switch msg.Action {
	case common.ActionSavePrediction:
		if msg.Data == nil {
			return fmt.Errorf("invalid data format for %s action", msg.Action)
		}
		row := model.NewPredictionHistory(*msg.Data)
		if err := u.historyRepo.Create(ctx, row); err != nil {
			return fmt.Errorf("failed to save prediction: %w", err)
		}
		u.log.InfoContext(ctx, "Inserted prediction record",
			logger.Int64Field("id", row.ID),
			logger.Field("created_at", row.CreatedAt))
		return nil
	default:
		u.log.WarnContext(ctx, "Unknown action received", logger.StringField("action", msg.Action))
		return nil
	}
}
