package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/common"
	"playstore-predictor/pkg/logger"
)

// PredictionEngine answers /predict. The figures are placeholders until a
// trained model is plugged in; persistence happens asynchronously through the
// upload queue, so results carry no row id.
type PredictionEngine interface {
	Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error)
}

type predictionEngine struct {
	log       *logger.Logger
	queueRepo repository.PredictionQueueRepository
	randIntN  func(n int) int
	randFloat func() float64
}

func NewPredictionEngine(log *logger.Logger, queueRepo repository.PredictionQueueRepository) PredictionEngine {
	return &predictionEngine{
		log:       log,
		queueRepo: queueRepo,
		randIntN:  rand.IntN,
		randFloat: rand.Float64,
	}
}

func (e *predictionEngine) Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error) {
	e.log.InfoContext(ctx, "Received prediction request",
		logger.StringField("category", input.Category),
		logger.StringField("app_type", string(input.AppType)))

	result := &dto.PredictionResult{
		PredictionInput:   input,
		PredictedInstalls: fmt.Sprintf("~%d", e.between(1000, 5000000)),
		PredictedReviews:  fmt.Sprintf("~%d", e.between(100, 100000)),
		PredictedRating:   fmt.Sprintf("%.1f / 5.0", e.randFloat()*4+1),
	}

	msg := dto.QueueMessage{Action: common.ActionSavePrediction, Data: result}
	if err := e.queueRepo.Enqueue(ctx, msg); err != nil {
		e.log.ErrorContext(ctx, "Failed to publish prediction to upload queue", logger.ErrorField(err))
	} else {
		e.log.InfoContext(ctx, "Sent message to upload queue", logger.StringField("action", msg.Action))
	}

	return result, nil
}

// between returns a value in [lo, hi].
func (e *predictionEngine) between(lo, hi int) int {
	return lo + e.randIntN(hi-lo+1)
}
