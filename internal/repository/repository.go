package repository

import (
	"playstore-predictor/config"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/queue"

	"gorm.io/gorm"
)

type Repository struct {
	PredictionHistoryRepo PredictionHistoryRepository
	PredictionAPIRepo     PredictionAPIRepository
	PredictionQueueRepo   PredictionQueueRepository
}

// NewRepository wires the repositories a process needs. db and q may be nil
// for processes that do not touch the store or the upload queue.
func NewRepository(cfg *config.Config, db *gorm.DB, q queue.Queue, log *logger.Logger) *Repository {
	repo := &Repository{
		PredictionAPIRepo: NewPredictionAPIRepository(cfg, log),
	}
	if db != nil {
		repo.PredictionHistoryRepo = NewPredictionHistoryRepository(db)
	}
	if q != nil {
		repo.PredictionQueueRepo = NewPredictionQueueRepository(q)
	}
	return repo
}
