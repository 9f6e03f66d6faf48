package service

import (
	"playstore-predictor/config"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

type Service struct {
	ViewRegistry     ViewRegistry
	PredictionEngine PredictionEngine
	Uploader         Uploader
}

// NewService builds the services the wired repositories allow. A process
// without a store gets no ViewRegistry or Uploader, and one without a queue
// gets no PredictionEngine or Uploader.
func NewService(
	cfg *config.Config,
	log *logger.Logger,
	validator *goValidator.Validate,
	repo *repository.Repository,
	feed repository.ChangeFeed,
) *Service {
	svc := &Service{}
	if repo.PredictionHistoryRepo != nil && feed != nil {
		svc.ViewRegistry = NewViewRegistry(cfg, log, validator, repo.PredictionHistoryRepo, repo.PredictionAPIRepo, feed)
	}
	if repo.PredictionQueueRepo != nil {
		svc.PredictionEngine = NewPredictionEngine(log, repo.PredictionQueueRepo)
		if repo.PredictionHistoryRepo != nil {
			svc.Uploader = NewUploader(log, repo.PredictionQueueRepo, repo.PredictionHistoryRepo)
		}
	}
	return svc
}
