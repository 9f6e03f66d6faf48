package repository

import (
	"context"
	"errors"
	"playstore-predictor/internal/model"

	"gorm.io/gorm"
)

type PredictionHistoryRepository interface {
	ListRecent(ctx context.Context, limit int) ([]model.PredictionHistory, error)
	FindByID(ctx context.Context, id int64) (*model.PredictionHistory, error)
	Create(ctx context.Context, row *model.PredictionHistory) error
}

type predictionHistoryRepository struct {
	db *gorm.DB
}

func NewPredictionHistoryRepository(db *gorm.DB) PredictionHistoryRepository {
	return &predictionHistoryRepository{db: db}
}

// ListRecent returns at most limit rows, newest first. Rows sharing a
// created_at are ordered by id so repeated reads are stable.
func (r *predictionHistoryRepository) ListRecent(ctx context.Context, limit int) ([]model.PredictionHistory, error) {
	var rows []model.PredictionHistory
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID returns nil without error when the row does not exist yet.
func (r *predictionHistoryRepository) FindByID(ctx context.Context, id int64) (*model.PredictionHistory, error) {
	var row model.PredictionHistory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *predictionHistoryRepository) Create(ctx context.Context, row *model.PredictionHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}
