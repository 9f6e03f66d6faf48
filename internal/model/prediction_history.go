package model

import (
	"playstore-predictor/internal/dto"
	"strconv"
	"strings"
	"time"
)

// PredictionHistory is one persisted prediction. Column names follow the
// hosted table, which stores app_size as size, app_type as type and the price
// as text.
type PredictionHistory struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Category          string    `gorm:"column:category;type:text"`
	Size              string    `gorm:"column:size;type:text"`
	Type              string    `gorm:"column:type;type:text"`
	Price             *string   `gorm:"column:price;type:text"`
	ContentRating     string    `gorm:"column:content_rating;type:text"`
	Genres            string    `gorm:"column:genres;type:text"`
	PredictedInstalls string    `gorm:"column:predicted_installs;type:text"`
	PredictedReviews  string    `gorm:"column:predicted_reviews;type:text"`
	PredictedRating   string    `gorm:"column:predicted_rating;type:text"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PredictionHistory) TableName() string {
	return "prediction_history"
}

// ParsePrice coerces the stored text price into a number. Missing or
// unparsable values count as 0.
func ParsePrice(raw *string) float64 {
	if raw == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func (p PredictionHistory) ToResult() dto.PredictionResult {
	id := p.ID
	result := dto.PredictionResult{
		PredictionInput: dto.PredictionInput{
			Category:      p.Category,
			Genres:        p.Genres,
			AppSize:       p.Size,
			AppType:       dto.AppType(p.Type),
			Price:         ParsePrice(p.Price),
			ContentRating: dto.ContentRating(p.ContentRating),
		},
		ID:                &id,
		PredictedInstalls: p.PredictedInstalls,
		PredictedReviews:  p.PredictedReviews,
		PredictedRating:   p.PredictedRating,
	}
	if !p.CreatedAt.IsZero() {
		createdAt := p.CreatedAt
		result.CreatedAt = &createdAt
	}
	return result
}

// ToResults maps rows in order.
func ToResults(rows []PredictionHistory) []dto.PredictionResult {
	out := make([]dto.PredictionResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToResult())
	}
	return out
}

// NewPredictionHistory builds the row the uploader inserts for a prediction.
func NewPredictionHistory(result dto.PredictionResult) *PredictionHistory {
	price := FormatPrice(result.Price)
	return &PredictionHistory{
		Category:          result.Category,
		Size:              result.AppSize,
		Type:              string(result.AppType),
		Price:             &price,
		ContentRating:     string(result.ContentRating),
		Genres:            result.Genres,
		PredictedInstalls: result.PredictedInstalls,
		PredictedReviews:  result.PredictedReviews,
		PredictedRating:   result.PredictedRating,
	}
}
