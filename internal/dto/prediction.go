package dto

import "time"

type AppType string

const (
	AppTypeFree AppType = "Free"
	AppTypePaid AppType = "Paid"
)

type ContentRating string

const (
	ContentRatingEveryone ContentRating = "Everyone"
	ContentRatingTeen     ContentRating = "Teen"
	ContentRatingMature   ContentRating = "Mature 17+"
	ContentRatingAdults   ContentRating = "Adults only 18+"
)

func GetContentRatingList() []ContentRating {
	return []ContentRating{
		ContentRatingEveryone,
		ContentRatingTeen,
		ContentRatingMature,
		ContentRatingAdults,
	}
}

// PredictionInput is the app metadata sent to the prediction service. Genres
// are semicolon delimited by convention and are not split.
type PredictionInput struct {
	Category      string        `json:"category" validate:"required"`
	Genres        string        `json:"genres" validate:"required"`
	AppSize       string        `json:"app_size" validate:"required"`
	AppType       AppType       `json:"app_type" validate:"required,oneof=Free Paid"`
	Price         float64       `json:"price" validate:"gte=0"`
	ContentRating ContentRating `json:"content_rating" validate:"required,oneof='Everyone' 'Teen' 'Mature 17+' 'Adults only 18+'"`
}

// NewDraft returns the empty form state.
func NewDraft() PredictionInput {
	return PredictionInput{
		AppType:       AppTypeFree,
		Price:         0,
		ContentRating: ContentRatingEveryone,
	}
}

type PredictionResult struct {
	PredictionInput
	ID                *int64     `json:"id,omitempty"`
	PredictedInstalls string     `json:"predicted_installs"`
	PredictedReviews  string     `json:"predicted_reviews"`
	PredictedRating   string     `json:"predicted_rating"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// PredictionErrorResponse is the body of a non-2xx /predict response.
type PredictionErrorResponse struct {
	Error string `json:"error"`
}
