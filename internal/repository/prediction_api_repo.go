package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"playstore-predictor/config"
	"playstore-predictor/internal/dto"
	"playstore-predictor/pkg/httpclient"
	"playstore-predictor/pkg/logger"
	"strings"

	"golang.org/x/time/rate"
)

// ErrPredictionService marks every failure of the remote prediction call.
var ErrPredictionService = errors.New("prediction service error")

// PredictionServiceError is a non-2xx answer from the prediction service.
// Error returns the message the service sent, or a generic one carrying the
// status code.
type PredictionServiceError struct {
	StatusCode int
	Message    string
}

func (e *PredictionServiceError) Error() string {
	return e.Message
}

func (e *PredictionServiceError) Unwrap() error {
	return ErrPredictionService
}

type PredictionAPIRepository interface {
	Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error)
	Ping(ctx context.Context) error
}

type predictionAPIRepository struct {
	httpClient     httpclient.HTTPClient
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewPredictionAPIRepository(cfg *config.Config, log *logger.Logger) PredictionAPIRepository {
	return newPredictionAPIRepository(
		httpclient.New(cfg.Predictor.BaseURL, cfg.Predictor.Timeout),
		cfg.Predictor.MaxRequestPerSecond,
		log,
	)
}

func newPredictionAPIRepository(client httpclient.HTTPClient, maxRequestPerSecond int, log *logger.Logger) *predictionAPIRepository {
	limit := rate.Inf
	burst := 1
	if maxRequestPerSecond > 0 {
		limit = rate.Limit(maxRequestPerSecond)
		burst = maxRequestPerSecond
	}
	return &predictionAPIRepository{
		httpClient:     client,
		logger:         log,
		requestLimiter: rate.NewLimiter(limit, burst),
	}
}

func (r *predictionAPIRepository) Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionService, err)
	}

	var result dto.PredictionResult
	resp, err := r.httpClient.Post(ctx, "/predict", input, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictionService, err)
	}

	if !resp.IsSuccess() {
		r.logger.ErrorContext(ctx, "Prediction service returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, &PredictionServiceError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	return &result, nil
}

func errorMessage(resp *httpclient.BaseResponse) string {
	var body dto.PredictionErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode)
}

func (r *predictionAPIRepository) Ping(ctx context.Context) error {
	resp, err := r.httpClient.Get(ctx, "/health", nil, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictionService, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &PredictionServiceError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	return nil
}
