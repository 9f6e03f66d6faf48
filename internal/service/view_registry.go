package service

import (
	"context"
	"fmt"
	"playstore-predictor/config"
	"playstore-predictor/internal/repository"
	"playstore-predictor/pkg/cache"
	"playstore-predictor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ViewRegistry tracks the mounted prediction views of connected pages. A view
// that is not touched for the idle expiration is unmounted.
type ViewRegistry interface {
	Open(ctx context.Context) (*PredictionView, error)
	Get(id string) (*PredictionView, error)
	Close(id string) error
	CloseAll()
	Len() int
}

type viewRegistry struct {
	cache         cache.Cache
	log           *logger.Logger
	opts          PredictionViewOptions
	validator     *goValidator.Validate
	historyRepo   repository.PredictionHistoryRepository
	predictionAPI repository.PredictionAPIRepository
	feed          repository.ChangeFeed
}

func NewViewRegistry(
	cfg *config.Config,
	log *logger.Logger,
	validator *goValidator.Validate,
	historyRepo repository.PredictionHistoryRepository,
	predictionAPI repository.PredictionAPIRepository,
	feed repository.ChangeFeed,
) ViewRegistry {
	r := &viewRegistry{
		cache: cache.NewCache(cfg.View.IdleExpiration, cfg.View.CleanupInterval),
		log:   log,
		opts: PredictionViewOptions{
			HistoryLimit: cfg.View.HistoryLimit,
			SettleDelay:  cfg.View.SettleDelay,
			AckTimeout:   cfg.View.AckTimeout,
		},
		validator:     validator,
		historyRepo:   historyRepo,
		predictionAPI: predictionAPI,
		feed:          feed,
	}
	r.cache.OnEvicted(r.onEvicted)
	return r
}

func (r *viewRegistry) onEvicted(id string, value interface{}) {
	view, ok := value.(*PredictionView)
	if !ok {
		return
	}
	if err := view.Unmount(); err != nil {
		r.log.Warn("Failed to unmount prediction view", logger.StringField("view_id", id), logger.ErrorField(err))
	}
}

// Open creates and mounts a new view. A view that fails to mount is released
// before the error is returned.
func (r *viewRegistry) Open(ctx context.Context) (*PredictionView, error) {
	id := uuid.New().String()
	view := NewPredictionView(id, r.opts, r.log, r.validator, r.historyRepo, r.predictionAPI, r.feed)
	if err := view.Mount(ctx); err != nil {
		_ = view.Unmount()
		return nil, fmt.Errorf("failed to mount prediction view: %w", err)
	}
	r.cache.SetDefault(id, view)
	return view, nil
}

// Get returns the view and resets its idle timer.
func (r *viewRegistry) Get(id string) (*PredictionView, error) {
	view, ok := cache.GetTyped[*PredictionView](r.cache, id)
	if !ok {
		return nil, ErrViewNotFound
	}
	if err := r.cache.Replace(id, view, cache.DefaultExpiration); err != nil {
		// evicted since the lookup; the view is already unmounted
		return nil, ErrViewNotFound
	}
	return view, nil
}

func (r *viewRegistry) Close(id string) error {
	r.cache.DeleteExpired()
	if _, ok := r.cache.Get(id); !ok {
		return ErrViewNotFound
	}
	r.cache.Delete(id)
	return nil
}

// CloseAll unmounts every open view.
func (r *viewRegistry) CloseAll() {
	r.cache.DeleteExpired()
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}

func (r *viewRegistry) Len() int {
	return len(r.cache.Items())
}
