package http

import (
	"context"
	"errors"
	"net/http"
	"playstore-predictor/config"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/middleware"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

type HttpAPIHandler struct {
	ctx       context.Context
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	cfg       *config.Config
	log       *logger.Logger
}

// NewHttpAPIHandler builds the handler. ctx bounds long-lived streams so they
// end when the server shuts down.
func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, cfg *config.Config, log *logger.Logger) *HttpAPIHandler {
	return &HttpAPIHandler{
		ctx:       ctx,
		echo:      echo,
		validator: validator,
		service:   service,
		cfg:       cfg,
		log:       log,
	}
}

// SetupRoutes registers the page and the view API.
func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(echoMiddleware.RequestID(), middleware.NewRequestLogFieldsMiddleware())
	h.echo.GET("/", h.Index)

	base := h.echo.Group("/api", middleware.NewRateLimiterMiddleware(h.cfg.API.RateLimit, h.cfg.API.RateBurst, isEventStream))
	h.SetupViews(base)
}

// SetupPredictorRoutes registers the prediction service API.
func (h *HttpAPIHandler) SetupPredictorRoutes() {
	h.echo.Use(echoMiddleware.RequestID(), middleware.NewRequestLogFieldsMiddleware())
	h.echo.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: h.cfg.Predictor.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	h.echo.POST("/predict", h.Predict)
	h.echo.GET("/health", h.Health)
}

func isEventStream(c echo.Context) bool {
	return strings.HasSuffix(c.Request().URL.Path, "/events")
}

func viewErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrViewNotFound), errors.Is(err, service.ErrViewClosed):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDraft),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrFieldDisabled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	code := viewErrorStatus(err)
	return c.JSON(code, dto.NewBaseResponse(code, err.Error(), nil))
}
