package http

import (
	"encoding/json"
	"io"
	"net/http"
	"playstore-predictor/internal/dto"
	"playstore-predictor/pkg/logger"
	"strings"

	"github.com/labstack/echo/v4"
)

var requiredPredictionFields = []string{"category", "app_size", "app_type", "price", "content_rating", "genres"}

const maxPredictBody = 1 << 20

// Predict answers with the input merged with the predicted figures. Errors use
// the {"error": "..."} body the client reads.
func (h *HttpAPIHandler) Predict(c echo.Context) error {
	ctx := c.Request().Context()
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusBadRequest, dto.PredictionErrorResponse{Error: "Request must be JSON"})
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPredictBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.PredictionErrorResponse{Error: "Request must be JSON"})
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return c.JSON(http.StatusBadRequest, dto.PredictionErrorResponse{Error: "Request must be JSON"})
	}
	for _, name := range requiredPredictionFields {
		if _, ok := fields[name]; !ok {
			return c.JSON(http.StatusBadRequest, dto.PredictionErrorResponse{Error: "Missing required fields in input data"})
		}
	}

	var input dto.PredictionInput
	if err := json.Unmarshal(body, &input); err != nil {
		return c.JSON(http.StatusBadRequest, dto.PredictionErrorResponse{Error: "Invalid input data: " + err.Error()})
	}

	result, err := h.service.PredictionEngine.Predict(ctx, input)
	if err != nil {
		h.log.ErrorContext(ctx, "Prediction failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.PredictionErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
