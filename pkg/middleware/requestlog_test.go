package middleware

import (
	"net/http"
	"net/http/httptest"
	"playstore-predictor/pkg/logger"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogFieldsMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	e := echo.New()
	e.Use(middleware.RequestID(), NewRequestLogFieldsMiddleware())
	e.GET("/api/v1/views/:id", func(c echo.Context) error {
		log.InfoContext(c.Request().Context(), "handled")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views/abc", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/api/v1/views/abc", fields["path"])
}
