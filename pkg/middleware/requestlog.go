package middleware

import (
	"playstore-predictor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewRequestLogFieldsMiddleware tags the request context with the request id,
// method and path so Context log calls made while serving it carry them.
// It must run after echo's RequestID middleware.
func NewRequestLogFieldsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logger.ContextWithFields(req.Context(),
				logger.StringField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				logger.StringField("method", req.Method),
				logger.StringField("path", req.URL.Path),
			)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
