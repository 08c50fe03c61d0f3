// pkg/middleware/logger.go

package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InjectLogger - мидлвэр для добавления логгера в контекст запроса.
// Логгер обогащается методом и путем, чтобы хендлеры писали их автоматически.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := logger.With(
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
			)
			c.Set("logger", reqLogger)
			return next(c)
		}
	}
}
