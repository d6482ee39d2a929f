package middleware

import (
	apiError "convenios-dashboard/internal/errors"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.APIError
		if !errors.As(err, &apiErr) {
			// raw errors we didn't wrap are internal
			apiErr = apiError.Internal(err)
		}

		fields := []zap.Field{
			zap.Int("status", apiErr.Status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(apiErr.Internal),
		}
		if apiErr.Status >= 500 {
			logger.Error(apiErr.Message, fields...)
		} else {
			logger.Info(apiErr.Message, fields...)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
