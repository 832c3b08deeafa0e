package middleware

import (
	"log/slog"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope renders the last error attached by a handler. Handlers only
// call c.Error and return. With debug set, internal messages include the cause.
func ErrorEnvelope(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperrors.Status(err)
		body := models.Envelope{Success: false}

		if appErr, ok := apperrors.As(err); ok && appErr.Kind != apperrors.KindDependency && appErr.Kind != apperrors.KindInternal {
			body.Message = appErr.Message
			body.Errors = appErr.Fields
		} else {
			slog.Error("Unhandled error",
				"error", err,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString("request_id"))
			body.Message = "Internal server error"
			if debug {
				body.Message = err.Error()
			}
		}

		c.AbortWithStatusJSON(status, body)
	}
}
