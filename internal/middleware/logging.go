package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request, including any errors
// handlers attached with c.Error.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if actor := CurrentActor(c); actor != nil {
			attrs = append(attrs, "user_id", actor.UserID, "role", actor.Role)
		}

		switch {
		case len(c.Errors) > 0:
			logger.ErrorContext(c.Request.Context(), "request failed", append(attrs, "error", c.Errors.String())...)
		case c.Writer.Status() >= 500:
			logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}
