package middleware

import (
	"net/http"
	"time"

	"blog_backend/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured access-log line per request.
// Headers and bodies are never logged.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", float64(time.Since(start)) / float64(time.Millisecond),
			"ip", c.ClientIP(),
			"size", c.Writer.Size(),
		}
		if identity := CurrentIdentity(c); identity != nil {
			args = append(args, "user_id", identity.UserID)
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			log.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			log.Warn(ctx, "request", args...)
		default:
			log.Info(ctx, "request", args...)
		}
	}
}
