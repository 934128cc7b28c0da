package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

// Logging returns middleware that logs each request once it completes, at a
// level chosen by status: 5xx error, 4xx warn, otherwise info.
// Probe paths under /-/ and any path in skipPaths are not logged.
//
// The request-scoped logger (carrying request and correlation IDs) is used
// when present, logger otherwise.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || strings.HasPrefix(path, "/-/") {
			c.Next()
			return
		}

		start := time.Now()
		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if actor := CurrentActor(c); !actor.IsZero() {
			attrs = append(attrs, slog.Uint64("user_id", uint64(actor.UserID)))
		}

		requestLogger(c, logger).LogAttrs(c.Request.Context(), level, "request completed", attrs...)
	}
}

// requestLogger prefers the logger stored on the request context.
func requestLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if logging.HasLogger(c.Request.Context()) || fallback == nil {
		return logging.FromContext(c.Request.Context())
	}

	return fallback
}
