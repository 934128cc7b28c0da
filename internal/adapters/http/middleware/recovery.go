package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a 500 error envelope.
// The panic value and stack are logged with the request-scoped logger,
// or with logger when the request has none.
// Apply it first so it covers every later handler.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return RecoveryWithWriter(logger, nil)
}

// RecoveryWithWriter is Recovery with an extra hook that receives the panic
// value and stack, e.g. to forward them to an error tracker.
func RecoveryWithWriter(logger *slog.Logger, stackHandler func(err any, stack []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			if stackHandler != nil {
				stackHandler(r, stack)
			}

			panicLogger := logger
			if logging.HasLogger(c.Request.Context()) {
				panicLogger = logging.FromContext(c.Request.Context())
			}

			traceID := dto.GetTraceID(c)
			panicLogger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(stack)),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			// Unknown errors render as the generic internal error.
			dto.AbortWithError(c, fmt.Errorf("panic: %v", r))
		}()

		c.Next()
	}
}
