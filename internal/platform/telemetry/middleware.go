package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
)

const (
	// TraceIDKey is the gin context key of the active trace ID.
	TraceIDKey = "trace_id"

	// HeaderTraceID echoes the trace ID to clients.
	HeaderTraceID = "X-Trace-ID"

	internalPrefix = "/-/"
)

// Tracing returns otelgin span middleware. Probe and metrics routes under
// /-/ are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, internalPrefix)
		}),
	)
}

// Middleware exposes the trace ID of the current span to handlers, logs and
// the client, then records request metrics on recorder. A nil recorder
// disables the metrics.
func Middleware(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(TraceIDKey, traceID)
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		}

		c.Next()

		if strings.HasPrefix(c.Request.URL.Path, internalPrefix) {
			return
		}
		recorder.HTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
