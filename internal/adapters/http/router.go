package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/platform/telemetry"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// DefaultRequestTimeout is the default deadline of API requests.
const DefaultRequestTimeout = 30 * time.Second

// Routes that render or mail PDFs run without the request deadline; their
// outbound calls carry their own timeouts.
var untimedRoutes = []string{
	"/api/quotes/:id/pdf",
	"/api/quotes/:id/email",
}

// RouterConfig contains everything SetupRouter mounts.
type RouterConfig struct {
	// ServiceName names the otelgin spans.
	ServiceName string

	// Logger is the fallback request logger.
	Logger *slog.Logger

	// Tokens verifies bearer tokens on protected routes.
	Tokens ports.TokenIssuer

	// Metrics records HTTP request metrics. Nil disables them.
	Metrics *metrics.Recorder

	// Timeout is the request deadline. Zero disables it.
	Timeout time.Duration

	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Articles *handlers.ArticleHandler
	Projects *handlers.ProjectHandler
	Quotes   *handlers.QuoteHandler
	Calendar *handlers.CalendarHandler
}

// SetupRouter configures middleware and routes on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - accept or generate X-Request-ID
//  3. Correlation ID - accept or generate X-Correlation-ID
//  4. OpenTelemetry - spans, trace ID propagation and request metrics
//  5. Logging - one line per request (skips /-/ routes)
//  6. Timeout - request deadline (skips PDF and email routes)
//
// Route groups:
//   - /-/: probes, build info and metrics, no auth
//   - /api/auth: registration, login and password reset; profile routes need a token
//   - /api: projects, quotes and calendar events, bearer token required
//   - /articles: the shared article catalog, bearer token required
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.ServiceName),
		telemetry.Middleware(cfg.Metrics),
		middleware.Logging(cfg.Logger),
		middleware.Timeout(cfg.Timeout, untimedRoutes...),
	)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutes(engine.Group("/-"))
	}

	requireAuth := middleware.RequireAuth(cfg.Tokens)

	api := engine.Group("/api")
	if cfg.Auth != nil {
		cfg.Auth.RegisterAuthRoutes(api, requireAuth)
	}

	protected := api.Group("", requireAuth)
	if cfg.Projects != nil {
		cfg.Projects.RegisterProjectRoutes(protected)
	}
	if cfg.Quotes != nil {
		cfg.Quotes.RegisterQuoteRoutes(protected)
	}
	if cfg.Calendar != nil {
		cfg.Calendar.RegisterCalendarRoutes(protected)
	}

	if cfg.Articles != nil {
		cfg.Articles.RegisterArticleRoutes(engine.Group("", requireAuth))
	}
}
