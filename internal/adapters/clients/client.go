// Package clients provides the instrumented HTTP client used to reach object
// storage and remote logo hosts.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/offermaster-service/internal/adapters/clients"

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "offermaster-service"

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// ErrRequestFailed wraps transport failures where no response arrived,
// including timeouts. Callers in acl translate it to domain errors.
var ErrRequestFailed = errors.New("downstream request failed")

// Config configures a Client.
type Config struct {
	// BaseURL prefixes relative paths. Absolute http(s) URLs bypass it, which
	// is how logos hosted anywhere are fetched.
	BaseURL string

	// ServiceName names the downstream in logs, spans and metrics. Required.
	ServiceName string

	// Timeout bounds each request including the response headers. Requests
	// are never retried.
	Timeout time.Duration

	// Transport sizes the connection pool. Zero values use defaults.
	Transport config.TransportConfig

	// UserAgent defaults to "offermaster-service".
	UserAgent string

	Logger *slog.Logger
}

// Client sends single-attempt HTTP requests to one downstream, with tracing,
// OTLP request metrics, and request/correlation ID propagation.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	userAgent   string
	logger      *slog.Logger

	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter(instrumentationName)
	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of downstream HTTP requests"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	requests, err := meter.Int64Counter("http.client.request.count",
		metric.WithDescription("Downstream HTTP requests, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http:        &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		userAgent:   userAgent,
		logger:      logger.With(slog.String("downstream", cfg.ServiceName)),
		tracer:      otel.Tracer(instrumentationName),
		duration:    duration,
		requests:    requests,
	}, nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	if cfg.MaxIdleConns > 0 {
		t.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout > 0 {
		t.IdleConnTimeout = cfg.IdleConnTimeout
	}
	return t
}

// Send builds a request for path, which is relative to BaseURL or absolute,
// adds header, and executes it. A nil body sends none.
func (c *Client) Send(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.Do(ctx, req)
}

// Do executes req once. Any status is returned without error; the caller
// owns the body. Transport failures wrap ErrRequestFailed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.Redacted()),
			attribute.String("peer.service", c.serviceName),
		))
	defer span.End()

	c.stamp(ctx, req)

	resp, err := c.http.Do(req.WithContext(ctx))
	elapsed := time.Since(start)
	logger := c.loggerFor(ctx).With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Duration("duration", elapsed))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, elapsed, failureOutcome(err))
		logger.Warn("downstream request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}
	c.record(ctx, req.Method, resp.StatusCode, elapsed, statusClass(resp.StatusCode))
	logger.Debug("downstream request completed", slog.Int("status", resp.StatusCode))

	return resp, nil
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logging.HasLogger(ctx) {
		return logging.FromContext(ctx).With(slog.String("downstream", c.serviceName))
	}
	return c.logger
}

// stamp sets the propagated IDs, trace context and user agent on req.
func (c *Client) stamp(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// resolve joins path onto the base URL unless it is already absolute.
func (c *Client) resolve(path string) string {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) record(ctx context.Context, method string, status int, elapsed time.Duration, outcome string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("outcome", outcome),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opts := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, elapsed.Seconds(), opts)
	c.requests.Add(ctx, 1, opts)
}

// statusClass returns "2xx", "4xx" and so on.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

func failureOutcome(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
