package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/platform/telemetry"
)

// TraceIDKey is the gin context key holding the request's trace ID.
const TraceIDKey = telemetry.TraceIDKey

// RequestIDHeader is the fallback source of a trace ID.
const RequestIDHeader = "X-Request-ID"

const (
	unavailableMessage = "service temporarily unavailable"
	internalMessage    = "an internal error occurred"
	timeoutMessage     = "request timed out"
)

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 with a generic message; internal errors
// carry their user-facing message. An expired request deadline maps to 504.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var (
		notFound     *domain.NotFoundError
		conflict     *domain.ConflictError
		validation   *domain.ValidationError
		forbidden    *domain.ForbiddenError
		unauthorized *domain.UnauthorizedError
		internal     *domain.InternalError
	)

	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, unauthorized.Error())

	case errors.As(err, &forbidden):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, forbidden.Error())

	case errors.As(err, &notFound):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, notFound.Error())

	case errors.As(err, &conflict):
		resp := NewErrorResponse(ErrorCodeConflict, conflict.Reason)
		resp.Error.Details = map[string]string{"entity": conflict.Entity}
		return http.StatusConflict, resp

	case errors.As(err, &validation):
		resp := NewErrorResponse(ErrorCodeValidation, validation.Error())
		if validation.Field != "" {
			resp.Error.Details = map[string]string{validation.Field: validation.Message}
		}
		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, unavailableMessage)

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, timeoutMessage)

	case errors.As(err, &internal):
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, internal.Message)

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, internalMessage)
	}
}

// GetTraceID returns the trace ID for the request: the value stored under
// TraceIDKey, then the active OpenTelemetry span, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
		return ""
	}

	if c.Request == nil {
		return ""
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return c.Request.Header.Get(RequestIDHeader)
}

// HandleError writes err as an error envelope. Server-side failures are
// logged with the full error chain.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("trace_id", resp.TraceID))
	}

	c.JSON(status, resp)
}

// AbortWithError aborts the handler chain and writes err as an error envelope.
func AbortWithError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)
	c.AbortWithStatusJSON(status, resp)
}

// HandleBindError writes a 400 for a failed BindAndValidate, with field
// details when the validator produced them.
func HandleBindError(c *gin.Context, err error) {
	resp := NewErrorResponse(ErrorCodeValidation, "request validation failed")
	if fields := ValidationErrors(err); len(fields) > 0 {
		resp.Error.Details = fields
	} else {
		resp.Error.Code = ErrorCodeBadRequest
		resp.Error.Message = "malformed request body"
	}

	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}

// BadRequest writes a 400 with code BAD_REQUEST.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, message).WithTraceID(GetTraceID(c)))
}
