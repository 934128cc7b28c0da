package acl

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

const maxErrorBodyBytes = 64 << 10

// errorBody is a downstream error payload. Accepted shapes:
//
//	{"error":{"code":"...","message":"...","details":{...}}}
//	{"code":"...","message":"..."}
//	{"statusCode":"409","error":"Duplicate","message":"..."}   storage API
type errorBody struct {
	Code    string
	Message string
	Details map[string]string
}

func (e *errorBody) UnmarshalJSON(data []byte) error {
	var top struct {
		Error   json.RawMessage `json:"error"`
		Code    string          `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	e.Code, e.Message = top.Code, top.Message

	if len(top.Error) == 0 {
		return nil
	}

	var nested struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	if json.Unmarshal(top.Error, &nested) == nil {
		e.Code = cmp.Or(nested.Code, e.Code)
		e.Message = cmp.Or(nested.Message, e.Message)
		e.Details = nested.Details
		return nil
	}

	var label string
	if json.Unmarshal(top.Error, &label) == nil && e.Code == "" {
		e.Code = label
	}
	return nil
}

// text is the most descriptive part of the body.
func (e *errorBody) text() string {
	return cmp.Or(e.Message, e.Code)
}

// firstDetail returns the alphabetically first field detail.
func (e *errorBody) firstDetail() (field, message string, ok bool) {
	if len(e.Details) == 0 {
		return "", "", false
	}
	field = slices.Sorted(maps.Keys(e.Details))[0]
	return field, e.Details[field], true
}

// parseErrorBody returns nil when raw is not JSON or carries neither a code
// nor a message.
func parseErrorBody(raw []byte) *errorBody {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	if body.Code == "" && body.Message == "" {
		return nil
	}
	return &body
}

// readFailure drains a bounded prefix of a failed response and returns the
// downstream message: the parsed body's text, the raw body, or the status.
func readFailure(resp *http.Response, operation string) (string, *errorBody) {
	var raw []byte
	if resp.Body != nil {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	}

	if body := parseErrorBody(raw); body != nil {
		return body.text(), body
	}
	if text := strings.TrimSpace(string(bytes.ToValidUTF8(raw, nil))); text != "" {
		return text, nil
	}
	return fmt.Sprintf("%s failed with HTTP %d", operation, resp.StatusCode), nil
}

// statusError translates a non-2xx response into a domain error. entity
// names the object or URL for not-found errors.
func statusError(resp *http.Response, service, operation, entity string) error {
	message, body := readFailure(resp, operation)

	switch status := resp.StatusCode; {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(service, entity)
	case status == http.StatusConflict:
		return domain.NewConflictError(service, message)
	case status == http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(service, message)
	default:
		if body != nil {
			if field, detail, ok := body.firstDetail(); ok {
				return domain.NewValidationError(field, detail)
			}
		}
		return domain.NewValidationError("", message)
	}
}

// transportError translates a request that produced no response.
func transportError(err error, service, operation string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.NewUnavailableError(service, operation+" timed out")
	}
	return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", operation, err))
}
