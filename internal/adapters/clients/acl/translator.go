package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// remote sends requests to one downstream service and translates every
// failure into a domain error named after that service.
type remote struct {
	client  *clients.Client
	service string
}

// call is one downstream request. Operation names it in errors; entity is
// reported when the service answers 404.
type call struct {
	method    string
	path      string
	body      io.Reader
	header    http.Header
	operation string
	entity    string
}

// do sends c and returns the response when its status is below 400. The
// caller closes the body.
func (r remote) do(ctx context.Context, c call) (*http.Response, error) {
	resp, err := r.client.Send(ctx, c.method, c.path, c.body, c.header)
	if err != nil {
		return nil, transportError(err, r.service, c.operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()
		return nil, statusError(resp, r.service, c.operation, c.entity)
	}
	return resp, nil
}

// decodeJSON decodes body into a T and closes it.
func decodeJSON[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("decoding response: nil body")
	}
	defer func() { _ = body.Close() }()

	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

// required rejects an empty value for field.
func required(field, value string) error {
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}
	return nil
}
