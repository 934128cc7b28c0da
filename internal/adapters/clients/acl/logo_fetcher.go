package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	logoServiceName = "logo-host"
	maxLogoBytes    = 5 << 20
)

// LogoFetcher implements ports.ImageFetcher for quote logos.
// The underlying client's timeout bounds every fetch.
type LogoFetcher struct {
	remote
	logger *slog.Logger
}

var _ ports.ImageFetcher = (*LogoFetcher)(nil)

// NewLogoFetcher creates a logo fetcher. Panics if client is nil.
func NewLogoFetcher(client *clients.Client, logger *slog.Logger) *LogoFetcher {
	if client == nil {
		panic("LogoFetcher: client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LogoFetcher{
		remote: remote{client: client, service: logoServiceName},
		logger: logger,
	}
}

// Fetch downloads the image at rawURL. Only absolute http(s) URLs are accepted.
func (f *LogoFetcher) Fetch(ctx context.Context, rawURL string) (*ports.Image, error) {
	if err := required("logoUrl", rawURL); err != nil {
		return nil, err
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, domain.NewValidationErrorWithValue("logoUrl", "must be an absolute http(s) URL", rawURL)
	}

	resp, err := f.do(ctx, call{method: http.MethodGet, path: rawURL, operation: "fetch logo", entity: rawURL})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return nil, domain.NewUnavailableError(f.service, fmt.Sprintf("reading logo: %v", err))
	}
	if len(data) > maxLogoBytes {
		return nil, domain.NewValidationError("logoUrl", "image exceeds the 5 MiB limit")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	f.logger.DebugContext(ctx, "logo fetched",
		slog.Int("bytes", len(data)),
		slog.String("content_type", contentType))

	return &ports.Image{Data: data, ContentType: contentType}, nil
}
