// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (business workflows)
//   - Authorize every call against the explicit domain.Actor
//   - Coordinate repositories with object storage, rendering and mail
//
// What does NOT belong here:
//   - HTTP/gRPC specifics (that's adapters)
//   - Database queries (that's repository adapters)
//   - Pricing rules (that's the domain layer)
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	appctx "github.com/jsamuelsen/offermaster-service/internal/app/context"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// imageExtensions maps the accepted sniffed content types to object name
// suffixes.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// logoTypes are the image types the PDF renderer can draw.
var logoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// requireActor rejects calls without an authenticated user.
func requireActor(actor domain.Actor) error {
	if actor.IsZero() {
		return domain.NewUnauthorizedError("authentication required")
	}
	return nil
}

// loggerFor returns the request logger enriched with the service component.
func loggerFor(ctx context.Context, component string) *slog.Logger {
	return logging.FromContext(ctx).With(slog.String("component", component))
}

// image is a decoded upload.
type image struct {
	data        []byte
	contentType string
}

// decodeImage decodes a base64 payload, optionally prefixed with a data URL
// header ("data:image/png;base64,"). Everything up to the first comma is dropped.
// The content type is sniffed from the bytes; the header is not trusted.
func decodeImage(field, encoded string) (*image, error) {
	payload := strings.TrimSpace(encoded)
	if comma := strings.IndexByte(payload, ','); comma >= 0 {
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return nil, domain.NewValidationError(field, "must be a base64 encoded image")
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, domain.NewValidationErrorWithValue(field, "must be a PNG, JPEG, GIF or WebP image", contentType)
	}

	return &image{data: data, contentType: contentType}, nil
}

// decodeLogo is decodeImage restricted to types a quote PDF can embed.
func decodeLogo(encoded string) (*image, error) {
	logo, err := decodeImage("logo", encoded)
	if err != nil {
		return nil, err
	}
	if !logoTypes[logo.contentType] {
		return nil, domain.NewValidationErrorWithValue("logo", "must be a PNG, JPEG or GIF image", logo.contentType)
	}
	return logo, nil
}

// objectPath builds a unique object name under prefix: <prefix>/<unix-millis>-<random><ext>.
func objectPath(prefix string, now time.Time, contentType string) string {
	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = ".png"
	}
	return fmt.Sprintf("%s/%d-%s%s", prefix, now.UnixMilli(), uuid.NewString()[:8], ext)
}

// uploadAction stores an object and deletes it again on rollback.
type uploadAction struct {
	storage     ports.ObjectStorage
	bucket      string
	path        string
	content     []byte
	contentType string

	url string
}

var _ appctx.Action = (*uploadAction)(nil)

func (a *uploadAction) Execute(ctx context.Context) error {
	url, err := a.storage.Upload(ctx, a.bucket, a.path, a.content, a.contentType)
	if err != nil {
		return err
	}
	a.url = url
	return nil
}

func (a *uploadAction) Rollback(ctx context.Context) error {
	return a.storage.Delete(ctx, a.bucket, a.path)
}

func (a *uploadAction) Description() string {
	return "upload " + a.bucket + "/" + a.path
}

// upload performs an image upload through the request context so it can be
// compensated, and returns the public URL.
func upload(ctx context.Context, rc *appctx.RequestContext, storage ports.ObjectStorage, bucket, prefix string, img *image, now time.Time) (string, error) {
	action := &uploadAction{
		storage:     storage,
		bucket:      bucket,
		path:        objectPath(prefix, now, img.contentType),
		content:     img.data,
		contentType: img.contentType,
	}

	if err := rc.Do(ctx, action); err != nil {
		return "", err
	}
	return action.url, nil
}
