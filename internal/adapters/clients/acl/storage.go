package acl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	storageServiceName = "object-storage"
	objectPrefix       = "/storage/v1/object/"
	publicObjectPrefix = "/storage/v1/object/public/"
	bucketPrefix       = "/storage/v1/bucket/"
	cacheControl       = "3600"
)

// ObjectStorageConfig configures the storage adapter.
type ObjectStorageConfig struct {
	// Client is the HTTP client. Its BaseURL must be the storage project URL.
	Client *clients.Client

	// PublicURL is the base for public object URLs, normally the same project URL.
	PublicURL string

	// ServiceKey authenticates uploads and deletes.
	ServiceKey string

	// HealthBucket is probed by Check.
	HealthBucket string

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// ObjectStorage implements ports.ObjectStorage against a Supabase-style
// storage REST API.
type ObjectStorage struct {
	remote
	publicURL    string
	serviceKey   string
	healthBucket string
	metrics      *metrics.Recorder
	logger       *slog.Logger
}

var (
	_ ports.ObjectStorage = (*ObjectStorage)(nil)
	_ ports.HealthChecker = (*ObjectStorage)(nil)
)

// NewObjectStorage creates a storage adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewObjectStorage(cfg ObjectStorageConfig) *ObjectStorage {
	if cfg.Client == nil {
		panic("ObjectStorage: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ObjectStorage{
		remote:       remote{client: cfg.Client, service: storageServiceName},
		publicURL:    strings.TrimSuffix(cfg.PublicURL, "/"),
		serviceKey:   cfg.ServiceKey,
		healthBucket: cfg.HealthBucket,
		metrics:      cfg.Metrics,
		logger:       logger,
	}
}

// uploadResponse is the storage API's success body.
type uploadResponse struct {
	Key string `json:"Key"`
}

// Upload stores content and returns the object's public URL.
// Any rejection is reported as a domain.InternalError carrying the
// storage service's message.
func (s *ObjectStorage) Upload(ctx context.Context, bucket, path string, content []byte, contentType string) (string, error) {
	if err := validateObjectRef(bucket, path); err != nil {
		return "", err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := s.authHeader()
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", "max-age="+cacheControl)
	header.Set("X-Upsert", "false")

	objectPath := objectPrefix + escapeObjectPath(bucket, path)
	s.logger.Log(ctx, logging.LevelTrace, "uploading object",
		slog.String("bucket", bucket),
		slog.String("object", path),
		slog.Int("bytes", len(content)))

	resp, err := s.client.Send(ctx, http.MethodPost, objectPath, bytes.NewReader(content), header)
	if err != nil {
		s.metrics.Uploaded(bucket, err)
		return "", uploadError(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		message, _ := readFailure(resp, "upload object")
		err := uploadError(message)
		s.metrics.Uploaded(bucket, err)
		logging.FromContext(ctx).Warn("object upload rejected",
			slog.String("bucket", bucket),
			slog.String("object", path),
			slog.Int("status", resp.StatusCode))
		return "", err
	}

	// The key is informational; a missing or malformed body does not fail the upload.
	if body, decodeErr := decodeJSON[uploadResponse](resp.Body); decodeErr == nil && body.Key != "" {
		s.logger.DebugContext(ctx, "object stored", slog.String("key", body.Key))
	}

	s.metrics.Uploaded(bucket, nil)
	return s.PublicURL(bucket, path), nil
}

// Delete removes an object. A missing object is not an error.
func (s *ObjectStorage) Delete(ctx context.Context, bucket, path string) error {
	if err := validateObjectRef(bucket, path); err != nil {
		return err
	}

	resp, err := s.client.Send(ctx, http.MethodDelete, objectPrefix+escapeObjectPath(bucket, path), nil, s.authHeader())
	if err != nil {
		return transportError(err, s.service, "delete object")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		message, _ := readFailure(resp, "delete object")
		return domain.NewInternalError("delete object", "object storage delete failed: "+message)
	}
	return nil
}

// PublicURL returns the public download URL of an object.
func (s *ObjectStorage) PublicURL(bucket, path string) string {
	return s.publicURL + publicObjectPrefix + escapeObjectPath(bucket, path)
}

// Name implements ports.HealthChecker.
func (s *ObjectStorage) Name() string {
	return storageServiceName
}

// Check verifies the health bucket is reachable with the service key.
func (s *ObjectStorage) Check(ctx context.Context) error {
	if s.healthBucket == "" {
		return nil
	}

	resp, err := s.do(ctx, call{
		method:    http.MethodGet,
		path:      bucketPrefix + url.PathEscape(s.healthBucket),
		header:    s.authHeader(),
		operation: "check bucket",
		entity:    s.healthBucket,
	})
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (s *ObjectStorage) authHeader() http.Header {
	header := http.Header{}
	if s.serviceKey != "" {
		header.Set("Authorization", "Bearer "+s.serviceKey)
		header.Set("apikey", s.serviceKey)
	}
	return header
}

func validateObjectRef(bucket, path string) error {
	return errors.Join(
		required("bucket", bucket),
		required("path", strings.Trim(path, "/")),
	)
}

func escapeObjectPath(bucket, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func uploadError(message string) error {
	return domain.NewInternalError("upload object", "object storage upload failed: "+message)
}
