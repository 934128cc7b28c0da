//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/offermaster-service/internal/adapters/http"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/pdf"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/persistence"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/platform/auth"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	logoBucket    = "quotes-bucket"
	projectBucket = "project-images-bucket"
)

var stackSeq atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
}

// stack is the service wired in-process: SQLite in memory, the real router
// and services, the storage adapter talking to fakeStorage, the PDF renderer,
// and an outbox in place of SMTP.
type stack struct {
	api     *httptest.Server
	storage *fakeStorage
	outbox  *outbox
	db      *gorm.DB
}

func newStack() (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := persistence.Open(&config.DatabaseConfig{
		Driver:       persistence.DriverSQLite,
		DSN:          fmt.Sprintf("file:integration_%d?mode=memory&cache=shared&_foreign_keys=on", stackSeq.Add(1)),
		AutoMigrate:  true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	storage := newFakeStorage()
	transport := config.TransportConfig{MaxIdleConns: 10, MaxIdleConnsPerHost: 10, IdleConnTimeout: 30 * time.Second}

	storageClient, err := clients.New(&clients.Config{
		ServiceName: "object-storage",
		BaseURL:     storage.URL,
		Timeout:     5 * time.Second,
		Transport:   transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	logoClient, err := clients.New(&clients.Config{
		ServiceName: "logo-host",
		Timeout:     2 * time.Second,
		Transport:   transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	objects := acl.NewObjectStorage(acl.ObjectStorageConfig{
		Client:       storageClient,
		PublicURL:    storage.URL,
		ServiceKey:   "integration-service-key",
		HealthBucket: logoBucket,
		Metrics:      recorder,
		Logger:       logger,
	})
	fetcher := acl.NewLogoFetcher(logoClient, logger)

	renderer, err := pdf.New(pdf.Config{Location: time.UTC, Logger: logger})
	if err != nil {
		return nil, err
	}

	mail := &outbox{}
	tokens := auth.NewTokenManager("integration-secret-0123456789", "offermaster-integration", time.Hour)

	articles := persistence.NewArticleRepository(db)
	projects := persistence.NewProjectRepository(db)
	quotes := persistence.NewQuoteRepository(db)

	health := ports.NewHealthRegistry()
	if err := health.Register(persistence.NewHealthChecker(db, persistence.DriverSQLite)); err != nil {
		return nil, err
	}
	if err := health.RegisterOptional(objects); err != nil {
		return nil, err
	}

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		ServiceName: "offermaster-integration",
		Logger:      logger,
		Tokens:      tokens,
		Metrics:     recorder,
		Timeout:     10 * time.Second,
		Health:      handlers.NewHealthHandler(health, reg, handlers.NewBuildInfo("test", "none", "now")),
		Auth: handlers.NewAuthHandler(app.NewAuthService(app.AuthServiceConfig{
			Users:       persistence.NewUserRepository(db),
			ResetTokens: persistence.NewPasswordResetTokenRepository(db),
			Hasher:      auth.NewBcryptHasher(bcrypt.MinCost),
			Tokens:      tokens,
			Mailer:      mail,
			ResetTTL:    time.Hour,
			Metrics:     recorder,
		})),
		Articles: handlers.NewArticleHandler(app.NewArticleService(articles)),
		Projects: handlers.NewProjectHandler(app.NewProjectService(app.ProjectServiceConfig{
			Projects: projects,
			Storage:  objects,
			Bucket:   projectBucket,
		})),
		Quotes: handlers.NewQuoteHandler(app.NewQuoteService(app.QuoteServiceConfig{
			Quotes:      quotes,
			Articles:    articles,
			Projects:    projects,
			Storage:     objects,
			Fetcher:     fetcher,
			Renderer:    renderer,
			Mailer:      mail,
			Bucket:      logoBucket,
			LogoTimeout: 2 * time.Second,
			Metrics:     recorder,
			Logger:      logger,
		})),
		Calendar: handlers.NewCalendarHandler(app.NewCalendarService(app.CalendarServiceConfig{
			Events:   persistence.NewCalendarEventRepository(db),
			Quotes:   quotes,
			Projects: projects,
		})),
	})

	return &stack{api: httptest.NewServer(engine), storage: storage, outbox: mail, db: db}, nil
}

func (s *stack) Close() {
	s.api.Close()
	s.storage.Close()
	_ = persistence.Close(s.db)
}

// fakeStorage serves the subset of the storage REST API the adapter uses,
// including public downloads so rendered PDFs can fetch uploaded logos.
type fakeStorage struct {
	*httptest.Server

	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	down    atomic.Bool
}

func newFakeStorage() *fakeStorage {
	fs := &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	return fs
}

func (fs *fakeStorage) serve(w http.ResponseWriter, r *http.Request) {
	if fs.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"statusCode":"503","error":"Unavailable","message":"storage is down"}`))
		return
	}

	const (
		objectPrefix = "/storage/v1/object/"
		publicPrefix = "/storage/v1/object/public/"
		bucketPrefix = "/storage/v1/bucket/"
	)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch path := r.URL.Path; {
	case strings.HasPrefix(path, bucketPrefix):
		_, _ = fmt.Fprintf(w, `{"id":%q,"public":true}`, strings.TrimPrefix(path, bucketPrefix))

	case r.Method == http.MethodGet && strings.HasPrefix(path, publicPrefix):
		key := strings.TrimPrefix(path, publicPrefix)
		data, ok := fs.objects[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", fs.types[key])
		_, _ = w.Write(data)

	case r.Method == http.MethodPost && strings.HasPrefix(path, objectPrefix):
		key := strings.TrimPrefix(path, objectPrefix)
		if r.Header.Get("Authorization") != "Bearer integration-service-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"statusCode":"403","error":"Unauthorized","message":"invalid service key"}`))
			return
		}
		if _, exists := fs.objects[key]; exists {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
			return
		}
		data, _ := io.ReadAll(r.Body)
		fs.objects[key] = data
		fs.types[key] = r.Header.Get("Content-Type")
		_, _ = fmt.Fprintf(w, `{"Key":%q}`, key)

	case r.Method == http.MethodDelete && strings.HasPrefix(path, objectPrefix):
		key := strings.TrimPrefix(path, objectPrefix)
		if _, ok := fs.objects[key]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(fs.objects, key)
		w.WriteHeader(http.StatusOK)

	default:
		http.NotFound(w, r)
	}
}

func (fs *fakeStorage) count(bucket string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := 0
	for key := range fs.objects {
		if strings.HasPrefix(key, bucket+"/") {
			n++
		}
	}
	return n
}

// outbox records mail instead of sending it.
type outbox struct {
	mu     sync.Mutex
	quotes []ports.QuoteEmail
	resets []ports.PasswordResetEmail
}

var _ ports.Mailer = (*outbox)(nil)

func (o *outbox) SendQuote(_ context.Context, msg ports.QuoteEmail) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quotes = append(o.quotes, msg)
	return nil
}

func (o *outbox) SendPasswordReset(_ context.Context, msg ports.PasswordResetEmail) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resets = append(o.resets, msg)
	return nil
}

func (o *outbox) lastReset(email string) (ports.PasswordResetEmail, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := len(o.resets) - 1; i >= 0; i-- {
		if o.resets[i].RecipientEmail == email {
			return o.resets[i], true
		}
	}
	return ports.PasswordResetEmail{}, false
}

func (o *outbox) quotesTo(email string) []ports.QuoteEmail {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []ports.QuoteEmail
	for _, msg := range o.quotes {
		if msg.RecipientEmail == email {
			out = append(out, msg)
		}
	}
	return out
}
