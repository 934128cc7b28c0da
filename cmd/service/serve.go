package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/mail"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/pdf"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/persistence"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/platform/auth"
	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/platform/telemetry"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

func newServeCmd(profile *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM, then drain in-flight requests.
With --migrate the embedded SQL migrations are applied before the listener starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*profile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply SQL migrations before serving (postgres only)")

	return cmd
}

// loadConfig loads and validates the configuration (fail fast).
func loadConfig(profile string) (*config.Config, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("database", cfg.Database.Driver),
	)

	// Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, telemetry.NewConfig(&cfg.App, &cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(reg)

	if migrate {
		if err := migrateUp(&cfg.Database, logger); err != nil {
			return err
		}
	}

	db, err := persistence.Open(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	defer func() {
		if closeErr := persistence.Close(db); closeErr != nil {
			logger.Error("database close error", slog.Any("error", closeErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(persistence.NewHealthChecker(db, cfg.Database.Driver)); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	// Outbound adapters (ACL pattern)
	storage, fetcher, err := newStorageAdapters(cfg, recorder, logger)
	if err != nil {
		return err
	}

	if err := healthRegistry.RegisterOptional(storage); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	mailer, err := mail.New(mail.Config{
		SMTP:     cfg.Mail,
		ResetTTL: cfg.Auth.ResetTTL,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}

	location, err := time.LoadLocation(cfg.PDF.Timezone)
	if err != nil {
		return fmt.Errorf("loading pdf timezone %q: %w", cfg.PDF.Timezone, err)
	}

	renderer, err := pdf.New(pdf.Config{
		FontPath: cfg.PDF.FontPath,
		Location: location,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating pdf renderer: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	services := newServices(db, cfg, serviceDeps{
		storage:  storage,
		fetcher:  fetcher,
		mailer:   mailer,
		renderer: renderer,
		tokens:   tokens,
		metrics:  recorder,
		logger:   logger,
	})

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName: telemetry.NewConfig(&cfg.App, &cfg.Telemetry).ServiceName,
		Logger:      logger,
		Tokens:      tokens,
		Metrics:     recorder,
		Timeout:     cfg.Server.RequestTimeout,
		Health:      handlers.NewHealthHandler(healthRegistry, reg, buildInfo),
		Auth:        handlers.NewAuthHandler(services.auth),
		Articles:    handlers.NewArticleHandler(services.articles),
		Projects:    handlers.NewProjectHandler(services.projects),
		Quotes:      handlers.NewQuoteHandler(services.quotes),
		Calendar:    handlers.NewCalendarHandler(services.calendar),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutdown complete", slog.Any("cause", context.Cause(ctx)))
	return nil
}

// newStorageAdapters creates the object storage and logo download adapters.
// Each gets its own client so the storage timeout and the logo timeout apply separately.
func newStorageAdapters(
	cfg *config.Config,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) (*acl.ObjectStorage, *acl.LogoFetcher, error) {
	storageClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Storage.URL,
		ServiceName: "object-storage",
		Timeout:     cfg.Storage.Timeout,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating storage client: %w", err)
	}

	logoClient, err := clients.New(&clients.Config{
		ServiceName: "logo-host",
		Timeout:     cfg.PDF.LogoTimeout,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating logo client: %w", err)
	}

	storage := acl.NewObjectStorage(acl.ObjectStorageConfig{
		Client:       storageClient,
		PublicURL:    cfg.Storage.URL,
		ServiceKey:   cfg.Storage.Key,
		HealthBucket: cfg.Storage.LogoBucket,
		Metrics:      recorder,
		Logger:       logger,
	})

	return storage, acl.NewLogoFetcher(logoClient, logger), nil
}

type serviceDeps struct {
	storage  ports.ObjectStorage
	fetcher  ports.ImageFetcher
	mailer   ports.Mailer
	renderer ports.DocumentRenderer
	tokens   ports.TokenIssuer
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

type services struct {
	auth     *app.AuthService
	articles *app.ArticleService
	projects *app.ProjectService
	quotes   *app.QuoteService
	calendar *app.CalendarService
}

func newServices(db *gorm.DB, cfg *config.Config, deps serviceDeps) services {
	users := persistence.NewUserRepository(db)
	resetTokens := persistence.NewPasswordResetTokenRepository(db)
	articles := persistence.NewArticleRepository(db)
	projects := persistence.NewProjectRepository(db)
	quotes := persistence.NewQuoteRepository(db)
	events := persistence.NewCalendarEventRepository(db)

	return services{
		auth: app.NewAuthService(app.AuthServiceConfig{
			Users:       users,
			ResetTokens: resetTokens,
			Hasher:      auth.NewBcryptHasher(bcrypt.DefaultCost),
			Tokens:      deps.tokens,
			Mailer:      deps.mailer,
			ResetTTL:    cfg.Auth.ResetTTL,
			Metrics:     deps.metrics,
		}),
		articles: app.NewArticleService(articles),
		projects: app.NewProjectService(app.ProjectServiceConfig{
			Projects: projects,
			Storage:  deps.storage,
			Bucket:   cfg.Storage.ProjectBucket,
		}),
		quotes: app.NewQuoteService(app.QuoteServiceConfig{
			Quotes:      quotes,
			Articles:    articles,
			Projects:    projects,
			Storage:     deps.storage,
			Fetcher:     deps.fetcher,
			Renderer:    deps.renderer,
			Mailer:      deps.mailer,
			Bucket:      cfg.Storage.LogoBucket,
			LogoTimeout: cfg.PDF.LogoTimeout,
			Metrics:     deps.metrics,
			Logger:      deps.logger,
		}),
		calendar: app.NewCalendarService(app.CalendarServiceConfig{
			Events:   events,
			Quotes:   quotes,
			Projects: projects,
		}),
	}
}
