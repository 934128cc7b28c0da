// Package persistence implements the repository ports on top of gorm.
// Postgres is the production driver; SQLite serves local runs and tests.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/offermaster-service/internal/platform/config"
	"github.com/jsamuelsen/offermaster-service/internal/platform/logging"
)

const (
	// DriverPostgres selects gorm.io/driver/postgres.
	DriverPostgres = "postgres"

	// DriverSQLite selects gorm.io/driver/sqlite.
	DriverSQLite = "sqlite"

	slowQueryThreshold = 200 * time.Millisecond
)

// Open connects to the configured database and applies pool settings.
// When cfg.AutoMigrate is set, the schema is created or updated from the gorm models.
func Open(cfg *config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger, cfg.Debug),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		dsn := NormalizeDSN(cfg.DSN)
		if dsn == "" {
			return nil, errors.New("database.dsn is empty")
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// gormWriter forwards gorm's printf-style output to slog.
type gormWriter struct {
	logger *slog.Logger
	level  slog.Level
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Log(context.Background(), w.level, fmt.Sprintf(format, args...))
}

func newGormLogger(logger *slog.Logger, debug bool) gormlogger.Interface {
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}

	level := gormlogger.Warn
	writerLevel := slog.LevelWarn
	if debug {
		level = gormlogger.Info
		writerLevel = logging.LevelTrace
	}

	return gormlogger.New(
		gormWriter{logger: logger.With(slog.String("component", "gorm")), level: writerLevel},
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// translateError maps gorm errors onto domain errors for entity/id.
func translateError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}
