// Package config loads the service settings from defaults, YAML profiles
// and APP_ environment variables with koanf, and validates them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults used when no file or variable sets a value.
const (
	// DefaultServerPort is the API listen port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (10MB).
	// Base64 logos and project images travel inside JSON bodies.
	DefaultMaxRequestSize = 10 << 20

	// DefaultShutdownTimeout bounds the drain of in-flight requests.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultTransportMaxIdleConns caps idle connections across storage and logo hosts.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost caps idle connections to one host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultDatabaseMaxOpenConns is the default connection pool size.
	DefaultDatabaseMaxOpenConns = 25

	// DefaultDatabaseMaxIdleConns is the default number of idle pooled connections.
	DefaultDatabaseMaxIdleConns = 5

	// DefaultSMTPPort is the default submission port.
	DefaultSMTPPort = 587

	// DefaultArticlePageSize is the default page size of the article catalog.
	DefaultArticlePageSize = 20

	// DevelopmentJWTSecret is the signing key used when none is configured.
	// Validate rejects it outside local and test environments.
	DevelopmentJWTSecret = "offermaster-development-secret-change-me"
)

// Config is the full service configuration.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"      validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Mail      MailConfig      `koanf:"mail"      validate:"required"`
	PDF       PDFConfig       `koanf:"pdf"       validate:"required"`
}

// AppConfig identifies the deployment.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig configures the API listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains session token and password reset settings.
type AuthConfig struct {
	Secret   string        `koanf:"secret"   validate:"required,min=16"`
	Issuer   string        `koanf:"issuer"   validate:"required"`
	TokenTTL time.Duration `koanf:"tokenttl" validate:"required,min=1m"`
	ResetTTL time.Duration `koanf:"resetttl" validate:"required,min=1m"`
}

// ClientConfig contains HTTP client settings for outbound calls.
// Calls are made once; there is no retry policy.
type ClientConfig struct {
	Timeout   time.Duration   `koanf:"timeout"   validate:"required,min=100ms"`
	Transport TransportConfig `koanf:"transport" validate:"required"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// DatabaseConfig contains relational store settings.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=postgres sqlite"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	AutoMigrate     bool          `koanf:"automigrate"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
	Debug           bool          `koanf:"debug"`
}

// StorageConfig contains object storage settings.
type StorageConfig struct {
	URL           string        `koanf:"url"            validate:"required,url"`
	Key           string        `koanf:"key"`
	LogoBucket    string        `koanf:"logo_bucket"    validate:"required"`
	ProjectBucket string        `koanf:"project_bucket" validate:"required"`
	Timeout       time.Duration `koanf:"timeout"        validate:"required,min=100ms"`
}

// MailConfig contains SMTP settings.
type MailConfig struct {
	Host     string `koanf:"host"     validate:"required"`
	Port     int    `koanf:"port"     validate:"required,min=1,max=65535"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"     validate:"required,email"`
	// PublicURL is the externally reachable base URL used in email links.
	PublicURL string `koanf:"publicurl" validate:"required,url"`
}

// PDFConfig contains quote document settings.
type PDFConfig struct {
	// FontPath points to a TTF file to embed. Empty uses the core Helvetica font.
	FontPath string `koanf:"fontpath"`
	// Timezone is the IANA zone quote dates are printed in.
	Timezone    string        `koanf:"timezone"    validate:"required"`
	LogoTimeout time.Duration `koanf:"logotimeout" validate:"required,min=100ms"`
}

// defaults is the lowest configuration layer, keyed like the YAML files.
func defaults() map[string]any {
	return map[string]any{
		// App
		"app.name":        "offermaster-service",
		"app.version":     "dev",
		"app.environment": "local",

		// Server
		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": DefaultShutdownTimeout.String(),
		"server.request_timeout":  "30s",
		"server.max_request_size": DefaultMaxRequestSize,

		// Log
		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		// Telemetry
		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.insecure":      true,
		"telemetry.service_name":  "offermaster-service",
		"telemetry.sampling_rate": 1.0,

		// Auth
		"auth.secret":   DevelopmentJWTSecret,
		"auth.issuer":   "offermaster",
		"auth.tokenttl": "24h",
		"auth.resetttl": "1h",

		// Client
		"client.timeout":                           "10s",
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		// Database
		"database.driver":            "sqlite",
		"database.dsn":               "file:offermaster.db?_foreign_keys=on",
		"database.automigrate":       true,
		"database.max_open_conns":    DefaultDatabaseMaxOpenConns,
		"database.max_idle_conns":    DefaultDatabaseMaxIdleConns,
		"database.conn_max_lifetime": "30m",
		"database.debug":             false,

		// Storage
		"storage.url":            "http://localhost:54321",
		"storage.key":            "",
		"storage.logo_bucket":    "quotes-bucket",
		"storage.project_bucket": "project-images-bucket",
		"storage.timeout":        "15s",

		// Mail
		"mail.host":      "localhost",
		"mail.port":      DefaultSMTPPort,
		"mail.username":  "",
		"mail.password":  "",
		"mail.from":      "noreply@offermaster.local",
		"mail.publicurl": "http://localhost:8080",

		// PDF
		"pdf.fontpath":    "",
		"pdf.timezone":    "Europe/Zagreb",
		"pdf.logotimeout": "5s",
	}
}

// EnvPrefix marks the environment variables Load reads.
const EnvPrefix = "APP_"

// Load layers configuration, later sources winning:
//  1. defaults
//  2. configs/base.yaml
//  3. configs/{profile}.yaml
//  4. APP_ environment variables, including those from an optional .env file
//
// Environment names map onto koanf keys by lower-casing and dropping the
// prefix. APP_SERVER_READ_TIMEOUT sets server.read_timeout because that key
// is known; unknown names split on every underscore.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"configs/base.yaml"}
	if profile != "" {
		files = append(files, fmt.Sprintf("configs/%s.yaml", profile))
	}
	for _, path := range files {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyMapper(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// envKeyMapper resolves environment names against the known keys.
func envKeyMapper(known []string) func(string) string {
	byEnvName := make(map[string]string, len(known))
	for _, key := range known {
		byEnvName[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key, ok := byEnvName[name]; ok {
			return key
		}
		return strings.ReplaceAll(name, "_", ".")
	}
}

// loadFileIfExists merges the YAML file at path into k. A missing file is
// skipped.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// loadDotEnv loads KEY=VALUE pairs from path if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}
