// Package config provides configuration management for the visit counter.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds all configuration for the visit counter.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Share       ShareConfig       `mapstructure:"share"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// StaticDir, when set, is served as a single-page site.
	StaticDir string `mapstructure:"static_dir"`
}

// LedgerConfig selects and configures the key-value store.
type LedgerConfig struct {
	Backend  string         `mapstructure:"backend"`
	Table    string         `mapstructure:"table"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

// DynamoDBConfig holds DynamoDB client settings.
type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// ShareConfig controls how share URLs are built.
type ShareConfig struct {
	// Domain replaces the request host when set.
	Domain string `mapstructure:"domain"`

	// DefaultScheme is used when the request does not reveal one.
	DefaultScheme string `mapstructure:"default_scheme"`
}

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// Output is stdout, stderr or a file path. Files are rotated.
	Output     string `mapstructure:"output"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SentryConfig holds error reporting configuration. Reporting is off when DSN is empty.
type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// legacyEnv maps config keys to the unprefixed variable names deployments already set.
var legacyEnv = map[string]string{
	"server.port":              "PORT",
	"ledger.table":             "DYNAMODB_TABLE",
	"ledger.dynamodb.region":   "AWS_REGION",
	"ledger.dynamodb.endpoint": "DYNAMODB_ENDPOINT",
	"ledger.redis.url":         "REDIS_URL",
	"ledger.postgres.dsn":      "DATABASE_URL",
	"share.domain":             "WEBSITE_DOMAIN",
	"sentry.dsn":               "SENTRY_DSN",
	"logging.level":            "LOG_LEVEL",
	"logging.format":           "LOG_FORMAT",
}

// Load reads configuration from .env, an optional config file and environment variables.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/visitcounter/")
	}

	// Read environment variables
	v.SetEnvPrefix("VISITCOUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "VISITCOUNTER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Read config file (ignore if not found, use defaults/env)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.static_dir", "")

	// Ledger defaults
	v.SetDefault("ledger.backend", BackendDynamoDB)
	v.SetDefault("ledger.table", "didanyonereadmycoverletter.com")
	v.SetDefault("ledger.timeout", "5s")
	v.SetDefault("ledger.dynamodb.region", "us-east-1")
	v.SetDefault("ledger.dynamodb.endpoint", "")
	v.SetDefault("ledger.redis.url", "")
	v.SetDefault("ledger.postgres.dsn", "")
	v.SetDefault("ledger.postgres.max_conns", 10)
	v.SetDefault("ledger.sqlite.path", "visits.db")

	// Share defaults
	v.SetDefault("share.domain", "")
	v.SetDefault("share.default_scheme", "https")

	// Rate limiter defaults
	v.SetDefault("rate_limiter.enabled", true)
	v.SetDefault("rate_limiter.requests_per_second", 50.0)
	v.SetDefault("rate_limiter.burst_size", 100)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.compress", true)

	// Sentry defaults
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.traces_sample_rate", 0.0)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := c.Ledger.Validate(); err != nil {
		return err
	}

	switch c.Share.DefaultScheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid share default scheme: %q", c.Share.DefaultScheme)
	}

	if c.RateLimiter.Enabled {
		if c.RateLimiter.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limiter requests per second must be positive")
		}
		if c.RateLimiter.BurstSize <= 0 {
			return fmt.Errorf("rate limiter burst size must be positive")
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port must differ from server port")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics path must start with /: %q", c.Metrics.Path)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	return nil
}

// Validate checks the backend selection and its settings.
func (c *LedgerConfig) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("ledger table is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ledger timeout must be positive")
	}

	switch c.Backend {
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("dynamodb region is required")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis url is required for the redis backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres dsn is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown ledger backend: %q", c.Backend)
	}

	return nil
}
