// Package config reads the service configuration from the environment and
// command-line flags. Environment variables win over flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	devJWTSecret = "penny-dev-secret-do-not-use-in-prod"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"production"`
	Port string `env:"PORT" envDefault:"8080"`

	Backend     string `env:"DATA_BACKEND" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBUser      string `env:"DB_USER" envDefault:"penny_user"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME" envDefault:"penny_db"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/penny.db"`

	// Redis is optional; an empty host selects the in-memory stores.
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"penny-challenge"`

	BaseURL      string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Penny Challenge <noreply@localhost>"`
	CORSOrigin   string `env:"CORS_ORIGIN" envDefault:"*"`

	GlobalRateLimit   int           `env:"RATE_LIMIT_GLOBAL" envDefault:"100"`
	GlobalRateWindow  time.Duration `env:"RATE_LIMIT_GLOBAL_WINDOW" envDefault:"1m"`
	SavedRateLimit    int           `env:"RATE_LIMIT_SAVED" envDefault:"20"`
	SavedRateWindow   time.Duration `env:"RATE_LIMIT_SAVED_WINDOW" envDefault:"60s"`
	RateSweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"1m"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Parse reads the environment, then applies the flags in args for any
// setting whose variable is unset.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("penny-api", flag.ContinueOnError)
	port := fs.String("p", cfg.Port, "HTTP port")
	dsn := fs.String("d", cfg.DatabaseURL, "postgres connection URL")
	backend := fs.String("b", cfg.Backend, "storage backend: memory, postgres or sqlite")
	sqlitePath := fs.String("sqlite", cfg.SQLitePath, "sqlite database file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	applyFlag := func(envKey string, dst *string, v string) {
		if _, set := os.LookupEnv(envKey); !set {
			*dst = v
		}
	}
	applyFlag("PORT", &cfg.Port, *port)
	applyFlag("DATABASE_URL", &cfg.DatabaseURL, *dsn)
	applyFlag("DATA_BACKEND", &cfg.Backend, *backend)
	applyFlag("SQLITE_PATH", &cfg.SQLitePath, *sqlitePath)

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// PostgresDSN prefers DATABASE_URL and otherwise assembles the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMemory, BackendPostgres:
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND %q must be one of memory, postgres, sqlite", c.Backend))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 16 && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("APP_BASE_URL %q must be an absolute URL", c.BaseURL))
	}

	if c.GlobalRateLimit < 1 || c.SavedRateLimit < 1 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.GlobalRateWindow <= 0 || c.SavedRateWindow <= 0 || c.RateSweepInterval <= 0 {
		errs = append(errs, errors.New("rate limit windows must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
