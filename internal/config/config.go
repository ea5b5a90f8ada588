package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	AppEnv       string `envconfig:"APP_ENV" default:"development"`
	ServerPort   int    `envconfig:"PORT" default:"8080"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data/erp.db"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// JWTSecret signs and verifies access tokens (HS256).
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// RecheckUser makes every authenticated request confirm the token's user
	// still exists and is active.
	RecheckUser bool `envconfig:"AUTH_RECHECK_USER" default:"false"`

	// RedisAddr selects the Redis revocation store when set; otherwise revoked
	// tokens are kept in SQLite.
	RedisAddr               string `envconfig:"REDIS_ADDR"`
	RevocationPurgeSchedule string `envconfig:"REVOCATION_PURGE_SCHEDULE" default:"*/15 * * * *"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`
	LoginRateLimit     int      `envconfig:"LOGIN_RATE_LIMIT" default:"10"`

	SeedData bool `envconfig:"SEED_DATA" default:"true"`
}

const devSecret = "dev-secret-change-me-in-production"

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" && c.IsDevelopment() {
		c.JWTSecret = devSecret
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be provided when APP_ENV is %q", c.AppEnv)
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return errors.New("PORT is out of range")
	}
	for i, origin := range c.CORSAllowedOrigins {
		c.CORSAllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return nil
}

// IsDevelopment reports whether the application runs in development, the
// only environment allowed to fall back to the built-in secret.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
