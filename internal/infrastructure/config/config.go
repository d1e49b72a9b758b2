package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
	Session   SessionConfig
	Snake     SnakeConfig
	Media     MediaConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// SessionsPerSecond caps session creation across all clients.
	SessionsPerSecond int `envconfig:"RATE_LIMIT_SESSIONS_RPS" default:"10"`
	SessionsBurst     int `envconfig:"RATE_LIMIT_SESSIONS_BURST" default:"20"`
}

// StorageConfig holds the preference store location.
type StorageConfig struct {
	Path string `envconfig:"DESKFOLIO_DB" default:"deskfolio.db"`
}

// CatalogConfig holds desktop content sources.
type CatalogConfig struct {
	Path     string `envconfig:"DESKFOLIO_CATALOG"`
	MediaDir string `envconfig:"MEDIA_DIR" default:"media"`
}

// SessionConfig holds visitor session limits.
type SessionConfig struct {
	IdleTTL        time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	Max            int           `envconfig:"SESSION_MAX" default:"1000"`
	RetainGeometry bool          `envconfig:"RETAIN_GEOMETRY" default:"false"`
}

// SnakeConfig holds game loop settings.
type SnakeConfig struct {
	Tick time.Duration `envconfig:"SNAKE_TICK" default:"120ms"`
}

// MediaConfig holds track probing settings.
type MediaConfig struct {
	ProbeTimeout time.Duration `envconfig:"MEDIA_PROBE_TIMEOUT" default:"3s"`
	ProbeEnabled bool          `envconfig:"MEDIA_PROBE_ENABLED" default:"true"`
}

// Load loads configuration from environment variables. Values from a .env
// file in the working directory are applied first without overriding the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
			SessionsPerSecond: 10,
			SessionsBurst:     20,
		},
		Storage: StorageConfig{
			Path: "deskfolio.db",
		},
		Catalog: CatalogConfig{
			MediaDir: "media",
		},
		Session: SessionConfig{
			IdleTTL: 30 * time.Minute,
			Max:     1000,
		},
		Snake: SnakeConfig{
			Tick: 120 * time.Millisecond,
		},
		Media: MediaConfig{
			ProbeTimeout: 3 * time.Second,
			ProbeEnabled: true,
		},
	}
}
