// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key. Production refuses to
// start with it.
const DefaultJWTSecret = "super-secret-key"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port string `env:"APP_PORT" env-default:"5000"`
	Env  string `env:"APP_ENV" env-default:"development"` // "development", "production", "testing"

	// DatabaseURL selects the driver by scheme: postgres:// goes to pgx,
	// anything else is treated as a SQLite file DSN.
	DatabaseURL string `env:"DATABASE_URL" env-default:"file:blog.db"`

	// Bearer tokens
	JWTSecret string        `env:"JWT_SECRET" env-default:"super-secret-key"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"168h"`

	// Public base URL used to build thumbnail links and article QR codes.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:5000"`
	UploadDir     string `env:"UPLOAD_DIR" env-default:"static/uploads"`

	// S3-compatible object storage. When S3_BUCKET is empty, thumbnails
	// are written to UploadDir instead.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Valkey (Redis-compatible cache). Empty host disables caching.
	ValkeyHost     string        `env:"VALKEY_HOST"`
	ValkeyPort     string        `env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	CacheTTL       time.Duration `env:"CACHE_TTL" env-default:"1m"`

	// Gemini text generation
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	// OCR, translation and speech
	TesseractPath    string `env:"TESSERACT_PATH" env-default:"tesseract"`
	TranslateBaseURL string `env:"TRANSLATE_BASE_URL" env-default:"https://translate.googleapis.com"`
	TTSBaseURL       string `env:"TTS_BASE_URL" env-default:"https://translate.google.com"`
	ProxyRatePerMin  int    `env:"PROXY_RATE_PER_MIN" env-default:"30"`

	// Optional bootstrap admin, created when the admins table is empty.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from a .env file (if present) and the process
// environment, applying defaults for development where appropriate. Returns
// an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.JWTSecret == "" || cfg.JWTSecret == DefaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.ProxyRatePerMin <= 0 {
		return nil, fmt.Errorf("PROXY_RATE_PER_MIN must be positive, got %d", cfg.ProxyRatePerMin)
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// DatabaseDriver returns the database/sql driver name for DatabaseURL.
func (c *Config) DatabaseDriver() string {
	if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return "pgx"
	}
	return "sqlite3"
}

// CacheEnabled reports whether a Valkey host is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether thumbnails go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}
