package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes
const (
	AuthModeAuth0  = "auth0"
	AuthModeHS256  = "hs256"
	StoreRemote    = "remote"
	StorePostgres  = "postgres"
	defaultTimeout = 30 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Auth
	AuthMode      string
	Auth0Domain   string
	Auth0Audience string
	JWTSecret     string

	// Store
	StoreBackend  string
	RemoteAPIURL  string
	RemoteTimeout time.Duration
	DatabaseURL   string

	// Sessions
	SaveDebounce   time.Duration
	SaveTimeout    time.Duration
	SessionIdleTTL time.Duration

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// S3 Storage
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string        // Optional: for MinIO/LocalStack local dev
	URLExpiry       time.Duration // Lifetime of export download links
}

// Enabled reports whether snapshot export is configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		AuthMode:      strings.ToLower(getEnv("AUTH_MODE", AuthModeHS256)),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreRemote)),
		RemoteAPIURL:  getEnv("REMOTE_API_URL", "http://localhost:5000"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""), // Empty = export disabled
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	var err error
	if cfg.RemoteTimeout, err = getDuration("REMOTE_TIMEOUT", defaultTimeout); err != nil {
		return nil, err
	}
	if cfg.SaveDebounce, err = getDuration("SAVE_DEBOUNCE", 800*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SaveTimeout, err = getDuration("SAVE_TIMEOUT", defaultTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.S3.URLExpiry, err = getDuration("S3_URL_EXPIRY", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 300); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 30); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthMode {
	case AuthModeAuth0:
		if c.Auth0Domain == "" {
			return fmt.Errorf("AUTH0_DOMAIN is required")
		}
		if c.Auth0Audience == "" {
			return fmt.Errorf("AUTH0_AUDIENCE is required")
		}
	case AuthModeHS256:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeAuth0, AuthModeHS256, c.AuthMode)
	}

	switch c.StoreBackend {
	case StoreRemote:
		if c.RemoteAPIURL == "" {
			return fmt.Errorf("REMOTE_API_URL is required")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreRemote, StorePostgres, c.StoreBackend)
	}

	if c.SaveDebounce <= 0 {
		return fmt.Errorf("SAVE_DEBOUNCE must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
