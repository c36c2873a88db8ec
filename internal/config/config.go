package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// AI backend
	AIBackendURL      string
	AIBackendAPIKey   string
	AIBackendTimeout  time.Duration
	AIValidateTimeout time.Duration

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseImagesBucket  string
	SupabaseAvatarsBucket string

	// Database
	DatabaseURL string

	// Rate limiting
	RedisURL           string
	RateLimitPerMinute int
	RateLimitBurst     int

	// Processing
	UploadConcurrency int
	MaxImageBytes     int64

	// Server
	Port        string
	Environment string
	BaseURL     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AIBackendURL:    getEnv("AI_BACKEND_URL", "http://localhost:8000"),
		AIBackendAPIKey: getEnv("AI_BACKEND_API_KEY", ""),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseImagesBucket:  getEnv("SUPABASE_IMAGES_BUCKET", "generated-images"),
		SupabaseAvatarsBucket: getEnv("SUPABASE_AVATARS_BUCKET", "user-content"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	var err error
	if cfg.AIBackendTimeout, err = getEnvDuration("AI_BACKEND_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AIValidateTimeout, err = getEnvDuration("AI_VALIDATE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 3); err != nil {
		return nil, err
	}
	if cfg.UploadConcurrency, err = getEnvInt("UPLOAD_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("MAX_IMAGE_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageBytes = int64(maxBytes)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AIBackendURL == "" {
		return fmt.Errorf("AI_BACKEND_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be at least 1")
	}
	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0 and RATE_LIMIT_BURST >= 1")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether gin should run in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 5m: %w", key, err)
	}
	return d, nil
}
