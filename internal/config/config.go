// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// data paths, model identifiers, timeouts and the optional artifact store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Embedding Configuration
	// The encoder MUST match the configuration that produced the stored
	// vectors; EmbedDimensions is verified against the loaded index at
	// startup and per query.
	EmbedAPIKey     string // API key for the embedding endpoint (required to serve)
	EmbedModel      string // Embedding model identity
	EmbedDimensions int    // Output vector dimension (default 384)

	// Generative Backend Configuration (all optional; absence = degraded mode)
	GeminiAPIKey string // Gemini API key for answer generation
	GroqAPIKey   string // Groq API key (fallback provider)
	GeminiModel  string // Gemini model for generation (default applies if empty)
	GroqModel    string // Groq model for generation (default applies if empty)

	// Retrieval Configuration
	DefaultTopK int // Default number of neighbors when the caller sends k <= 0

	// Timeouts
	GenerateTimeout time.Duration // Per-call budget for the generative backend
	ShutdownTimeout time.Duration

	// Server Configuration
	Port     string
	LogLevel string

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Data Configuration
	DataDir string // Directory holding the catalogue and serving artifacts

	// Indexer Configuration
	EmbedConcurrency int // Concurrent embedding requests during index builds

	// Artifact Store Configuration (optional S3-compatible bucket)
	Artifact ArtifactConfig
}

// ArtifactConfig holds the optional S3-compatible artifact store settings.
// All fields must be set together for the store to be enabled.
type ArtifactConfig struct {
	Endpoint    string
	AccessKeyID string
	SecretKey   string
	Bucket      string
}

// Enabled returns true if all artifact store fields are configured.
func (a ArtifactConfig) Enabled() bool {
	return a.Endpoint != "" && a.AccessKeyID != "" && a.SecretKey != "" && a.Bucket != ""
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		EmbedAPIKey:     getEnv("EMBED_API_KEY", ""),
		EmbedModel:      getEnv("EMBED_MODEL", "gemini-embedding-001"),
		EmbedDimensions: getIntEnv("EMBED_DIMENSIONS", 384),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
		GroqModel:    getEnv("GROQ_MODEL", ""),

		DefaultTopK: getIntEnv("DEFAULT_TOP_K", 5),

		GenerateTimeout: getDurationEnv("GENERATE_TIMEOUT", 20*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		Port:     getEnv("PORT", "10000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		DataDir: getEnv("DATA_DIR", "./data"),

		EmbedConcurrency: getIntEnv("EMBED_CONCURRENCY", 4),

		Artifact: ArtifactConfig{
			Endpoint:    getEnv("ARTIFACT_ENDPOINT", ""),
			AccessKeyID: getEnv("ARTIFACT_ACCESS_KEY_ID", ""),
			SecretKey:   getEnv("ARTIFACT_SECRET_KEY", ""),
			Bucket:      getEnv("ARTIFACT_BUCKET", ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.EmbedAPIKey == "" {
		errs = append(errs, errors.New("EMBED_API_KEY is required"))
	}
	if c.EmbedDimensions <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_DIMENSIONS must be positive, got %d", c.EmbedDimensions))
	}
	if c.DefaultTopK <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_TOP_K must be positive, got %d", c.DefaultTopK))
	}
	if c.GenerateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATE_TIMEOUT must be positive, got %v", c.GenerateTimeout))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_CONCURRENCY must be positive, got %d", c.EmbedConcurrency))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasGenerativeBackend returns true if at least one generation provider is configured.
// Absence is the supported degraded mode, not an error.
func (c *Config) HasGenerativeBackend() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// CataloguePath returns the full path to the program catalogue CSV file.
// The loader falls back to the .xlsx sibling when the CSV is unreadable.
func (c *Config) CataloguePath() string {
	return filepath.Join(c.DataDir, "universities_data.csv")
}

// EmbeddingsPath returns the full path to the embeddings artifact.
func (c *Config) EmbeddingsPath() string {
	return filepath.Join(c.DataDir, "embeddings.bin.gz")
}

// IndexPath returns the full path to the vector index artifact.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "flat_index.bin.gz")
}

// EmbedCachePath returns the full path to the indexer's embedding cache database.
func (c *Config) EmbedCachePath() string {
	return filepath.Join(c.DataDir, "embed_cache.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
