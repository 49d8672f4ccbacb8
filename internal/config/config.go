// Package config loads service settings from the environment
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Forecast ForecastConfig
	LogLevel string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr               string
	CORSOrigin         string
	MaxMultipartMemory int64
	ShutdownTimeout    time.Duration
}

// StorageConfig holds the upload directory and catalog locations
type StorageConfig struct {
	UploadDir       string
	CatalogDir      string
	DatasetCacheTTL time.Duration
}

// ForecastConfig holds model execution settings
type ForecastConfig struct {
	Timeout     time.Duration
	WorkerCount int
	RateLimit   float64
	RateBurst   int
}

// Load reads the configuration, first loading a .env file when present.
// envFiles overrides the default ".env" lookup.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load(envFiles...)

	maxMemory, err := getInt64Env("MAX_MULTIPART_MEMORY", 32<<20)
	if err != nil {
		return nil, err
	}

	shutdown, err := getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getDurationEnv("DATASET_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	timeout, err := getDurationEnv("FORECAST_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	workers, err := getIntEnv("WORKER_COUNT", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	rateLimit, err := getFloatEnv("FORECAST_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	rateBurst, err := getIntEnv("FORECAST_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:               getEnv("SERVER_ADDR", ":8000"),
			CORSOrigin:         getEnv("CORS_ORIGIN", "http://localhost:3000"),
			MaxMultipartMemory: maxMemory,
			ShutdownTimeout:    shutdown,
		},
		Storage: StorageConfig{
			UploadDir:       getEnv("UPLOAD_DIR", "data/uploads"),
			CatalogDir:      getEnv("CATALOG_DIR", "data/catalog"),
			DatasetCacheTTL: cacheTTL,
		},
		Forecast: ForecastConfig{
			Timeout:     timeout,
			WorkerCount: workers,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.Storage.CatalogDir == "" {
		return fmt.Errorf("CATALOG_DIR must not be empty")
	}
	if c.Forecast.Timeout <= 0 {
		return fmt.Errorf("FORECAST_TIMEOUT must be positive, got %s", c.Forecast.Timeout)
	}
	if c.Forecast.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.Forecast.WorkerCount)
	}
	if c.Forecast.RateLimit <= 0 {
		return fmt.Errorf("FORECAST_RATE_LIMIT must be positive, got %v", c.Forecast.RateLimit)
	}
	if c.Forecast.RateBurst < 1 {
		return fmt.Errorf("FORECAST_RATE_BURST must be at least 1, got %d", c.Forecast.RateBurst)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getInt64Env(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
