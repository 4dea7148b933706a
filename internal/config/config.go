package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Model weights: either a local path or a URL to fetch into the cache dir.
	ModelPath       string
	ModelConfigPath string
	ModelURL        string
	ModelConfigURL  string
	ModelCacheDir   string

	// Optional label file overriding the built-in COCO table.
	LabelsPath string

	Device   string // "auto", "cpu" or "cuda"
	PoolSize int

	DetectionThreshold float64
	MaxObjects         int

	// Azure blob weights source, used when both values are set.
	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// UseAzureWeights reports whether weights should be fetched from Azure blob storage.
func (c *Config) UseAzureWeights() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Best-effort .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "3006"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		ModelPath:       os.Getenv("MODEL_PATH"),
		ModelConfigPath: os.Getenv("MODEL_CONFIG_PATH"),
		ModelURL:        os.Getenv("MODEL_URL"),
		ModelConfigURL:  os.Getenv("MODEL_CONFIG_URL"),
		ModelCacheDir:   getEnvOrDefault("MODEL_CACHE_DIR", defaultCacheDir()),

		LabelsPath: os.Getenv("LABELS_PATH"),

		Device:   getEnvOrDefault("DEVICE", "auto"),
		PoolSize: int(parseIntOrDefault("POOL_SIZE", 1)),

		DetectionThreshold: parseFloatOrDefault("DETECTION_THRESHOLD", 0.5),
		MaxObjects:         int(parseIntOrDefault("MAX_OBJECTS", 10)),

		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.RequestTimeout)
	}
	if cfg.ModelPath == "" && cfg.ModelURL == "" {
		return nil, fmt.Errorf("either MODEL_PATH or MODEL_URL must be set")
	}
	switch cfg.Device {
	case "auto", "cpu", "cuda":
	default:
		return nil, fmt.Errorf("invalid DEVICE: %q (want auto, cpu or cuda)", cfg.Device)
	}
	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("POOL_SIZE must be >= 1 (got %d)", cfg.PoolSize)
	}
	if cfg.DetectionThreshold < 0 {
		return nil, fmt.Errorf("DETECTION_THRESHOLD must be >= 0 (got %g)", cfg.DetectionThreshold)
	}
	if cfg.MaxObjects < 0 {
		return nil, fmt.Errorf("MAX_OBJECTS must be >= 0 (got %d)", cfg.MaxObjects)
	}
	return cfg, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + string(os.PathSeparator) + "object-recognizer"
	}
	return ".cache"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
