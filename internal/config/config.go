package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	MinIO      MinIOConfig
	Storage    StorageConfig
	Pagination PaginationConfig
	Queue      QueueConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

// DatabaseConfig: thông số kết nối/pool nằm ở LoadDatabaseConfig
type DatabaseConfig struct {
	Password            string
	AutoMigrate         bool
	PoolMonitorInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool // false for local
}

// StorageConfig controls how stored ad images are exposed to clients.
type StorageConfig struct {
	// PublicURL is prepended to an object key to build the image URL.
	// The default "/media" yields a URL path; a reverse proxy maps it to the bucket.
	PublicURL      string
	MaxUploadBytes int64
}

type PaginationConfig struct {
	PageSize int // TOTAL_ON_PAGE
}

type QueueConfig struct {
	Enabled          bool
	Concurrency      int
	WorkerHealthPort string
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Classifieds API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Password:            getEnv("DB_PASSWORD", ""),
			AutoMigrate:         getEnvBool("DB_AUTO_MIGRATE", true),
			PoolMonitorInterval: getEnvDuration("DB_POOL_MONITOR_INTERVAL", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "classifieds"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Storage: StorageConfig{
			PublicURL:      strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", "/media"), "/"),
			MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_MB", 5)) * 1024 * 1024,
		},
		Pagination: PaginationConfig{
			PageSize: getEnvInt("TOTAL_ON_PAGE", 10),
		},
		Queue: QueueConfig{
			Enabled:          getEnvBool("QUEUE_ENABLED", true),
			Concurrency:      getEnvInt("QUEUE_CONCURRENCY", 5),
			WorkerHealthPort: getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("TOTAL_ON_PAGE must be positive, got %d", c.Pagination.PageSize)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_MB must be positive")
	}
	if c.Database.PoolMonitorInterval <= 0 {
		return fmt.Errorf("DB_POOL_MONITOR_INTERVAL must be positive")
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("MINIO_BUCKET must be set")
	}

	// Production environment phải có DB password
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.MinIO.SecretKey == "minioadmin" {
			return fmt.Errorf("MINIO_SECRET_KEY must be changed in production")
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
