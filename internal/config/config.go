package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"

	SnapshotBackendLocal = "local"
	SnapshotBackendS3    = "s3"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"5000"`
	Environment string `envconfig:"ENV" default:"development"`
	BodyLimitMB int    `envconfig:"BODY_LIMIT_MB" default:"10"`
	StaticDir   string `envconfig:"STATIC_DIR" default:"static"`

	// RateLimitPerMinute caps /api requests per client IP; 0 disables it.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	// User store
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"`
	UserDataFile string `envconfig:"USER_DATA_FILE" default:"user_data.json"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`

	// Provider
	ProviderType     string        `envconfig:"PROVIDER_TYPE" default:"deepface"`
	DeepFaceURL      string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel    string        `envconfig:"DEEPFACE_MODEL" default:"Dlib"`
	DeepFaceDetector string        `envconfig:"DEEPFACE_DETECTOR" default:"dlib"`
	DeepFaceTimeout  time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`
	DeepFaceRetries  int           `envconfig:"DEEPFACE_RETRIES" default:"0"`

	// Snapshots
	SnapshotBackend string `envconfig:"SNAPSHOT_BACKEND" default:"local"`
	ImageDir        string `envconfig:"IMAGE_DIR" default:"static/images"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint      string `envconfig:"S3_ENDPOINT"`
	S3Prefix        string `envconfig:"S3_PREFIX" default:"images"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that depend on the selected backends.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendFile:
		if c.UserDataFile == "" {
			return errors.New("USER_DATA_FILE is required for the file store")
		}
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (supported: %s, %s)", c.StoreBackend, StoreBackendFile, StoreBackendPostgres)
	}

	switch c.SnapshotBackend {
	case SnapshotBackendLocal:
		if c.ImageDir == "" {
			return errors.New("IMAGE_DIR is required for local snapshots")
		}
	case SnapshotBackendS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 snapshots")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q (supported: %s, %s)", c.SnapshotBackend, SnapshotBackendLocal, SnapshotBackendS3)
	}

	if c.BodyLimitMB <= 0 {
		return errors.New("BODY_LIMIT_MB must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
