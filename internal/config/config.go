// Package config loads canvascore process configuration from the
// environment, with optional YAML file support.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries every tunable the process reads at startup.
type Config struct {
	Storage Storage `yaml:"storage"`
	Blob    Blob    `yaml:"blob"`
	Stream  Stream  `yaml:"stream"`
}

// Storage selects and parameterizes the persistent store backend.
type Storage struct {
	Driver      string `yaml:"driver" env:"CANVASCORE_STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath  string `yaml:"sqlite_path" env:"CANVASCORE_SQLITE_PATH" env-default:"canvascore.db"`
	PostgresDSN string `yaml:"postgres_dsn" env:"CANVASCORE_POSTGRES_DSN"`
}

// Blob selects and parameterizes the blob store used for workspace exports.
type Blob struct {
	Driver      string `yaml:"driver" env:"CANVASCORE_BLOB_DRIVER" env-default:"fs"`
	FSRoot      string `yaml:"fs_root" env:"CANVASCORE_BLOB_FS_ROOT" env-default:"./blobdata"`
	S3Bucket    string `yaml:"s3_bucket" env:"CANVASCORE_BLOB_S3_BUCKET"`
	S3Region    string `yaml:"s3_region" env:"CANVASCORE_BLOB_S3_REGION" env-default:"us-east-1"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"CANVASCORE_BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `yaml:"s3_path_style" env:"CANVASCORE_BLOB_S3_PATH_STYLE"`
}

// Stream parameterizes the optional Kafka envelope publisher. Publishing is
// disabled when Brokers is empty.
type Stream struct {
	Brokers []string `yaml:"brokers" env:"CANVASCORE_KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"CANVASCORE_KAFKA_TOPIC" env-default:"canvascore.events"`
}

// Validate rejects combinations the backends cannot open.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage driver postgres requires CANVASCORE_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "memory":
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("blob driver s3 requires CANVASCORE_BLOB_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if len(c.Stream.Brokers) > 0 && c.Stream.Topic == "" {
		return fmt.Errorf("kafka brokers configured without a topic")
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file path comes from
// CANVASCORE_CONFIG_PATH; when unset, configuration is loaded from ENV and
// defaults only.
func Load() (Config, error) {
	var cfg Config
	path := os.Getenv("CANVASCORE_CONFIG_PATH")
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: read env: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}
