package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFS       = "fs"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Config selects and configures a storage backend.
type Config struct {
	Driver      string   `yaml:"driver"`
	Path        string   `yaml:"path"`
	RedisURL    string   `yaml:"redis_url"`
	PostgresURL string   `yaml:"postgres_url"`
	S3          S3Config `yaml:"s3"`
	// Format is the codec format documents are written in; fs and s3 use it
	// as the file extension.
	Format string `yaml:"format"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

// Validate validates the storage configuration.
func (c *Config) Validate() error {
	if c.Driver == "" {
		c.Driver = DriverFS
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(DriverMemory, DriverFS, DriverSQLite, DriverRedis, DriverPostgres, DriverS3)),
		validation.Field(&c.Path, validation.When(c.Driver == DriverFS || c.Driver == DriverSQLite, validation.Required)),
		validation.Field(&c.RedisURL, validation.When(c.Driver == DriverRedis, validation.Required)),
		validation.Field(&c.PostgresURL, validation.When(c.Driver == DriverPostgres, validation.Required)),
		validation.Field(&c.Format, validation.In("json", "yaml", "yml")),
	)
	if err != nil {
		return err
	}
	if c.Driver == DriverS3 {
		return c.S3.Validate()
	}
	return nil
}

// Validate validates the S3 configuration.
func (c *S3Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
	)
}

// Ext returns the file extension matching the configured format.
func (c *Config) Ext() string {
	if c.Format == "yaml" || c.Format == "yml" {
		return ".yaml"
	}
	return ".json"
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFS, "":
		return NewFS(cfg.Path, cfg.Ext())
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create sqlite dir: %w", err)
		}
		return OpenSQLite(ctx, cfg.Path)
	case DriverRedis:
		return NewRedis(ctx, cfg.RedisURL)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresURL)
	case DriverS3:
		return NewS3(ctx, cfg.S3, cfg.Ext())
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}
