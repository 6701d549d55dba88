// Package config loads service configuration from defaults, an optional
// YAML file, environment variables, and runtime overrides.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Listing  ListingConfig  `mapstructure:"listing" yaml:"listing"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Index    IndexConfig    `mapstructure:"index" yaml:"index"`
	Health   HealthConfig   `mapstructure:"health" yaml:"health"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`

	// Profile selects the encoder: structured (JSON) or console.
	Profile string `mapstructure:"profile" yaml:"profile" validate:"required,oneof=structured console"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"omitempty,startswith=/"`
}

// CacheConfig configures the name cache.
type CacheConfig struct {
	// Enabled is the default cache behaviour for listing calls.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// SingleFlight collapses concurrent misses for the same key.
	SingleFlight bool `mapstructure:"single_flight" yaml:"single_flight"`
}

// StoreConfig selects and configures the object store.
type StoreConfig struct {
	// Provider is s3 or file.
	Provider string `mapstructure:"provider" yaml:"provider" validate:"required,oneof=s3 file"`

	// Root is the directory of buckets for the file provider.
	Root string `mapstructure:"root" yaml:"root" validate:"required_if=Provider file"`

	Profile         string `mapstructure:"profile" yaml:"profile"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// MaxKeys is the list page size; 0 uses the provider default.
	MaxKeys int `mapstructure:"max_keys" yaml:"max_keys" validate:"min=0,max=1000"`
}

// ListingConfig configures remote enumeration.
type ListingConfig struct {
	// RateLimit caps list requests per second; 0 is unlimited.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
}

// DownloadConfig configures file streaming.
type DownloadConfig struct {
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size" validate:"gt=0"`
}

// IndexConfig configures which keys appear on index pages.
type IndexConfig struct {
	// Include holds doublestar patterns; when set, only matching keys are
	// listed on index pages.
	Include []string `mapstructure:"include" yaml:"include"`

	// Exclude holds doublestar patterns hidden from index pages.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`

	// IncludeHidden shows keys with a dot-prefixed segment. Defaults to true.
	IncludeHidden bool `mapstructure:"include_hidden" yaml:"include_hidden"`
}

// HealthConfig configures readiness checks.
type HealthConfig struct {
	// Bucket, when set, is listed (one key) by the readiness probe.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
}

const redacted = "****"

// Redacted returns a copy of c with credentials masked.
func (c Config) Redacted() Config {
	if c.Store.AccessKeyID != "" {
		c.Store.AccessKeyID = redacted
	}
	if c.Store.SecretAccessKey != "" {
		c.Store.SecretAccessKey = redacted
	}
	if len(c.Index.Include) > 0 {
		c.Index.Include = append([]string(nil), c.Index.Include...)
	}
	if len(c.Index.Exclude) > 0 {
		c.Index.Exclude = append([]string(nil), c.Index.Exclude...)
	}
	return c
}
