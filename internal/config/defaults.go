package config

import "time"

// Default values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5000
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogProfile      = "structured"
	DefaultMetricsPath     = "/metrics"
	DefaultStoreProvider   = "s3"
	DefaultChunkSize       = 1024
)

// defaults returns the default value of every key.
func defaults() map[string]any {
	return map[string]any{
		"server.host":              DefaultHost,
		"server.port":              DefaultPort,
		"server.read_timeout":      DefaultReadTimeout,
		"server.write_timeout":     DefaultWriteTimeout,
		"server.idle_timeout":      DefaultIdleTimeout,
		"server.shutdown_timeout":  DefaultShutdownTimeout,
		"logging.level":            DefaultLogLevel,
		"logging.profile":          DefaultLogProfile,
		"metrics.enabled":          true,
		"metrics.path":             DefaultMetricsPath,
		"cache.enabled":            true,
		"cache.single_flight":      false,
		"store.provider":           DefaultStoreProvider,
		"store.root":               "",
		"store.profile":            "",
		"store.region":             "",
		"store.endpoint":           "",
		"store.force_path_style":   false,
		"store.access_key_id":      "",
		"store.secret_access_key":  "",
		"store.max_keys":           0,
		"listing.rate_limit":       0.0,
		"download.chunk_size":      DefaultChunkSize,
		"index.include":            []string{},
		"index.exclude":            []string{},
		"index.include_hidden":     true,
		"health.bucket":            "",
	}
}
