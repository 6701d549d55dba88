package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config discovery at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		isolate(t)
		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "structured", cfg.Logging.Profile)

		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)

		assert.True(t, cfg.Cache.Enabled)
		assert.False(t, cfg.Cache.SingleFlight)

		assert.Equal(t, "s3", cfg.Store.Provider)
		assert.Equal(t, 0, cfg.Store.MaxKeys)
		assert.Equal(t, 1024, cfg.Download.ChunkSize)
		assert.Zero(t, cfg.Listing.RateLimit)
		assert.Empty(t, cfg.Index.Exclude)
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		isolate(t)
		overrides := map[string]any{
			"server": map[string]any{
				"port": 9000,
				"host": "127.0.0.1",
			},
			"logging": map[string]any{
				"level": "DEBUG",
			},
			"cache": map[string]any{
				"enabled": false,
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.Level, "levels are normalized")
		assert.False(t, cfg.Cache.Enabled)

		assert.Equal(t, "structured", cfg.Logging.Profile)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("SIMPLEINDEX_PORT", "3000")
		t.Setenv("SIMPLEINDEX_LOG_LEVEL", "warn")
		t.Setenv("SIMPLEINDEX_METRICS_ENABLED", "false")
		t.Setenv("SIMPLEINDEX_CACHE_SINGLE_FLIGHT", "true")
		t.Setenv("SIMPLEINDEX_PROFILE_NAME", "pypi")
		t.Setenv("SIMPLEINDEX_INDEX_EXCLUDE", "internal-*,**/*.tmp")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.False(t, cfg.Metrics.Enabled)
		assert.True(t, cfg.Cache.SingleFlight)
		assert.Equal(t, "pypi", cfg.Store.Profile)
		assert.Equal(t, []string{"internal-*", "**/*.tmp"}, cfg.Index.Exclude)
	})

	t.Run("LongEnvNames", func(t *testing.T) {
		isolate(t)
		t.Setenv("SIMPLEINDEX_SERVER_PORT", "3100")
		t.Setenv("SIMPLEINDEX_STORE_MAX_KEYS", "250")

		cfg, err := Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3100, cfg.Server.Port)
		assert.Equal(t, 250, cfg.Store.MaxKeys)
	})

	t.Run("ConfigPrecedence", func(t *testing.T) {
		isolate(t)
		t.Setenv("SIMPLEINDEX_PORT", "4000")

		overrides := map[string]any{
			"server": map[string]any{
				"port": 5500,
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)
		assert.Equal(t, 5500, cfg.Server.Port)
	})
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 6000
store:
  provider: file
  root: /srv/buckets
index:
  exclude:
    - internal-*
`), 0o644))

	t.Run("FileValues", func(t *testing.T) {
		cfg, err := LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 6000, cfg.Server.Port)
		assert.Equal(t, "file", cfg.Store.Provider)
		assert.Equal(t, "/srv/buckets", cfg.Store.Root)
		assert.Equal(t, []string{"internal-*"}, cfg.Index.Exclude)
	})

	t.Run("EnvBeatsFile", func(t *testing.T) {
		t.Setenv("SIMPLEINDEX_PORT", "6100")
		cfg, err := LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 6100, cfg.Server.Port)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := LoadFile(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestLoad_DiscoversFileInWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("simpleindex.yaml", []byte("server:\n  port: 7000\n"), 0o644))

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		overrides map[string]any
		contains  string
	}{
		{"bad port", map[string]any{"server": map[string]any{"port": 70000}}, "Port"},
		{"bad level", map[string]any{"logging": map[string]any{"level": "verbose"}}, "Level"},
		{"bad profile", map[string]any{"logging": map[string]any{"profile": "xml"}}, "Profile"},
		{"bad provider", map[string]any{"store": map[string]any{"provider": "gcs"}}, "Provider"},
		{"file without root", map[string]any{"store": map[string]any{"provider": "file"}}, "Root"},
		{"max keys too large", map[string]any{"store": map[string]any{"max_keys": 5000}}, "MaxKeys"},
		{"negative rate", map[string]any{"listing": map[string]any{"rate_limit": -1}}, "RateLimit"},
		{"zero chunk", map[string]any{"download": map[string]any{"chunk_size": 0}}, "ChunkSize"},
		{"half credentials", map[string]any{"store": map[string]any{"access_key_id": "AKIA"}}, "secret_access_key"},
		{"metrics path", map[string]any{"metrics": map[string]any{"path": ""}}, "metrics"},
		{"relative metrics path", map[string]any{"metrics": map[string]any{"path": "metrics"}}, "Path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(ctx, tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestEnv_ShortAndLongNames(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	t.Setenv("SIMPLEINDEX_PROFILE_NAME", "pypi")
	t.Setenv("SIMPLEINDEX_CACHE_ENABLED", "false")
	t.Setenv("SIMPLEINDEX_INDEX_INCLUDE", "public-*,shared-*")

	cfg, err := Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pypi", cfg.Store.Profile)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"public-*", "shared-*"}, cfg.Index.Include)
}

func TestDurationParsing(t *testing.T) {
	isolate(t)
	t.Setenv("SIMPLEINDEX_READ_TIMEOUT", "45s")
	t.Setenv("SIMPLEINDEX_SHUTDOWN_TIMEOUT", "5m")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.ShutdownTimeout)
}

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]any{
		"server": map[string]any{"port": 1, "nested": map[string]any{"x": true}},
		"top":    "v",
	})
	assert.Equal(t, map[string]any{
		"server.port":     1,
		"server.nested.x": true,
		"top":             "v",
	}, got)
}

func TestRedacted(t *testing.T) {
	cfg := Config{Store: StoreConfig{AccessKeyID: "AKIA", SecretAccessKey: "secret"}}
	r := cfg.Redacted()
	assert.Equal(t, "****", r.Store.AccessKeyID)
	assert.Equal(t, "****", r.Store.SecretAccessKey)
	assert.Equal(t, "secret", cfg.Store.SecretAccessKey)

	assert.Empty(t, Config{}.Redacted().Store.SecretAccessKey)
}
