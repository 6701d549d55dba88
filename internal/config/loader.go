package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "SIMPLEINDEX"

	// ConfigName is the base name of the config file.
	ConfigName = "simpleindex"
)

// shortEnv holds the short-form variables that do not follow the
// PREFIX_SECTION_KEY convention.
var shortEnv = map[string]string{
	"HOST":              "server.host",
	"PORT":              "server.port",
	"READ_TIMEOUT":      "server.read_timeout",
	"WRITE_TIMEOUT":     "server.write_timeout",
	"IDLE_TIMEOUT":      "server.idle_timeout",
	"SHUTDOWN_TIMEOUT":  "server.shutdown_timeout",
	"LOG_LEVEL":         "logging.level",
	"LOG_PROFILE":       "logging.profile",
	"PROFILE_NAME":      "store.profile",
	"REGION":            "store.region",
	"ENDPOINT":          "store.endpoint",
	"ACCESS_KEY_ID":     "store.access_key_id",
	"SECRET_ACCESS_KEY": "store.secret_access_key",
	"RATE_LIMIT":        "listing.rate_limit",
	"CHUNK_SIZE":        "download.chunk_size",
}

// Load builds the configuration without an explicit config file.
// Overrides take precedence over every other source.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	return LoadFile(ctx, "", overrides...)
}

// LoadFile builds the configuration, reading path when it is non-empty and
// otherwise searching the working directory and the user config directory
// for simpleindex.yaml.
//
// Precedence, highest first: overrides, environment, file, defaults.
func LoadFile(ctx context.Context, path string, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		for key, value := range flatten("", o) {
			v.Set(key, value)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func automaticName(path string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// bindEnv binds every key to its full variable name and, when it has one,
// its short name. The short name is checked first.
func bindEnv(v *viper.Viper) error {
	short := make(map[string]string, len(shortEnv))
	for name, path := range shortEnv {
		short[path] = EnvPrefix + "_" + name
	}
	for path := range defaults() {
		names := []string{path}
		if s, ok := short[path]; ok {
			names = append(names, s)
		}
		names = append(names, automaticName(path))
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind env for %s: %w", path, err)
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := getConfigDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/simpleindex or ~/.config/simpleindex.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", ConfigName)
}

// flatten turns nested override maps into dotted keys.
func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Profile = strings.ToLower(strings.TrimSpace(cfg.Logging.Profile))
	cfg.Store.Provider = strings.ToLower(strings.TrimSpace(cfg.Store.Provider))
}
