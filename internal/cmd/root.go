// Package cmd implements the simpleindex command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/simpleindex/internal/config"
	"github.com/3leaps/simpleindex/internal/observability"
	"github.com/3leaps/simpleindex/internal/server/handlers"
)

// versionInfo is set by main from build flags.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "simpleindex",
	Short: "Serve a Python simple package index from an object store",
	Long: `simpleindex serves PEP 503 "simple" index pages for wheels stored in an
S3 bucket (or a local directory of buckets).

Each top-level grouping in a bucket is a package:

  s3://my-bucket/requests/requests-2.31.0-py3-none-any.whl

is served at /my-bucket/simple/requests/ for pip:

  pip install --index-url http://localhost:5000/my-bucket/simple/ requests`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./simpleindex.yaml, then $XDG_CONFIG_HOME/simpleindex/simpleindex.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// SetVersionInfo records build metadata for the version command and the
// /version endpoint.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	handlers.SetVersionInfo(version, commit, buildDate)
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// loadConfig resolves the configuration for cmd, applying overrides and the
// persistent --log-level flag, and initializes the CLI logger from it.
func loadConfig(cmd *cobra.Command, overrides map[string]any) (*config.Config, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if logLevel != "" {
		overrides["logging.level"] = logLevel
	}

	cfg, err := config.LoadFile(cmd.Context(), cfgFile, overrides)
	if err != nil {
		return nil, exitError(ExitConfigError, "Invalid configuration", err)
	}
	if err := observability.InitCLILogger(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return nil, exitError(ExitConfigError, "Failed to initialize logger", err)
	}
	observability.CLILogger.Debug("Configuration loaded",
		zap.String("provider", cfg.Store.Provider),
		zap.Bool("cache_enabled", cfg.Cache.Enabled))
	return cfg, nil
}

// flagOverride copies a flag into overrides under key when the user set it.
func flagOverride(cmd *cobra.Command, overrides map[string]any, flag, key string, value any) {
	if cmd.Flags().Changed(flag) {
		overrides[key] = value
	}
}
