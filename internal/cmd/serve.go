package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/simpleindex/internal/config"
	"github.com/3leaps/simpleindex/internal/observability"
	"github.com/3leaps/simpleindex/internal/server"
	"github.com/3leaps/simpleindex/internal/server/handlers"
	"github.com/3leaps/simpleindex/pkg/listing"
	"github.com/3leaps/simpleindex/pkg/match"
	"github.com/3leaps/simpleindex/pkg/provider"
	"github.com/3leaps/simpleindex/pkg/simpleindex"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simple index over HTTP",
	Long: `Serve bucket and package index pages and stream wheel downloads.

Routes:
  GET /{bucket}/simple/                    packages in the bucket
  GET /{bucket}/simple/{package}/          wheels of one package
  GET /{bucket}/simple/{package}/{file}    download a wheel

Full bucket listings are cached for the life of the process unless
--no-key-cache is given.

Examples:
  simpleindex serve
  simpleindex serve --port 8080 --profile-name packages
  simpleindex serve --endpoint http://localhost:9000 --region us-east-1`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost        string
	servePort        int
	serveProfileName string
	serveNoKeyCache  bool
	serveRegion      string
	serveEndpoint    string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "Interface to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveProfileName, "profile-name", "", "AWS profile")
	serveCmd.Flags().BoolVar(&serveNoKeyCache, "no-key-cache", false, "Disable the bucket listing cache")
	serveCmd.Flags().StringVarP(&serveRegion, "region", "r", "", "AWS region")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Custom S3 endpoint")
}

func serveOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	flagOverride(cmd, overrides, "host", "server.host", serveHost)
	flagOverride(cmd, overrides, "port", "server.port", servePort)
	flagOverride(cmd, overrides, "profile-name", "store.profile", serveProfileName)
	flagOverride(cmd, overrides, "no-key-cache", "cache.enabled", !serveNoKeyCache)
	flagOverride(cmd, overrides, "region", "store.region", serveRegion)
	flagOverride(cmd, overrides, "endpoint", "store.endpoint", serveEndpoint)
	return overrides
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, serveOverrides(cmd))
	if err != nil {
		return err
	}
	logger := observability.CLILogger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		logger.Error("Failed to create store", zap.Error(err))
		return exitError(ExitServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = st.Close() }()

	srv, err := buildServer(cfg, st, logger)
	if err != nil {
		return err
	}

	handlers.InitHealthManager(versionInfo.Version)
	health := handlers.GetHealthManager()
	if cfg.Health.Bucket != "" {
		health.RegisterChecker("store", storeHealthChecker(st, cfg.Health.Bucket))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	health.SetStarted(true)

	logger.Info("Serving simple index",
		zap.String("addr", srv.Addr()),
		zap.String("provider", cfg.Store.Provider),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("single_flight", cfg.Cache.SingleFlight))

	select {
	case err := <-errCh:
		if err != nil {
			return exitError(ExitServiceUnavailable, "HTTP server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	if err := srv.Shutdown(context.Background()); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return exitError(ExitFailure, "Shutdown failed", err)
	}
	return <-errCh
}

// buildServer assembles the listing core and HTTP server over st.
func buildServer(cfg *config.Config, st store, logger *zap.Logger) (*server.Server, error) {
	var (
		metrics   listing.Metrics = listing.NoopMetrics{}
		downloads handlers.DownloadMetrics
		opts      []server.Option
	)
	if cfg.Metrics.Enabled {
		m := observability.NewMetrics()
		metrics, downloads = m, m
		opts = append(opts, server.WithMetrics(cfg.Metrics.Path, m.Handler()))
	}

	lister := listing.NewLister(st, listing.ListerConfig{
		MaxKeys:   cfg.Store.MaxKeys,
		RateLimit: cfg.Listing.RateLimit,
		Logger:    logger,
		Metrics:   metrics,
	})
	names := listing.NewService(lister, listing.NewNameCache(), listing.Config{
		CacheEnabled: cfg.Cache.Enabled,
		SingleFlight: cfg.Cache.SingleFlight,
		Logger:       logger,
		Metrics:      metrics,
	})

	visible, err := visibility(cfg.Index)
	if err != nil {
		return nil, exitError(ExitConfigError, "Invalid index visibility pattern", err)
	}

	opts = append(opts,
		server.WithLogger(logger),
		server.WithTimeouts(server.Timeouts{
			Read:     cfg.Server.ReadTimeout,
			Write:    cfg.Server.WriteTimeout,
			Idle:     cfg.Server.IdleTimeout,
			Shutdown: cfg.Server.ShutdownTimeout,
		}),
		server.WithIndex(simpleindex.New(names, visible)),
		server.WithDownloads(st, cfg.Download.ChunkSize, downloads),
	)
	return server.New(cfg.Server.Host, cfg.Server.Port, opts...), nil
}

// visibility builds the index page matcher, or nil when every key is shown.
func visibility(cfg config.IndexConfig) (*match.Matcher, error) {
	if len(cfg.Include) == 0 && len(cfg.Exclude) == 0 && cfg.IncludeHidden {
		return nil, nil
	}
	return match.New(match.Config{
		Includes:      cfg.Include,
		Excludes:      cfg.Exclude,
		IncludeHidden: cfg.IncludeHidden,
	})
}

// storeHealthChecker lists at most one key of bucket.
func storeHealthChecker(p provider.Provider, bucket string) handlers.HealthChecker {
	return handlers.HealthCheckerFunc(func(ctx context.Context) error {
		if _, err := p.List(ctx, provider.ListOptions{Bucket: bucket, MaxKeys: 1}); err != nil {
			return fmt.Errorf("list %s: %w", bucket, err)
		}
		return nil
	})
}
