package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/simpleindex/internal/observability"
	"github.com/3leaps/simpleindex/pkg/listing"
	"github.com/3leaps/simpleindex/pkg/output"
	"github.com/3leaps/simpleindex/pkg/provider"
)

var listCmd = &cobra.Command{
	Use:   "list <uri>",
	Short: "List object names the way the index sees them",
	Long: `List every key under a bucket or prefix, filtered by a shell-style
pattern. '*' matches across '/', so "*.whl" matches wheels at any depth.

A wildcard in the URI is used as the pattern and its static part as the
listing prefix.

Examples:
  simpleindex list s3://my-bucket/
  simpleindex list s3://my-bucket/ --pattern '*/'
  simpleindex list 's3://my-bucket/requests/*.whl'
  simpleindex list file://pkgs/requests/ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var (
	listPattern    string
	listNoKeyCache bool
	listJSON       bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listPattern, "pattern", listing.DefaultPattern, "Shell-style pattern matched against whole keys")
	listCmd.Flags().BoolVar(&listNoKeyCache, "no-key-cache", false, "Bypass the listing cache")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSONL records")
}

func runList(cmd *cobra.Command, args []string) error {
	parsed, err := ParseURI(args[0])
	if err != nil {
		return exitError(ExitInvalidArgument, "Invalid URI", err)
	}
	pattern := listPattern
	if parsed.IsPattern() {
		if cmd.Flags().Changed("pattern") {
			return exitError(ExitInvalidArgument, "Conflicting patterns",
				fmt.Errorf("URI %s already carries a pattern; drop --pattern", parsed))
		}
		pattern = parsed.Pattern
	}

	overrides := map[string]any{}
	flagOverride(cmd, overrides, "no-key-cache", "cache.enabled", !listNoKeyCache)
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return err
	}
	if err := checkScheme(parsed, cfg.Store); err != nil {
		return err
	}
	logger := observability.CLILogger

	ctx := cmd.Context()
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return exitError(ExitServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = st.Close() }()

	lister := listing.NewLister(st, listing.ListerConfig{
		MaxKeys:   cfg.Store.MaxKeys,
		RateLimit: cfg.Listing.RateLimit,
		Logger:    logger,
	})
	svc := listing.NewService(lister, nil, listing.Config{
		CacheEnabled: cfg.Cache.Enabled,
		Logger:       logger,
	})

	opts := []listing.Option{listing.WithPattern(pattern)}
	if parsed.Key != "" {
		opts = append(opts, listing.WithPrefix(parsed.Key))
	}

	var w output.Writer
	if listJSON {
		jw := output.NewJSONLWriter(cmd.OutOrStdout(), uuid.New().String(), parsed.Provider)
		defer func() { _ = jw.Close() }()
		w = jw
	}

	start := time.Now()
	names, err := svc.Names(ctx, parsed.Bucket, opts...)
	if err != nil {
		logger.Error("Listing failed", zap.String("uri", parsed.String()), zap.Error(err))
		if w != nil {
			rec := &output.ErrorRecord{
				Code:    provider.Code(err),
				Message: err.Error(),
				Bucket:  parsed.Bucket,
				Prefix:  parsed.Key,
			}
			if werr := w.WriteError(ctx, rec); werr != nil {
				logger.Debug("Failed to emit error record", zap.Error(werr))
			}
		}
		return exitError(storeErrorCode(err), "Failed to list objects", err)
	}

	if w == nil {
		for _, name := range names {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return exitError(ExitIOError, "Failed to write output", err)
			}
		}
		return nil
	}

	for _, name := range names {
		if err := w.WriteKey(ctx, &output.KeyRecord{Bucket: parsed.Bucket, Key: name}); err != nil {
			return exitError(ExitIOError, "Failed to write key record", err)
		}
	}
	elapsed := time.Since(start)
	if err := w.WriteSummary(ctx, &output.SummaryRecord{
		Bucket:        parsed.Bucket,
		Prefix:        parsed.Key,
		Pattern:       pattern,
		Keys:          int64(len(names)),
		Duration:      elapsed,
		DurationHuman: elapsed.Round(time.Millisecond).String(),
	}); err != nil {
		return exitError(ExitIOError, "Failed to write summary record", err)
	}
	return nil
}
