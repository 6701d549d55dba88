package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/simpleindex/internal/observability"
)

var getCmd = &cobra.Command{
	Use:   "get <uri>",
	Short: "Download a single object",
	Long: `Stream one object to stdout or a file, reading download.chunk_size
bytes at a time as the download route does.

Examples:
  simpleindex get s3://my-bucket/requests/requests-2.31.0-py3-none-any.whl -o requests.whl`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var getOutput string

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write to file instead of stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	parsed, err := ParseURI(args[0])
	if err != nil {
		return exitError(ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.IsPattern() || parsed.IsPrefix() {
		return exitError(ExitInvalidArgument, "get requires an exact object key",
			fmt.Errorf("provide an exact object URI (no wildcard, no trailing '/'): %s", parsed))
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := checkScheme(parsed, cfg.Store); err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return exitError(ExitServiceUnavailable, "Failed to connect to storage provider", err)
	}
	defer func() { _ = st.Close() }()

	body, size, err := st.GetObject(ctx, parsed.Bucket, parsed.Key)
	if err != nil {
		return exitError(storeErrorCode(err), "Failed to get object", err)
	}
	defer func() { _ = body.Close() }()

	dst := cmd.OutOrStdout()
	if getOutput != "" {
		f, err := os.Create(getOutput)
		if err != nil {
			return exitError(ExitIOError, "Failed to create output file", err)
		}
		defer func() { _ = f.Close() }()
		dst = f
	}

	n, err := io.CopyBuffer(dst, body, make([]byte, cfg.Download.ChunkSize))
	if err != nil {
		return exitError(ExitIOError, "Failed to copy object", err)
	}
	observability.CLILogger.Debug("Object downloaded",
		zap.String("uri", parsed.String()),
		zap.Int64("bytes", n),
		zap.Int64("size", size))
	return nil
}
