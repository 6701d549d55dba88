package cmd

import (
	"context"
	"fmt"

	"github.com/3leaps/simpleindex/internal/config"
	"github.com/3leaps/simpleindex/pkg/provider"
	"github.com/3leaps/simpleindex/pkg/provider/file"
	"github.com/3leaps/simpleindex/pkg/provider/s3"
)

// store is what the commands need from a provider: listing and download.
type store interface {
	provider.Provider
	provider.ObjectGetter
}

// newStore constructs the configured provider.
func newStore(ctx context.Context, cfg config.StoreConfig) (store, error) {
	switch provider.ProviderType(cfg.Provider) {
	case provider.ProviderFile:
		return file.New(file.Config{Root: cfg.Root})
	case provider.ProviderS3:
		return s3.New(ctx, s3.Config{
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			Profile:         cfg.Profile,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			// S3-compatible services (MinIO, moto) need path-style URLs.
			ForcePathStyle: cfg.ForcePathStyle || cfg.Endpoint != "",
			MaxKeys:        cfg.MaxKeys,
		})
	default:
		return nil, fmt.Errorf("unsupported store provider %q", cfg.Provider)
	}
}

// checkScheme rejects URIs whose scheme does not name the configured store.
func checkScheme(uri *ObjectURI, cfg config.StoreConfig) error {
	if uri.Provider != cfg.Provider {
		return exitError(ExitInvalidArgument, "URI scheme does not match store.provider",
			fmt.Errorf("%s:// given, store is %s", uri.Provider, cfg.Provider))
	}
	return nil
}

// storeErrorCode maps a provider failure to an exit code.
func storeErrorCode(err error) int {
	switch {
	case provider.IsNotFound(err), provider.IsBucketNotFound(err):
		return ExitNotFound
	case provider.IsAccessDenied(err), provider.IsInvalidCredentials(err):
		return ExitConfigError
	default:
		return ExitServiceUnavailable
	}
}
