package listing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3leaps/simpleindex/pkg/provider"
)

// ListerConfig configures a Lister.
type ListerConfig struct {
	// MaxKeys is the page size requested from the provider.
	// Zero leaves the choice to the provider.
	MaxKeys int

	// RateLimit caps list requests per second. Zero means unlimited.
	RateLimit float64

	// Logger receives per-page debug logs. Nil disables logging.
	Logger *zap.Logger

	// Metrics receives page and enumeration observations. Nil disables them.
	Metrics Metrics
}

// Lister performs complete, paginated enumerations of object keys.
//
// A Lister is safe for concurrent use.
type Lister struct {
	provider provider.Provider
	maxKeys  int
	logger   *zap.Logger
	metrics  Metrics

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter
}

// NewLister creates a Lister over p.
func NewLister(p provider.Provider, cfg ListerConfig) *Lister {
	l := &Lister{
		provider: p,
		maxKeys:  cfg.MaxKeys,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.metrics == nil {
		l.metrics = NoopMetrics{}
	}
	if cfg.RateLimit > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return l
}

// List returns every key under key.Prefix in key.Bucket, in the order the
// provider returns them.
//
// Pages are requested until a response carries no continuation token. An
// empty bucket yields an empty, non-nil slice. Provider errors are returned
// unchanged and no partial result is returned.
func (l *Lister) List(ctx context.Context, key Key) ([]string, error) {
	start := time.Now()
	keys, pages, err := l.list(ctx, key)
	l.metrics.ObserveEnumeration(key.Bucket, len(keys), time.Since(start), err)
	if err != nil {
		l.logger.Debug("enumeration failed",
			zap.String("bucket", key.Bucket),
			zap.String("prefix", key.Prefix),
			zap.Int("pages", pages),
			zap.Error(err),
		)
		return nil, err
	}

	l.logger.Debug("enumeration complete",
		zap.String("bucket", key.Bucket),
		zap.String("prefix", key.Prefix),
		zap.Int("pages", pages),
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
	)
	return keys, nil
}

func (l *Lister) list(ctx context.Context, key Key) ([]string, int, error) {
	keys := make([]string, 0)
	var token string
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}
		if err := l.waitForRateLimit(ctx); err != nil {
			return nil, pages, err
		}

		pageStart := time.Now()
		result, err := l.provider.List(ctx, provider.ListOptions{
			Bucket:            key.Bucket,
			Prefix:            key.Prefix,
			ContinuationToken: token,
			MaxKeys:           l.maxKeys,
		})
		pages++
		if err != nil {
			l.metrics.ObservePage(key.Bucket, 0, time.Since(pageStart), err)
			return nil, pages, err
		}
		l.metrics.ObservePage(key.Bucket, len(result.Objects), time.Since(pageStart), nil)

		keys = append(keys, result.Keys()...)

		if result.ContinuationToken == "" {
			return keys, pages, nil
		}
		token = result.ContinuationToken
	}
}

// waitForRateLimit blocks until the rate limiter allows a request.
// Returns immediately if rate limiting is disabled.
func (l *Lister) waitForRateLimit(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
