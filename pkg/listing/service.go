package listing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/3leaps/simpleindex/pkg/match"
)

// Config configures a Service.
type Config struct {
	// CacheEnabled is the default for calls that do not pass WithCache.
	CacheEnabled bool

	// SingleFlight collapses concurrent cache misses for the same key into
	// one enumeration. Results are identical either way.
	SingleFlight bool

	Logger  *zap.Logger
	Metrics Metrics
}

// DefaultConfig returns a Config with caching enabled.
func DefaultConfig() Config {
	return Config{CacheEnabled: true}
}

// Option adjusts a single Names call.
type Option func(*request)

type request struct {
	prefix    string
	hasPrefix bool
	pattern   string
	cache     *bool
}

// WithPrefix restricts the enumeration to keys starting with prefix.
// The prefix is part of the cache key; the pattern is not.
func WithPrefix(prefix string) Option {
	return func(r *request) {
		r.prefix = prefix
		r.hasPrefix = true
	}
}

// WithPattern filters the result with a shell-style pattern. The default is
// DefaultPattern.
func WithPattern(pattern string) Option {
	return func(r *request) {
		r.pattern = pattern
	}
}

// WithCache overrides Config.CacheEnabled for one call. Passing false
// bypasses the cache entirely: it is neither read nor written.
func WithCache(enabled bool) Option {
	return func(r *request) {
		r.cache = &enabled
	}
}

// Service answers "names in this bucket matching this pattern" queries,
// reusing cached enumerations where allowed.
type Service struct {
	lister  *Lister
	cache   *NameCache
	cfg     Config
	logger  *zap.Logger
	metrics Metrics
	group   singleflight.Group
}

// NewService creates a Service. A nil cache is replaced by an empty one.
func NewService(lister *Lister, cache *NameCache, cfg Config) *Service {
	if cache == nil {
		cache = NewNameCache()
	}
	s := &Service{
		lister:  lister,
		cache:   cache,
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	return s
}

// Cache returns the NameCache backing the service.
func (s *Service) Cache() *NameCache {
	return s.cache
}

// Names returns the keys in bucket matching the call's pattern, in store
// order.
//
// With caching in effect a cached enumeration is reused; on a miss the full
// enumeration is stored before filtering, so later calls with any pattern
// can reuse it. A failed enumeration is never cached. An empty result is not
// an error.
func (s *Service) Names(ctx context.Context, bucket string, opts ...Option) ([]string, error) {
	req := request{pattern: DefaultPattern}
	for _, opt := range opts {
		opt(&req)
	}

	key := Key{Bucket: bucket, Prefix: req.prefix, HasPrefix: req.hasPrefix}
	useCache := s.cfg.CacheEnabled
	if req.cache != nil {
		useCache = *req.cache
	}

	all, err := s.enumeration(ctx, key, useCache)
	if err != nil {
		return nil, err
	}
	return match.Filter(all, req.pattern), nil
}

func (s *Service) enumeration(ctx context.Context, key Key, useCache bool) ([]string, error) {
	if !useCache {
		return s.lister.List(ctx, key)
	}

	if names, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheHit(key.Bucket)
		s.logger.Debug("name cache hit", zap.Stringer("key", key), zap.Int("keys", len(names)))
		return names, nil
	}
	s.metrics.RecordCacheMiss(key.Bucket)

	if !s.cfg.SingleFlight {
		return s.enumerateAndStore(ctx, key)
	}

	// The flight outlives any single caller: it runs detached from the
	// leader's cancellation and each caller stops waiting on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flightKey(key), func() (interface{}, error) {
		// A flight that finished between our miss and DoChan already stored it.
		if names, ok := s.cache.Get(key); ok {
			return names, nil
		}
		return s.enumerateAndStore(flightCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight enumeration", zap.Stringer("key", key))
		}
		return res.Val.([]string), nil
	}
}

func (s *Service) enumerateAndStore(ctx context.Context, key Key) ([]string, error) {
	start := time.Now()
	names, err := s.lister.List(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, names)
	s.metrics.RecordCacheEntries(s.cache.Len())
	s.logger.Debug("name cache stored",
		zap.Stringer("key", key),
		zap.Int("keys", len(names)),
		zap.Duration("duration", time.Since(start)),
	)
	return names, nil
}

// flightKey encodes every Key field, so absent and empty prefixes never
// share a flight.
func flightKey(k Key) string {
	if !k.HasPrefix {
		return "0" + k.Bucket
	}
	return "1" + k.Bucket + "\x00" + k.Prefix
}
