package listing

import "time"

// Metrics receives observations from the Lister and Service.
//
// Implementations must be safe for concurrent use. A nil Metrics in a config
// is replaced by a no-op implementation.
type Metrics interface {
	// ObservePage records one remote list request.
	ObservePage(bucket string, keys int, duration time.Duration, err error)

	// ObserveEnumeration records a complete (or failed) multi-page listing.
	ObserveEnumeration(bucket string, keys int, duration time.Duration, err error)

	// RecordCacheHit records a Service lookup served from the NameCache.
	RecordCacheHit(bucket string)

	// RecordCacheMiss records a Service lookup that had to enumerate.
	RecordCacheMiss(bucket string)

	// RecordCacheEntries records the current number of cached enumerations.
	RecordCacheEntries(n int)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObservePage(string, int, time.Duration, error)        {}
func (NoopMetrics) ObserveEnumeration(string, int, time.Duration, error) {}
func (NoopMetrics) RecordCacheHit(string)                                {}
func (NoopMetrics) RecordCacheMiss(string)                               {}
func (NoopMetrics) RecordCacheEntries(int)                               {}
