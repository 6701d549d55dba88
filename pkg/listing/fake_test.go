package listing

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/3leaps/simpleindex/pkg/provider"
)

// fakeProvider serves fixed key lists in pages of pageSize.
type fakeProvider struct {
	mu       sync.Mutex
	buckets  map[string][]string
	pageSize int

	// failAt makes the Nth List call (1-based) return failErr.
	failAt  int
	failErr error

	// gate, when set, blocks every List call until closed.
	gate    chan struct{}
	started chan struct{}

	calls    atomic.Int64
	requests []provider.ListOptions
}

func newFakeProvider(pageSize int) *fakeProvider {
	return &fakeProvider{buckets: make(map[string][]string), pageSize: pageSize}
}

func (f *fakeProvider) set(bucket string, keys ...string) {
	f.mu.Lock()
	f.buckets[bucket] = keys
	f.mu.Unlock()
}

func (f *fakeProvider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	n := f.calls.Add(1)

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, opts)

	if f.failAt > 0 && int(n) == f.failAt {
		return nil, f.failErr
	}

	all, ok := f.buckets[opts.Bucket]
	if !ok {
		return nil, &provider.ProviderError{Op: "List", Provider: "fake", Bucket: opts.Bucket, Err: provider.ErrBucketNotFound}
	}
	var matched []string
	for _, k := range all {
		if len(k) >= len(opts.Prefix) && k[:len(opts.Prefix)] == opts.Prefix {
			matched = append(matched, k)
		}
	}

	start := 0
	if opts.ContinuationToken != "" {
		start, _ = strconv.Atoi(opts.ContinuationToken)
	}
	end := start + f.pageSize
	if end > len(matched) {
		end = len(matched)
	}

	result := &provider.ListResult{}
	for _, k := range matched[start:end] {
		result.Objects = append(result.Objects, provider.ObjectSummary{Key: k, LastModified: time.Unix(0, 0)})
	}
	if end < len(matched) {
		result.IsTruncated = true
		result.ContinuationToken = strconv.Itoa(end)
	}
	return result, nil
}

func (f *fakeProvider) Head(ctx context.Context, bucket, key string) (*provider.ObjectMeta, error) {
	return nil, provider.ErrNotFound
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.ContinuationToken)
	}
	return out
}

// recordingMetrics counts observations.
type recordingMetrics struct {
	pages        atomic.Int64
	pageErrors   atomic.Int64
	enumerations atomic.Int64
	hits         atomic.Int64
	misses       atomic.Int64
	entries      atomic.Int64
}

func (m *recordingMetrics) ObservePage(_ string, _ int, _ time.Duration, err error) {
	m.pages.Add(1)
	if err != nil {
		m.pageErrors.Add(1)
	}
}

func (m *recordingMetrics) ObserveEnumeration(string, int, time.Duration, error) {
	m.enumerations.Add(1)
}

func (m *recordingMetrics) RecordCacheHit(string)  { m.hits.Add(1) }
func (m *recordingMetrics) RecordCacheMiss(string) { m.misses.Add(1) }
func (m *recordingMetrics) RecordCacheEntries(n int) {
	m.entries.Store(int64(n))
}

func numberedKeys(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i)
	}
	return out
}
