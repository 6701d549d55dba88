package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/3leaps/simpleindex/internal/server/handlers"
	"github.com/3leaps/simpleindex/pkg/listing"
	"github.com/3leaps/simpleindex/pkg/provider"
)

const namespace = "simpleindex"

// Metrics is the Prometheus implementation of listing.Metrics and
// handlers.DownloadMetrics.
type Metrics struct {
	registry *prometheus.Registry

	listRequests        *prometheus.CounterVec
	listDuration        prometheus.Histogram
	enumerations        *prometheus.CounterVec
	enumerationDuration prometheus.Histogram
	enumerationKeys     prometheus.Histogram
	cacheLookups        *prometheus.CounterVec
	cacheEntries        prometheus.Gauge
	downloads           *prometheus.CounterVec
	downloadBytes       prometheus.Counter
}

var (
	_ listing.Metrics          = (*Metrics)(nil)
	_ handlers.DownloadMetrics = (*Metrics)(nil)
)

// NewMetrics registers the service metrics, plus Go and process collectors,
// on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(reg)
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		listRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "list_requests_total",
				Help:      "Remote list page requests by bucket and result",
			},
			[]string{"bucket", "status"},
		),
		listDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "list_request_duration_seconds",
				Help:      "Duration of remote list page requests",
				Buckets:   prometheus.DefBuckets,
			},
		),
		enumerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enumerations_total",
				Help:      "Complete paginated enumerations by bucket and result",
			},
			[]string{"bucket", "status"},
		),
		enumerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enumeration_duration_seconds",
				Help:      "Duration of complete paginated enumerations",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		enumerationKeys: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enumeration_keys",
				Help:      "Number of keys returned by successful enumerations",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "name_cache_lookups_total",
				Help:      "Name cache lookups by bucket and result (hit or miss)",
			},
			[]string{"bucket", "result"},
		),
		cacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "name_cache_entries",
				Help:      "Number of cached enumerations",
			},
		),
		downloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "File downloads by bucket and result",
			},
			[]string{"bucket", "status"},
		),
		downloadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "download_bytes_total",
				Help:      "Bytes streamed to download clients",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// status labels a result: "ok" or the provider error code.
func status(err error) string {
	if err == nil {
		return "ok"
	}
	return provider.Code(err)
}

func (m *Metrics) ObservePage(bucket string, _ int, duration time.Duration, err error) {
	m.listRequests.WithLabelValues(bucket, status(err)).Inc()
	m.listDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveEnumeration(bucket string, keys int, duration time.Duration, err error) {
	m.enumerations.WithLabelValues(bucket, status(err)).Inc()
	m.enumerationDuration.Observe(duration.Seconds())
	if err == nil {
		m.enumerationKeys.Observe(float64(keys))
	}
}

func (m *Metrics) RecordCacheHit(bucket string) {
	m.cacheLookups.WithLabelValues(bucket, "hit").Inc()
}

func (m *Metrics) RecordCacheMiss(bucket string) {
	m.cacheLookups.WithLabelValues(bucket, "miss").Inc()
}

func (m *Metrics) RecordCacheEntries(n int) {
	m.cacheEntries.Set(float64(n))
}

func (m *Metrics) ObserveDownload(bucket string, bytes int64, err error) {
	m.downloads.WithLabelValues(bucket, status(err)).Inc()
	m.downloadBytes.Add(float64(bytes))
}
