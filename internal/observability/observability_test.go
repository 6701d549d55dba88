package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/simpleindex/pkg/provider"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		profile string
		wantErr bool
	}{
		{"info", "structured", false},
		{"DEBUG", "console", false},
		{"warn", "", false},
		{"verbose", "structured", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.profile, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.profile)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger("warn", "structured")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(1))
}

func TestInitCLILogger(t *testing.T) {
	original := CLILogger
	defer func() { CLILogger = original }()

	require.NoError(t, InitCLILogger("debug", "console"))
	assert.NotSame(t, original, CLILogger)

	require.Error(t, InitCLILogger("nope", "console"))
}

func TestMetrics(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())
	throttled := &provider.ProviderError{Op: "List", Provider: provider.ProviderS3, Err: provider.ErrThrottled}

	m.ObservePage("pkgs", 10, time.Millisecond, nil)
	m.ObservePage("pkgs", 0, time.Millisecond, throttled)
	m.ObserveEnumeration("pkgs", 10, time.Second, nil)
	m.RecordCacheHit("pkgs")
	m.RecordCacheHit("pkgs")
	m.RecordCacheMiss("pkgs")
	m.RecordCacheEntries(3)
	m.ObserveDownload("pkgs", 2048, nil)
	m.ObserveDownload("pkgs", 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.listRequests.WithLabelValues("pkgs", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listRequests.WithLabelValues("pkgs", "THROTTLED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.enumerations.WithLabelValues("pkgs", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("pkgs", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("pkgs", "miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.cacheEntries))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.downloadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloads.WithLabelValues("pkgs", "INTERNAL_ERROR")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordCacheEntries(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simpleindex_name_cache_entries 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
