package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache names used as label values.
const (
	CacheSubdirectories = "subdirectories"
	CacheFileEntries    = "file_entries"
)

// DirectoryMetrics provides observability for the lazy directory cache.
//
// This interface is optional - directories built without metrics use a no-op
// implementation.
type DirectoryMetrics interface {
	// RecordCacheHit records a listing served from a populated cache.
	RecordCacheHit(cache string)

	// RecordCacheMiss records a listing that had to populate the cache.
	RecordCacheMiss(cache string)

	// RecordPopulation records one remote population round (fetch + build)
	// with its duration and outcome.
	RecordPopulation(cache string, duration time.Duration, entries int, err error)

	// RecordSkippedEntry records a file entry dropped from a listing because
	// its lock could not be looked up.
	RecordSkippedEntry()

	// RecordInvalidation records an explicit cache invalidation.
	RecordInvalidation()
}

type directoryMetrics struct {
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	populationsTotal   *prometheus.CounterVec
	populationDuration *prometheus.HistogramVec
	populationEntries  *prometheus.HistogramVec
	skippedEntries     prometheus.Counter
	invalidations      prometheus.Counter
}

// NewDirectoryMetrics creates a Prometheus-backed DirectoryMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled.
func NewDirectoryMetrics() DirectoryMetrics {
	if !IsEnabled() {
		return NewNoopDirectoryMetrics()
	}

	reg := GetRegistry()

	return &directoryMetrics{
		cacheHits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittorepo_directory_cache_hits_total",
				Help: "Total number of listings served from a populated directory cache",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittorepo_directory_cache_misses_total",
				Help: "Total number of listings that required populating the directory cache",
			},
			[]string{"cache"},
		),
		populationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittorepo_directory_populations_total",
				Help: "Total number of directory cache populations by cache and status",
			},
			[]string{"cache", "status"},
		),
		populationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittorepo_directory_population_duration_seconds",
				Help: "Duration of directory cache populations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1,     // 1s
					5,     // 5s
				},
			},
			[]string{"cache"},
		),
		populationEntries: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittorepo_directory_population_entries",
				Help:    "Number of entries loaded per directory cache population",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"cache"},
		),
		skippedEntries: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittorepo_directory_skipped_entries_total",
				Help: "Total number of file entries skipped because their lock lookup failed",
			},
		),
		invalidations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dittorepo_directory_invalidations_total",
				Help: "Total number of explicit directory cache invalidations",
			},
		),
	}
}

func (m *directoryMetrics) RecordCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *directoryMetrics) RecordCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

func (m *directoryMetrics) RecordPopulation(cache string, duration time.Duration, entries int, err error) {
	m.populationsTotal.WithLabelValues(cache, statusLabel(err)).Inc()
	m.populationDuration.WithLabelValues(cache).Observe(duration.Seconds())
	if err == nil {
		m.populationEntries.WithLabelValues(cache).Observe(float64(entries))
	}
}

func (m *directoryMetrics) RecordSkippedEntry() {
	m.skippedEntries.Inc()
}

func (m *directoryMetrics) RecordInvalidation() {
	m.invalidations.Inc()
}

// NewNoopDirectoryMetrics returns a DirectoryMetrics that records nothing.
func NewNoopDirectoryMetrics() DirectoryMetrics {
	return noopDirectoryMetrics{}
}

type noopDirectoryMetrics struct{}

func (noopDirectoryMetrics) RecordCacheHit(cache string)  {}
func (noopDirectoryMetrics) RecordCacheMiss(cache string) {}
func (noopDirectoryMetrics) RecordPopulation(cache string, duration time.Duration, entries int, err error) {
}
func (noopDirectoryMetrics) RecordSkippedEntry()  {}
func (noopDirectoryMetrics) RecordInvalidation() {}
