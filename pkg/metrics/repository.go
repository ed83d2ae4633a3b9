package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RepositoryMetrics provides observability for remote repository round trips.
type RepositoryMetrics interface {
	// RecordCall records a completed remote call.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "GetFileByPath", "ListChildren")
	//   - duration: Time taken to complete the call
	//   - err: Error if the call failed, nil if successful
	RecordCall(operation string, duration time.Duration, err error)

	// RecordThrottled records time spent waiting on the rate limiter.
	RecordThrottled(operation string, wait time.Duration)
}

type repositoryMetrics struct {
	clientType    string
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	throttledWait *prometheus.HistogramVec
}

// NewRepositoryMetrics creates a Prometheus-backed RepositoryMetrics instance.
//
// Parameters:
//   - clientType: Type of repository client (e.g., "memory", "badger", "s3")
//     used as a label to distinguish implementations.
//
// Returns a no-op implementation if metrics are not enabled.
func NewRepositoryMetrics(clientType string) RepositoryMetrics {
	if !IsEnabled() {
		return NewNoopRepositoryMetrics()
	}

	reg := GetRegistry()

	return &repositoryMetrics{
		clientType: clientType,
		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittorepo_repository_calls_total",
				Help: "Total number of remote repository calls by client type, operation, and status",
			},
			[]string{"client_type", "operation", "status"},
		),
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittorepo_repository_call_duration_seconds",
				Help: "Duration of remote repository calls in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.001,  // 1ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.25,   // 250ms
					0.5,    // 500ms
					1.0,    // 1s
					5.0,    // 5s
				},
			},
			[]string{"client_type", "operation"},
		),
		throttledWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittorepo_repository_throttle_wait_seconds",
				Help:    "Time spent waiting on the repository rate limiter in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"client_type", "operation"},
		),
	}
}

func (m *repositoryMetrics) RecordCall(operation string, duration time.Duration, err error) {
	m.callsTotal.WithLabelValues(m.clientType, operation, statusLabel(err)).Inc()
	m.callDuration.WithLabelValues(m.clientType, operation).Observe(duration.Seconds())
}

func (m *repositoryMetrics) RecordThrottled(operation string, wait time.Duration) {
	m.throttledWait.WithLabelValues(m.clientType, operation).Observe(wait.Seconds())
}

// NewNoopRepositoryMetrics returns a RepositoryMetrics that records nothing.
func NewNoopRepositoryMetrics() RepositoryMetrics {
	return noopRepositoryMetrics{}
}

type noopRepositoryMetrics struct{}

func (noopRepositoryMetrics) RecordCall(operation string, duration time.Duration, err error) {}
func (noopRepositoryMetrics) RecordThrottled(operation string, wait time.Duration)          {}
