package config

import (
	"github.com/marmos91/dittorepo/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Directory records directory cache activity (never nil, uses noop if disabled)
	Directory metrics.DirectoryMetrics

	// Repository records repository round trips (never nil, uses noop if disabled)
	Repository metrics.RepositoryMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
//
// Prometheus collectors register once per process, so call this once.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Directory:  metrics.NewNoopDirectoryMetrics(),
			Repository: metrics.NewNoopRepositoryMetrics(),
		}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server:     metrics.NewServer(metrics.ServerConfig{Port: cfg.Metrics.Port}),
		Directory:  metrics.NewDirectoryMetrics(),
		Repository: metrics.NewRepositoryMetrics(cfg.Repository.Type),
	}
}
