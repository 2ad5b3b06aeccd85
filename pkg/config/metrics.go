package config

import (
	"context"

	"github.com/marmos91/dataroom/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// StoreMetrics instruments the item store (never nil, uses noop if disabled)
	StoreMetrics metrics.StoreMetrics

	// ServiceMetrics instruments the folder and file services (never nil)
	ServiceMetrics metrics.ServiceMetrics

	// SnapshotMetrics instruments exports and imports (never nil)
	SnapshotMetrics metrics.SnapshotMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server, probing health through the given function
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
//
// Parameters:
//   - cfg: The complete data room configuration
//   - health: Probed by /healthz (nil = always healthy)
//
// Returns:
//   - MetricsResult containing all metrics components
func InitializeMetrics(cfg *Config, health func(ctx context.Context) error) *MetricsResult {
	if cfg.Metrics.Enabled {
		// Initialize global Prometheus registry
		metrics.InitRegistry()
	}

	// Constructors fall back to no-op implementations when the registry
	// was not initialized
	result := &MetricsResult{
		StoreMetrics:    metrics.NewStoreMetrics(cfg.Store.Type),
		ServiceMetrics:  metrics.NewServiceMetrics(),
		SnapshotMetrics: metrics.NewSnapshotMetrics(),
	}

	if cfg.Metrics.Enabled {
		result.Server = metrics.NewServer(metrics.ServerConfig{
			Port:      cfg.Metrics.Port,
			Health:    health,
			RateLimit: cfg.Metrics.RateLimit,
			RateBurst: cfg.Metrics.RateBurst,
		})
	}

	return result
}
