package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics provides observability for item store operations.
//
// Example usage:
//
//	// With metrics enabled
//	m := metrics.NewStoreMetrics("badger")
//	s := store.WithMetrics(badgerStore, m)
//
//	// Without metrics (no-op)
//	s := store.WithMetrics(badgerStore, nil)
type StoreMetrics interface {
	// RecordOperation records a completed store operation with its name,
	// duration, and outcome.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "CreateItem", "GetItemsByParent")
	//   - duration: Time taken to complete the operation
	//   - err: Error if operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// SetItemCount updates the number of items last observed in the store.
	SetItemCount(count int64)
}

// storeMetrics is the Prometheus implementation of StoreMetrics.
type storeMetrics struct {
	storeType         string
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	items             prometheus.Gauge
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Parameters:
//   - storeType: Type of item store (e.g., "memory", "badger")
//     Used as a label to distinguish metrics from different store implementations.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics(storeType string) StoreMetrics {
	if !IsEnabled() {
		return noopStoreMetrics{}
	}
	return newStoreMetrics(GetRegistry(), storeType)
}

func newStoreMetrics(reg prometheus.Registerer, storeType string) *storeMetrics {
	return &storeMetrics{
		storeType: storeType,
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataroom_store_operations_total",
				Help: "Total number of item store operations by store type, operation, and status",
			},
			[]string{"store_type", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dataroom_store_operation_duration_seconds",
				Help: "Duration of item store operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.0005, // 500µs
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms
					1.0,    // 1s
				},
			},
			[]string{"store_type", "operation"},
		),
		items: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dataroom_store_items",
				Help: "Number of items observed in the store by the last full scan",
				ConstLabels: prometheus.Labels{
					"store_type": storeType,
				},
			},
		),
	}
}

func (m *storeMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	m.operationsTotal.WithLabelValues(m.storeType, operation, statusOf(err)).Inc()
	m.operationDuration.WithLabelValues(m.storeType, operation).Observe(duration.Seconds())
}

func (m *storeMetrics) SetItemCount(count int64) {
	m.items.Set(float64(count))
}

// noopStoreMetrics is a no-op implementation of StoreMetrics with zero overhead.
type noopStoreMetrics struct{}

func (noopStoreMetrics) RecordOperation(operation string, duration time.Duration, err error) {}
func (noopStoreMetrics) SetItemCount(count int64)                                            {}
