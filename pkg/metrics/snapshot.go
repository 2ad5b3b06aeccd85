package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SnapshotMetrics provides observability for snapshot export and import.
type SnapshotMetrics interface {
	// ObserveTransfer records one export or import.
	//
	// Parameters:
	//   - direction: "export" or "import"
	//   - sink: Sink type (e.g., "file", "s3")
	//   - items: Number of items written or restored
	//   - bytes: Size of the encoded snapshot document
	//   - duration: Time taken
	//   - err: Error if the transfer failed
	ObserveTransfer(direction, sink string, items int, bytes int64, duration time.Duration, err error)
}

type snapshotMetrics struct {
	transfersTotal   *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
	itemsTotal       *prometheus.CounterVec
	bytesTotal       *prometheus.CounterVec
}

// NewSnapshotMetrics creates a Prometheus-backed SnapshotMetrics instance, or
// a no-op one when metrics are disabled.
func NewSnapshotMetrics() SnapshotMetrics {
	if !IsEnabled() {
		return noopSnapshotMetrics{}
	}
	return newSnapshotMetrics(GetRegistry())
}

func newSnapshotMetrics(reg prometheus.Registerer) *snapshotMetrics {
	return &snapshotMetrics{
		transfersTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataroom_snapshot_transfers_total",
				Help: "Total number of snapshot transfers by direction, sink, and status",
			},
			[]string{"direction", "sink", "status"},
		),
		transferDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dataroom_snapshot_transfer_duration_seconds",
				Help: "Duration of snapshot transfers in seconds",
				Buckets: []float64{
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
					30.0,  // 30s
					120.0, // 2m
				},
			},
			[]string{"direction", "sink"},
		),
		itemsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataroom_snapshot_items_total",
				Help: "Total number of items exported or imported",
			},
			[]string{"direction"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataroom_snapshot_bytes_total",
				Help: "Total encoded snapshot bytes transferred",
			},
			[]string{"direction", "sink"},
		),
	}
}

func (m *snapshotMetrics) ObserveTransfer(direction, sink string, items int, bytes int64, duration time.Duration, err error) {
	m.transfersTotal.WithLabelValues(direction, sink, statusOf(err)).Inc()
	m.transferDuration.WithLabelValues(direction, sink).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.itemsTotal.WithLabelValues(direction).Add(float64(items))
	m.bytesTotal.WithLabelValues(direction, sink).Add(float64(bytes))
}

type noopSnapshotMetrics struct{}

func (noopSnapshotMetrics) ObserveTransfer(direction, sink string, items int, bytes int64, duration time.Duration, err error) {
}
