package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceMetrics provides observability for folder and file service calls.
type ServiceMetrics interface {
	// RecordCall records a completed service call.
	//
	// Parameters:
	//   - operation: Service operation (e.g., "CreateFolder", "UploadFile")
	//   - outcome: "success" or the error kind of the failed result
	//   - duration: Time taken
	RecordCall(operation, outcome string, duration time.Duration)

	// RecordCascade records how many items a folder deletion removed.
	RecordCascade(deleted int)

	// RecordUpload records the decoded size of an accepted upload.
	RecordUpload(bytes int64)
}

type serviceMetrics struct {
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	cascadeSize   prometheus.Histogram
	uploadedBytes prometheus.Counter
}

// NewServiceMetrics creates a Prometheus-backed ServiceMetrics instance, or a
// no-op one when metrics are disabled.
func NewServiceMetrics() ServiceMetrics {
	if !IsEnabled() {
		return noopServiceMetrics{}
	}
	return newServiceMetrics(GetRegistry())
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	return &serviceMetrics{
		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataroom_service_calls_total",
				Help: "Total number of service calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dataroom_service_call_duration_seconds",
				Help:    "Duration of service calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cascadeSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dataroom_folder_cascade_items",
				Help:    "Number of items removed by a single folder deletion",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		uploadedBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dataroom_uploaded_bytes_total",
				Help: "Total decoded bytes accepted by file uploads",
			},
		),
	}
}

func (m *serviceMetrics) RecordCall(operation, outcome string, duration time.Duration) {
	m.callsTotal.WithLabelValues(operation, outcome).Inc()
	m.callDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *serviceMetrics) RecordCascade(deleted int) {
	m.cascadeSize.Observe(float64(deleted))
}

func (m *serviceMetrics) RecordUpload(bytes int64) {
	m.uploadedBytes.Add(float64(bytes))
}

type noopServiceMetrics struct{}

func (noopServiceMetrics) RecordCall(operation, outcome string, duration time.Duration) {}
func (noopServiceMetrics) RecordCascade(deleted int)                                    {}
func (noopServiceMetrics) RecordUpload(bytes int64)                                     {}
