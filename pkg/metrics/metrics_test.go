package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMetricsRecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newStoreMetrics(reg, "badger")

	m.RecordOperation("CreateItem", time.Millisecond, nil)
	m.RecordOperation("CreateItem", time.Millisecond, errors.New("boom"))
	m.RecordOperation("CreateItem", time.Millisecond, nil)
	m.SetItemCount(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("badger", "CreateItem", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("badger", "CreateItem", "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.items))
}

func TestServiceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newServiceMetrics(reg)

	m.RecordCall("DeleteFolder", "success", time.Millisecond)
	m.RecordCall("DeleteFolder", "not_found", time.Millisecond)
	m.RecordCascade(5)
	m.RecordUpload(1024)
	m.RecordUpload(1024)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsTotal.WithLabelValues("DeleteFolder", "not_found")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.uploadedBytes))
}

func TestSnapshotMetricsSkipsVolumeOnError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newSnapshotMetrics(reg)

	m.ObserveTransfer("export", "file", 3, 100, time.Second, nil)
	m.ObserveTransfer("export", "file", 9, 900, time.Second, errors.New("disk full"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.itemsTotal.WithLabelValues("export")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.bytesTotal.WithLabelValues("export", "file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfersTotal.WithLabelValues("export", "file", "error")))
}

func TestNoopWhenRegistryMissing(t *testing.T) {
	if IsEnabled() {
		t.Skip("global registry already initialized")
	}

	assert.IsType(t, noopStoreMetrics{}, NewStoreMetrics("memory"))
	assert.IsType(t, noopServiceMetrics{}, NewServiceMetrics())
	assert.IsType(t, noopSnapshotMetrics{}, NewSnapshotMetrics())
}

func TestServerHealthz(t *testing.T) {
	healthy := true
	srv := NewServer(ServerConfig{
		Port: 19090,
		Health: func(ctx context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("store closed")
		},
	})
	require.Equal(t, 19090, srv.Port())

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "store closed")
}

func TestServerDefaultsPort(t *testing.T) {
	srv := NewServer(ServerConfig{})
	assert.Equal(t, 9090, srv.Port())
}

func TestServerRateLimit(t *testing.T) {
	srv := NewServer(ServerConfig{RateLimit: 1, RateBurst: 1})

	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
