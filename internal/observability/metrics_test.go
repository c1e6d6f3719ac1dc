package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		namespace string
	}{
		{name: "with custom namespace", namespace: "custom"},
		{name: "with empty namespace uses default", namespace: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMetrics(tt.namespace)

			assert.NotNil(t, m.requestsTotal)
			assert.NotNil(t, m.resolutionsTotal)
			assert.NotNil(t, m.dispatchesTotal)
			assert.NotNil(t, m.Registry())
		})
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordRequest("GET", "GET /users", 200, 15*time.Millisecond)
	m.RecordRequest("GET", "GET /users", 200, 20*time.Millisecond)
	m.RecordRequest("GET", UnmatchedRoute, 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues("GET", "GET /users", "200"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.requestsTotal.WithLabelValues("GET", UnmatchedRoute, "404"),
	))
}

func TestMetrics_ActiveRequests(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.IncrementActiveRequests("GET")
	m.IncrementActiveRequests("GET")
	m.DecrementActiveRequests("GET")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRequests.WithLabelValues("GET")))
}

func TestMetrics_ResolutionAndDispatch(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordResolution("GET /users", OutcomeMatched)
	m.RecordResolution("GET /users", OutcomeNoMatch)
	m.RecordResolution("GET /users", OutcomeNoMatch)
	m.RecordDispatch("GET /users", "users-v2", "2.0")
	m.RecordMalformedVersion()

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.resolutionsTotal.WithLabelValues("GET /users", OutcomeMatched),
	))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.resolutionsTotal.WithLabelValues("GET /users", OutcomeNoMatch),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.dispatchesTotal.WithLabelValues("GET /users", "users-v2", "2.0"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.malformedVersions))
}

func TestMetrics_TableReload(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.RecordTableReload(true)
	m.RecordTableReload(false)
	m.RecordTableReload(false)
	m.SetTableEntries(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tableReloads.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tableReloads.WithLabelValues("failure")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.tableEntries))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("verroute")
	m.SetBuildInfo("1.0.0", "abc123", "2026-01-01")
	m.RecordResolution("GET /users", OutcomeMatched)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "verroute_build_info")
	assert.Contains(t, body, "verroute_resolutions_total")
	assert.Contains(t, body, "verroute_start_time_seconds")
}

func TestMetrics_MustRegisterCollector(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})

	assert.NotPanics(t, func() { m.MustRegisterCollector(counter) })
	assert.Panics(t, func() { m.MustRegisterCollector(counter) })
}
