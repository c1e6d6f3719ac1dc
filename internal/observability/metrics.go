package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute is the label value used for requests that do not
// match any route key, ensuring bounded cardinality.
const UnmatchedRoute = "unmatched"

// Resolution outcomes recorded by RecordResolution.
const (
	OutcomeMatched       = "matched"
	OutcomeNoMatch       = "no_match"
	OutcomeRouteNotFound = "route_not_found"
)

// Metrics holds the router's Prometheus collectors. Each instance owns
// its registry, so tests can build as many as they need.
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	activeRequests    *prometheus.GaugeVec
	resolutionsTotal  *prometheus.CounterVec
	dispatchesTotal   *prometheus.CounterVec
	malformedVersions prometheus.Counter
	tableReloads      *prometheus.CounterVec
	tableEntries      prometheus.Gauge
	buildInfo         *prometheus.GaugeVec
	registry          *prometheus.Registry
}

var requestLabels = []string{"method", "route", "status"}

// NewMetrics registers the router metrics under namespace, "verroute"
// when empty.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "verroute"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "requests_total",
			Help: "Total number of HTTP requests",
		}, requestLabels),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBucketsRange(0.001, 10, 12),
		}, requestLabels),
		activeRequests: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_requests",
			Help: "Number of in-flight HTTP requests",
		}, []string{"method"}),
		resolutionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolutions_total",
			Help: "Version resolutions by route key and outcome",
		}, []string{"route", "outcome"}),
		dispatchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dispatches_total",
			Help: "Requests dispatched by handler and matched declared version",
		}, []string{"route", "handler", "version"}),
		malformedVersions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "malformed_versions_total",
			Help: "Requests whose version could not be parsed",
		}),
		tableReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "table_reloads_total",
			Help: "Route table reloads by result",
		}, []string{"result"}),
		tableEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "table_entries",
			Help: "Mapping entries in the live route table",
		}),
		buildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "build_info",
			Help: "Build information",
		}, []string{"version", "commit", "build_time"}),
	}

	f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "start_time_seconds",
		Help: "Start time in unix seconds",
	}).SetToCurrentTime()

	return m
}

// RecordRequest records a completed HTTP request. route must be a route
// key name or endpoint pattern, never the raw path.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// IncrementActiveRequests increments the active requests gauge.
func (m *Metrics) IncrementActiveRequests(method string) {
	m.activeRequests.WithLabelValues(method).Inc()
}

// DecrementActiveRequests decrements the active requests gauge.
func (m *Metrics) DecrementActiveRequests(method string) {
	m.activeRequests.WithLabelValues(method).Dec()
}

// RecordResolution records the outcome of a version resolution.
func (m *Metrics) RecordResolution(route, outcome string) {
	m.resolutionsTotal.WithLabelValues(route, outcome).Inc()
}

// RecordDispatch records a request dispatched to a handler. The version
// label is the declared version that matched, which keeps cardinality
// bounded by the route table.
func (m *Metrics) RecordDispatch(route, handler, version string) {
	m.dispatchesTotal.WithLabelValues(route, handler, version).Inc()
}

// RecordMalformedVersion records a request carrying a malformed version.
func (m *Metrics) RecordMalformedVersion() {
	m.malformedVersions.Inc()
}

// RecordTableReload records a route table reload attempt.
func (m *Metrics) RecordTableReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.tableReloads.WithLabelValues(result).Inc()
}

// SetTableEntries sets the number of entries in the live route table.
func (m *Metrics) SetTableEntries(n int) {
	m.tableEntries.Set(float64(n))
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler returns an HTTP handler for the metrics endpoint. It serves
// the router metrics together with the default registry, which carries
// the runtime collectors and package-level metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{m.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegisterCollector adds c to the registry. It panics if c is
// already registered.
func (m *Metrics) MustRegisterCollector(c prometheus.Collector) {
	m.registry.MustRegister(c)
}
