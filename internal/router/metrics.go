package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values of the router metrics.
const (
	cacheHit      = "hit"
	cacheMiss     = "miss"
	cacheEviction = "eviction"
	matchNone     = "none"
)

// routerMetrics are process-wide: regex patterns and route tables are
// shared by every table generation.
type routerMetrics struct {
	regexCache     *prometheus.CounterVec
	regexCacheSize prometheus.Gauge
	matches        *prometheus.CounterVec
	compiledPaths  prometheus.Gauge
}

var (
	routerMetricsOnce     sync.Once
	routerMetricsInstance *routerMetrics
)

func getRouterMetrics() *routerMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = &routerMetrics{
			regexCache: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "verroute",
				Subsystem: "router",
				Name:      "regex_cache_events_total",
				Help:      "Regex cache events by kind (hit, miss, eviction)",
			}, []string{"event"}),
			regexCacheSize: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "verroute",
				Subsystem: "router",
				Name:      "regex_cache_size",
				Help:      "Current number of entries in the regex cache",
			}),
			matches: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "verroute",
				Subsystem: "router",
				Name:      "route_matches_total",
				Help:      "Route key lookups by the kind of path matcher that matched, or none",
			}, []string{"matcher"}),
			compiledPaths: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "verroute",
				Subsystem: "router",
				Name:      "compiled_paths",
				Help:      "Number of path patterns in the most recently compiled router",
			}),
		}
	})
	return routerMetricsInstance
}
