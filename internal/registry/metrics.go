package registry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration results.
const (
	resultRegistered = "registered"
	resultDuplicate  = "duplicate"
	resultOverridden = "overridden"
	resultRejected   = "rejected"
	resultAmbiguous  = "ambiguous"
	resultInvalid    = "invalid"
)

// registryMetrics contains Prometheus metrics for registry construction.
type registryMetrics struct {
	registrations *prometheus.CounterVec
	frozenEntries prometheus.Gauge
}

var (
	registryMetricsInstance *registryMetrics
	registryMetricsOnce     sync.Once
)

// getRegistryMetrics returns the singleton registry metrics instance.
func getRegistryMetrics() *registryMetrics {
	registryMetricsOnce.Do(func() {
		registryMetricsInstance = &registryMetrics{
			registrations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "verroute",
					Subsystem: "registry",
					Name:      "registrations_total",
					Help:      "Total number of mapping registrations by result",
				},
				[]string{"result"},
			),
			frozenEntries: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "verroute",
					Subsystem: "registry",
					Name:      "frozen_entries",
					Help:      "Number of entries in the most recently frozen registry",
				},
			),
		}
	})
	return registryMetricsInstance
}
