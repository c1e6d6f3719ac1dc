package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/verroute/internal/observability"
)

// BreakerConfig configures the circuit breaker around a proxy handler.
type BreakerConfig struct {
	// Threshold is the request count at which the failure ratio starts
	// being checked.
	Threshold int
	// Timeout is how long the breaker stays open before a trial request.
	Timeout time.Duration
}

// tripRatio is the failure ratio that opens the breaker.
const tripRatio = 0.5

type breakerMetrics struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

var (
	breakerMetricsOnce     sync.Once
	breakerMetricsInstance *breakerMetrics
)

func getBreakerMetrics() *breakerMetrics {
	breakerMetricsOnce.Do(func() {
		breakerMetricsInstance = &breakerMetrics{
			transitions: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "verroute",
				Subsystem: "proxy",
				Name:      "circuit_breaker_transitions_total",
				Help:      "Proxy circuit breaker state changes",
			}, []string{"handler", "from", "to"}),
			rejected: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "verroute",
				Subsystem: "proxy",
				Name:      "circuit_breaker_rejected_total",
				Help:      "Requests rejected by an open proxy circuit breaker",
			}, []string{"handler"}),
		}
	})
	return breakerMetricsInstance
}

// upstreamStatusError marks a 5xx answer as a breaker failure.
type upstreamStatusError int

func (e upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream answered %d", int(e))
}

// breakerHandler counts 5xx responses of next as failures and answers
// 503 while the breaker is open.
type breakerHandler struct {
	name   string
	next   http.Handler
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

func newBreakerHandler(name string, next http.Handler, cfg BreakerConfig, logger observability.Logger) *breakerHandler {
	h := &breakerHandler{name: name, next: next, logger: logger}
	threshold := uint32(max(cfg.Threshold, 1)) //nolint:gosec // validated non-negative

	h.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Timeout,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= threshold &&
				float64(c.TotalFailures)/float64(c.Requests) >= tripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			h.logger.Warn("circuit breaker state change",
				observability.String("handler", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			getBreakerMetrics().transitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return h
}

func (h *breakerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sw := &statusWriter{ResponseWriter: w}
	_, err := h.cb.Execute(func() (interface{}, error) {
		h.next.ServeHTTP(sw, r)
		if sw.status >= http.StatusInternalServerError {
			return nil, upstreamStatusError(sw.status)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		getBreakerMetrics().rejected.WithLabelValues(h.name).Inc()
		h.logger.WithContext(r.Context()).Warn("circuit breaker rejected request",
			observability.String("handler", h.name),
			observability.String("state", h.cb.State().String()),
		)
		writeJSONError(w, http.StatusServiceUnavailable, "backend circuit open")
	}
}

// State returns the breaker state.
func (h *breakerHandler) State() gobreaker.State {
	return h.cb.State()
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
