package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vyrodovalexey/verroute/internal/config"
	"github.com/vyrodovalexey/verroute/internal/observability"
)

const (
	testTimeout = 5 * time.Second
	testTick    = 10 * time.Millisecond
)

func ordersConfig() *config.RouteTableConfig {
	return tableConfig(
		staticMapping("orders-v1", "GET", "/orders", "v1", "1.0"),
		staticMapping("orders-v2", "GET", "/orders", "v2", "2.0"),
		staticMapping("items-v1", "GET", "/items/{id}", "items-v1", "1.0"),
		staticMapping("items-plain", "GET", "/items/{id}", "items-plain"),
	)
}

func newTestServer(t *testing.T, cfg *config.RouteTableConfig, opts ...Option) *Server {
	t.Helper()
	s := New(ServerConfig{MetricsEnabled: true}, opts...)
	if cfg != nil {
		require.NoError(t, s.Load(cfg))
	}
	return s
}

func do(s *Server, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Dispatch(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	tests := []struct {
		name           string
		target         string
		header         http.Header
		status         int
		body           string
		handler        string
		matchedVersion string
	}{
		{
			name:           "newest compatible version",
			target:         "/orders?version=2.5",
			status:         http.StatusOK,
			body:           "v2",
			handler:        "orders-v2",
			matchedVersion: "2.0",
		},
		{
			name:           "older client",
			target:         "/orders?version=1.5",
			status:         http.StatusOK,
			body:           "v1",
			handler:        "orders-v1",
			matchedVersion: "1.0",
		},
		{
			name:           "version from header",
			target:         "/orders",
			header:         http.Header{"X-Version": []string{"2.0"}},
			status:         http.StatusOK,
			body:           "v2",
			handler:        "orders-v2",
			matchedVersion: "2.0",
		},
		{
			name:   "version too old",
			target: "/orders?version=0.9",
			status: http.StatusNotFound,
		},
		{
			name:   "no version and no plain entry",
			target: "/orders",
			status: http.StatusNotFound,
		},
		{
			name:    "plain fallback without version",
			target:  "/items/7",
			status:  http.StatusOK,
			body:    "items-plain",
			handler: "items-plain",
		},
		{
			name:           "versioned beats plain",
			target:         "/items/7?version=1.2",
			status:         http.StatusOK,
			body:           "items-v1",
			handler:        "items-v1",
			matchedVersion: "1.0",
		},
		{
			name:    "malformed version falls back to plain",
			target:  "/items/7?version=1",
			status:  http.StatusOK,
			body:    "items-plain",
			handler: "items-plain",
		},
		{
			name:   "route not found",
			target: "/unknown",
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(s, http.MethodGet, tt.target, tt.header)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
			assert.Equal(t, tt.handler, rec.Header().Get(ResolvedHandlerHeader))
			assert.Equal(t, tt.matchedVersion, rec.Header().Get(MatchedVersionHeader))
			assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestServer_NoMatchBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	rec := do(s, http.MethodGet, "/orders?version=0.5&clientType=ios", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no compatible version", body["error"])
	assert.Equal(t, "GET /orders", body["route"])
	assert.Equal(t, "0.5", body["version"])
	assert.Equal(t, "ios", body["group"])
}

func TestServer_MethodNotDeclared(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	rec := do(s, http.MethodPost, "/orders?version=2.0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get(ResolvedHandlerHeader))
}

func TestServer_RequestIDPropagated(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	rec := do(s, http.MethodGet, "/orders?version=1.0", http.Header{"x-request-id": []string{"req-123"}})
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestServer_NotLoaded(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/orders", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/readyz", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/_routes", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", nil).Code)
}

func TestServer_Ready(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	rec := do(s, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "test", status.Table)
	assert.Equal(t, 4, status.Entries)
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())

	rec := do(s, http.MethodGet, "/_routes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RoutesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Table)
	assert.Equal(t, "lexical", resp.Comparator)
	require.Len(t, resp.Routes, 2)

	byRoute := map[string]RouteInfo{}
	for _, r := range resp.Routes {
		byRoute[r.Route] = r
	}
	orders, ok := byRoute["GET /orders"]
	require.True(t, ok)
	require.Len(t, orders.Entries, 2)
	assert.Equal(t, "orders-v1", orders.Entries[0].Handler)
	assert.Equal(t, "1.0", orders.Entries[0].Versions[0].Value)
}

func TestServer_Reload(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("reload_test")
	s := newTestServer(t, ordersConfig(), WithMetrics(metrics))
	first := s.Table()

	// An ambiguous table is rejected and the live table stays.
	bad := tableConfig(
		staticMapping("a", "GET", "/orders", "a", "1.0"),
		staticMapping("b", "GET", "/orders", "b", "1.0"),
	)
	require.Error(t, s.Reload(bad))
	assert.Same(t, first, s.Table())
	assert.Equal(t, "v1", do(s, http.MethodGet, "/orders?version=1.0", nil).Body.String())

	next := tableConfig(staticMapping("orders-v3", "GET", "/orders", "v3", "3.0"))
	require.NoError(t, s.Reload(next))
	assert.NotSame(t, first, s.Table())

	rec := do(s, http.MethodGet, "/orders?version=3.1", nil)
	assert.Equal(t, "v3", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/orders?version=1.0", nil).Code)

	metricsRec := do(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, metricsRec.Code)
	text := metricsRec.Body.String()
	assert.Contains(t, text, `reload_test_table_reloads_total{result="failure"} 1`)
	assert.Contains(t, text, `reload_test_table_reloads_total{result="success"} 1`)
	assert.Contains(t, text, "reload_test_table_entries 1")
}

func TestServer_SwapUnderLoad(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, ordersConfig())
	v3, err := BuildTable(tableConfig(
		staticMapping("orders-v1", "GET", "/orders", "v1", "1.0"),
		staticMapping("orders-v3", "GET", "/orders", "v3", "3.0"),
	), TableOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 25 {
				s.Swap(v3)
			}
			rec := do(s, http.MethodGet, "/orders?version=1.0", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "v1", rec.Body.String())
		}(i)
	}
	wg.Wait()

	assert.Same(t, v3, s.Table())
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics("dispatch_test")
	s := newTestServer(t, ordersConfig(), WithMetrics(metrics))

	do(s, http.MethodGet, "/orders?version=2.0", nil)
	do(s, http.MethodGet, "/orders?version=0.1", nil)
	do(s, http.MethodGet, "/items/1?version=x", nil)
	do(s, http.MethodGet, "/nowhere", nil)

	text := do(s, http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, text, `dispatch_test_resolutions_total{outcome="matched",route="GET /orders"} 1`)
	assert.Contains(t, text, `dispatch_test_resolutions_total{outcome="no_match",route="GET /orders"} 1`)
	assert.Contains(t, text, `dispatch_test_resolutions_total{outcome="route_not_found",route="unmatched"} 1`)
	assert.Contains(t, text, `dispatch_test_dispatches_total{handler="orders-v2",route="GET /orders",version="2.0"} 1`)
	assert.Contains(t, text, "dispatch_test_malformed_versions_total 1")
	assert.Contains(t, text, `dispatch_test_requests_total{method="GET",route="GET /orders",status="200"} 1`)
	assert.Contains(t, text, `dispatch_test_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	t.Parallel()

	s := New(ServerConfig{MetricsEnabled: false}, WithMetrics(observability.NewMetrics("disabled_test")))
	require.NoError(t, s.Load(ordersConfig()))

	// The metrics path falls through to the dispatcher.
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/metrics", nil).Code)
}

func TestServer_ResolveSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	s := newTestServer(t, ordersConfig(),
		WithTracer(observability.NewTracerWithProvider(provider, "test")),
	)

	do(s, http.MethodGet, "/orders?version=2.0", nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	var resolve, server sdktrace.ReadOnlySpan
	for _, sp := range spans {
		if sp.Name() == ResolveSpanName {
			resolve = sp
		} else {
			server = sp
		}
	}
	require.NotNil(t, resolve)
	require.NotNil(t, server)
	assert.Equal(t, "GET /orders", server.Name())
	assert.Equal(t, server.SpanContext().SpanID(), resolve.Parent().SpanID())

	attrs := map[string]string{}
	for _, kv := range resolve.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "orders-v2", attrs["verroute.handler"])
	assert.Equal(t, "2.0", attrs["verroute.matched_version"])
}

func TestServer_ProxyBackend(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "upstream:"+r.URL.Path)
	}))
	t.Cleanup(upstream.Close)

	cfg := tableConfig(config.Mapping{
		Name:     "orders-v2",
		Methods:  []string{"GET"},
		Paths:    []string{"/api/orders/{id}"},
		Versions: []config.VersionConfig{{Value: "2.0"}},
		Backend:  config.BackendConfig{Proxy: &config.ProxyBackend{URL: upstream.URL, StripPrefix: "/api"}},
	})
	s := newTestServer(t, cfg)
	front := httptest.NewServer(s.Handler())
	t.Cleanup(front.Close)

	resp, err := http.Get(front.URL + "/api/orders/9?version=2.1")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream:/orders/9", string(body))
	assert.Equal(t, "orders-v2", resp.Header.Get(ResolvedHandlerHeader))
}

func TestServer_ProxyBreakerKeepsResolution(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	cfg := tableConfig(config.Mapping{
		Name:     "orders-v2",
		Methods:  []string{"GET"},
		Paths:    []string{"/orders"},
		Versions: []config.VersionConfig{{Value: "2.0"}},
		Backend: config.BackendConfig{Proxy: &config.ProxyBackend{
			URL:            upstream.URL,
			CircuitBreaker: &config.CircuitBreakerConfig{Enabled: true, Threshold: 2},
		}},
	})
	s := newTestServer(t, cfg)
	front := httptest.NewServer(s.Handler())
	t.Cleanup(front.Close)

	var codes []int
	for range 3 {
		resp, err := http.Get(front.URL + "/orders?version=2.0")
		require.NoError(t, err)
		_ = resp.Body.Close()

		codes = append(codes, resp.StatusCode)
		assert.Equal(t, "orders-v2", resp.Header.Get(ResolvedHandlerHeader))
		assert.Equal(t, "2.0", resp.Header.Get(MatchedVersionHeader))
	}
	assert.Equal(t, []int{
		http.StatusInternalServerError,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}, codes)
}

func TestServerConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ordersConfig()
	cfg.Spec.Listen.Address = "127.0.0.1"
	cfg.Spec.Observability = &config.ObservabilityConfig{
		Metrics: &config.MetricsConfig{Enabled: true, Path: "/stats"},
	}

	sc := ServerConfigFrom(cfg)
	assert.Equal(t, "127.0.0.1", sc.Address)
	assert.Equal(t, config.DefaultPort, sc.Port)
	assert.Equal(t, config.DefaultReadTimeout, sc.ReadTimeout)
	assert.Equal(t, config.DefaultShutdownTimeout, sc.ShutdownTimeout)
	assert.True(t, sc.MetricsEnabled)
	assert.Equal(t, "/stats", sc.MetricsPath)
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	s := New(ServerConfig{Address: "127.0.0.1", Port: 0})
	require.NoError(t, s.Load(ordersConfig()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	require.Eventually(t, s.IsRunning, testTimeout, testTick)
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, <-errCh)
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServer_StopBeforeServe(t *testing.T) {
	t.Parallel()

	s := New(ServerConfig{Address: "127.0.0.1", Port: 0})
	require.NoError(t, s.Listen(context.Background()))
	require.True(t, s.IsRunning())
	require.NotNil(t, s.Addr())
	assert.Error(t, s.Listen(context.Background()))

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Serve())
}

func TestServer_ListenAndServe(t *testing.T) {
	t.Parallel()

	s := New(ServerConfig{Address: "127.0.0.1", Port: 0})
	require.NoError(t, s.Load(ordersConfig()))
	require.NoError(t, s.Listen(context.Background()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	resp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, <-errCh)
}
