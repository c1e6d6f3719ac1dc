// Package observability provides logging, metrics, and tracing
// for the version router.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("route table loaded",
//	    observability.Int("entries", 12),
//	)
//
// # Metrics
//
// Prometheus metrics for requests, version resolutions, and route
// table reloads, exposed from a dedicated registry:
//
//	metrics := observability.NewMetrics("verroute")
//	handler := metrics.Handler()
//
// # Tracing
//
// OpenTelemetry tracing with OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    Enabled:      true,
//	    OTLPEndpoint: "localhost:4317",
//	    SamplingRate: 0.1,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(ctx)
package observability
