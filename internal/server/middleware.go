package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/util"
)

const (
	// RequestIDHeader is the header name for request ID.
	RequestIDHeader = "X-Request-ID"
	// ResolvedHandlerHeader names the handler a request was dispatched to.
	ResolvedHandlerHeader = "X-Resolved-Handler"
	// MatchedVersionHeader carries the declared version that matched.
	MatchedVersionHeader = "X-Matched-Version"
)

// Gin context keys.
const (
	requestIDKey = "requestID"
	routeKey     = "route"
	spanKey      = "otel-span"
)

// RequestID returns a middleware that propagates or generates a request ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := observability.ContextWithRequestID(c.Request.Context(), requestID)
		ctx = util.ContextWithRequestID(ctx, requestID)
		ctx = util.ContextWithStartTime(ctx, time.Now())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID from the context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// isHealthCheckPath checks if the path is a health check endpoint.
func isHealthCheckPath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

// Logging returns a middleware that writes one access log line per
// request. Health checks are not logged. The resolved route, handler and
// version come from the request context fields set by dispatch.
func Logging(logger observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if isHealthCheckPath(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []observability.Field{
			observability.String("method", c.Request.Method),
			observability.String("path", path),
			observability.String("query", c.Request.URL.RawQuery),
			observability.Int("status", status),
			observability.Duration("latency", time.Since(start)),
			observability.String("client_ip", c.ClientIP()),
			observability.Int("body_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, observability.String("errors", c.Errors.String()))
		}

		l := logger.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("request completed", fields...)
		default:
			l.Info("request completed", fields...)
		}
	}
}

// Recovery returns a middleware that turns panics into 500 responses.
func Recovery(logger observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).Error("panic recovered",
					observability.Any("error", err),
					observability.String("method", c.Request.Method),
					observability.String("path", c.Request.URL.Path),
					observability.String("stack", string(debug.Stack())),
				)

				if span := getSpan(c); span != nil {
					span.RecordError(fmt.Errorf("panic: %v", err))
					span.SetStatus(codes.Error, "panic")
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}

// Metrics returns a middleware that records request metrics. The route
// label is the matched route key, the registered endpoint path, or
// observability.UnmatchedRoute.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		m.IncrementActiveRequests(method)
		start := time.Now()

		c.Next()

		m.DecrementActiveRequests(method)
		m.RecordRequest(method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

// routeLabel returns a bounded-cardinality route label.
func routeLabel(c *gin.Context) string {
	if route := c.GetString(routeKey); route != "" {
		return route
	}
	if full := c.FullPath(); full != "" {
		return full
	}
	return observability.UnmatchedRoute
}

// Tracing returns a middleware that starts a server span per request.
func Tracing(tracer *observability.Tracer) gin.HandlerFunc {
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		ctx, span := tracer.StartSpan(ctx, c.Request.Method,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
			attribute.String("http.host", c.Request.Host),
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("net.peer.ip", c.ClientIP()),
		)
		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}

		c.Set(spanKey, span)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		if route := c.GetString(routeKey); route != "" {
			span.SetName(route)
		} else {
			span.SetName(c.Request.Method + " " + routeLabel(c))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// getSpan returns the request span, if tracing is enabled.
func getSpan(c *gin.Context) trace.Span {
	if span, exists := c.Get(spanKey); exists {
		if s, ok := span.(trace.Span); ok {
			return s
		}
	}
	return nil
}
