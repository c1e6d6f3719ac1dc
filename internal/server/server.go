package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/verroute/internal/config"
	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/router"
	"github.com/vyrodovalexey/verroute/internal/util"
)

// ResolveSpanName is the name of the span covering version resolution.
const ResolveSpanName = "version.resolve"

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Address         string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MetricsEnabled  bool
	MetricsPath     string
}

// ServerConfigFrom derives the server configuration from a route table.
func ServerConfigFrom(cfg *config.RouteTableConfig) ServerConfig {
	l := cfg.Spec.Listen
	obs := cfg.Spec.Observability
	return ServerConfig{
		Address:         l.Address,
		Port:            l.Port,
		ReadTimeout:     l.ReadTimeout.Duration(),
		WriteTimeout:    l.WriteTimeout.Duration(),
		IdleTimeout:     l.IdleTimeout.Duration(),
		ShutdownTimeout: l.ShutdownTimeout.Duration(),
		MaxHeaderBytes:  1 << 20,
		MetricsEnabled:  obs.MetricsEnabled(),
		MetricsPath:     obs.MetricsPath(),
	}
}

// Server serves requests by resolving them against the live route table.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	table      atomic.Pointer[Table]
	logger     observability.Logger
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	observer   router.Observer
	config     ServerConfig
	startTime  time.Time
	mu         sync.RWMutex
	running    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer *observability.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// New creates a server. It serves 503 until a table is loaded.
func New(cfg ServerConfig, opts ...Option) *Server {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	s := &Server{
		logger:    observability.NopLogger(),
		config:    cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = observability.NewTracerWithProvider(otel.GetTracerProvider(), config.DefaultServiceName)
	}
	s.observer = newResolutionObserver(s.metrics, s.logger)

	s.engine = gin.New()
	s.engine.Use(RequestID(), Tracing(s.tracer), Logging(s.logger))
	if s.metrics != nil {
		s.engine.Use(Metrics(s.metrics))
	}
	s.engine.Use(Recovery(s.logger))

	s.setupRoutes()
	return s
}

// setupRoutes registers the operational endpoints and the catch-all
// dispatcher. Operational endpoints take precedence over mappings.
func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/readyz", s.handleReady)
	s.engine.GET("/_routes", s.handleRoutes)
	if s.metrics != nil && s.config.MetricsEnabled {
		path := s.config.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		s.engine.GET(path, gin.WrapH(s.metrics.Handler()))
	}
	s.engine.NoRoute(s.dispatch)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Table returns the live route table, or nil before the first load.
func (s *Server) Table() *Table {
	return s.table.Load()
}

// Swap installs t as the live table and returns the previous one.
// Requests in flight keep the table they started with.
func (s *Server) Swap(t *Table) *Table {
	old := s.table.Swap(t)
	if s.metrics != nil && t != nil {
		s.metrics.SetTableEntries(t.Registry.Len())
	}
	return old
}

// Load builds a table from cfg and swaps it in.
func (s *Server) Load(cfg *config.RouteTableConfig) error {
	t, err := BuildTable(cfg, TableOptions{Logger: s.logger, Observer: s.observer})
	if err != nil {
		return err
	}
	s.Swap(t)
	return nil
}

// Reload is Load for a changed configuration. On failure the live table
// is kept.
func (s *Server) Reload(cfg *config.RouteTableConfig) error {
	err := s.Load(cfg)
	if s.metrics != nil {
		s.metrics.RecordTableReload(err == nil)
	}
	if err != nil {
		s.logger.Error("route table reload failed, keeping previous table",
			observability.Error(err),
		)
		return err
	}
	s.logger.Info("route table swapped",
		observability.String("name", s.Table().Name),
		observability.Int("entries", s.Table().Registry.Len()),
	)
	return nil
}

// Start listens and serves until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the listener and marks the server running, so a Stop
// issued before Serve starts still shuts it down.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.running = true
	return nil
}

// Serve serves on the listener bound by Listen and blocks until the
// server stops.
func (s *Server) Serve() error {
	s.mu.RLock()
	srv, ln := s.httpServer, s.listener
	s.mu.RUnlock()
	if srv == nil || ln == nil {
		return fmt.Errorf("server is not listening")
	}

	s.logger.Info("starting HTTP server",
		observability.String("address", ln.Addr().String()),
		observability.Duration("read_timeout", s.config.ReadTimeout),
		observability.Duration("write_timeout", s.config.WriteTimeout),
	)

	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// dispatch narrows the request to a route key, resolves the version and
// hands the request to the selected handler.
func (s *Server) dispatch(c *gin.Context) {
	t := s.table.Load()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "route table not loaded"})
		return
	}

	match, err := t.Router.Match(c.Request)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordResolution(observability.UnmatchedRoute, observability.OutcomeRouteNotFound)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "message": err.Error()})
		return
	}

	route := match.Route.Name
	c.Set(routeKey, route)

	ctx := observability.ContextWithFields(c.Request.Context(), observability.String("route", route))
	c.Request = c.Request.WithContext(ctx)
	_, span := s.tracer.StartSpan(ctx, ResolveSpanName,
		trace.WithAttributes(
			attribute.String("verroute.route", route),
			attribute.String("verroute.pattern", match.Pattern),
		),
	)
	sel, err := t.Resolver.Select(match.Route.Entries, extractor.NewHTTPAccessor(c.Request))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no compatible version")
		span.End()

		body := gin.H{"error": "no compatible version", "route": route}
		var nm *router.NoMatchError
		if errors.As(err, &nm) {
			body["version"] = nm.Version
			if nm.Group != "" {
				body["group"] = nm.Group
			}
		}
		c.JSON(http.StatusNotFound, body)
		return
	}

	handler := sel.Handler()
	span.SetAttributes(
		attribute.String("verroute.handler", handler.String()),
		attribute.String("verroute.matched_version", sel.Version),
		attribute.String("verroute.request_version", sel.Request.Version),
		attribute.Int("verroute.candidates", sel.Candidates),
	)
	span.End()

	h, ok := t.Catalog.Get(handler)
	if !ok {
		s.logger.WithContext(ctx).Error("resolved handler is not in the catalog",
			observability.String("handler", handler.String()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header(ResolvedHandlerHeader, handler.String())
	if sel.Version != "" {
		c.Header(MatchedVersionHeader, sel.Version)
	}

	ctx = util.ContextWithRoute(ctx, route)
	ctx = util.ContextWithHandler(ctx, handler.String())
	ctx = util.ContextWithMatchedVersion(ctx, sel.Version)
	ctx = util.ContextWithPathParams(ctx, match.PathParams)
	ctx = observability.ContextWithFields(ctx,
		observability.String("handler", handler.String()),
		observability.String("matched_version", sel.Version),
	)
	c.Request = c.Request.WithContext(ctx)

	// NoRoute handlers start with a 404 status.
	c.Status(http.StatusOK)
	h.ServeHTTP(c.Writer, c.Request)
}
