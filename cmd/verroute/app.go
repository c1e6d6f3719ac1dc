package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/verroute/internal/config"
	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/server"
)

// application holds all application components.
type application struct {
	server  *server.Server
	metrics *observability.Metrics
	tracer  *observability.Tracer
	config  *config.RouteTableConfig
}

// initApplication initializes all application components and loads the
// initial route table.
func initApplication(cfg *config.RouteTableConfig, logger observability.Logger) *application {
	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", observability.Error(err))
	}
	return app
}

// newApplication wires the metrics, tracer and server, then loads cfg.
func newApplication(cfg *config.RouteTableConfig, logger observability.Logger) (*application, error) {
	metrics := observability.NewMetrics("")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := observability.NewTracer(cfg.Spec.Observability.TracerConfig())
	if err != nil {
		return nil, err
	}

	srv := server.New(server.ServerConfigFrom(cfg),
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithTracer(tracer),
	)
	if err := srv.Load(cfg); err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}
	metrics.RecordTableReload(true)

	return &application{
		server:  srv,
		metrics: metrics,
		tracer:  tracer,
		config:  cfg,
	}, nil
}

// runServer runs the server and handles shutdown.
func runServer(app *application, flags cliFlags, logger observability.Logger) {
	if err := app.server.Listen(context.Background()); err != nil {
		logger.Fatal("failed to start server", observability.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Serve()
	}()

	var watcher *config.Watcher
	if flags.watch {
		watcher = startConfigWatcher(app, flags.configPath, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", observability.Error(err))
		}
	}

	shutdown(app, watcher, logger)
}

// startConfigWatcher starts the route table watcher. A watcher that
// cannot start is logged and the server keeps the loaded table.
func startConfigWatcher(app *application, configPath string, logger observability.Logger) *config.Watcher {
	path, err := config.ResolveConfigPath(configPath)
	if err != nil {
		logger.Warn("failed to resolve route table path for watching", observability.Error(err))
		return nil
	}

	watcher, err := config.NewWatcher(path, app.server.Reload, config.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to create route table watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start route table watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}

	return watcher
}

// shutdown stops the watcher, drains the server and flushes traces.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	timeout := app.config.Spec.Listen.ShutdownTimeout.Duration()
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(ctx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("verroute stopped")
}
