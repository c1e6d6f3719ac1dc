// Package main is the entry point for the version routing server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vyrodovalexey/verroute/internal/config"
	"github.com/vyrodovalexey/verroute/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	watch       bool
	showVersion bool
}

func main() {
	flags := parseFlags(flag.CommandLine, os.Args[1:])

	if flags.showVersion {
		printVersion()
		return
	}

	cfg, err := loadAndValidateConfig(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := initLogger(flags, cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting verroute",
		observability.String("version", version),
		observability.String("config", flags.configPath),
		observability.String("table", cfg.Metadata.Name),
		observability.Int("mappings", len(cfg.Spec.Mappings)),
	)

	app := initApplication(cfg, logger)
	runServer(app, flags, logger)
}

// parseFlags parses command line flags.
func parseFlags(fs *flag.FlagSet, args []string) cliFlags {
	configPath := fs.String("config", envOr("VERROUTE_CONFIG_PATH", "configs/verroute.yaml"),
		"Path to route table file")
	logLevel := fs.String("log-level", envOr("VERROUTE_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the route table")
	logFormat := fs.String("log-format", envOr("VERROUTE_LOG_FORMAT", ""),
		"Log format (json, console); overrides the route table")
	watch := fs.Bool("watch", envBool("VERROUTE_WATCH", false), "Reload the route table when the file changes")
	showVersion := fs.Bool("version", false, "Show version information")
	_ = fs.Parse(args)

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		watch:       *watch,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("verroute version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// loadAndValidateConfig loads and validates the route table file.
func loadAndValidateConfig(configPath string) (*config.RouteTableConfig, error) {
	path, err := config.ResolveConfigPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration path: %w", err)
	}

	cfg, err := config.NewLoader().LoadWithIncludes(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// logConfig merges the command line overrides into the route table
// logging settings.
func logConfig(flags cliFlags, cfg *config.RouteTableConfig) observability.LogConfig {
	lc := cfg.Spec.Observability.LogConfig()
	if flags.logLevel != "" {
		lc.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		lc.Format = flags.logFormat
	}
	return lc
}

// initLogger initializes the logger.
func initLogger(flags cliFlags, cfg *config.RouteTableConfig) observability.Logger {
	logger, err := observability.NewLogger(logConfig(flags, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}
