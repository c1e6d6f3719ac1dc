package config

import "github.com/vyrodovalexey/verroute/internal/observability"

// Observability defaults.
const (
	DefaultMetricsPath = "/metrics"
	DefaultServiceName = "verroute"
)

// ObservabilityConfig represents observability configuration.
type ObservabilityConfig struct {
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Tracing *TracingConfig `yaml:"tracing,omitempty" json:"tracing,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path,omitempty" json:"path,omitempty"`
}

// TracingConfig represents tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	SamplingRate float64 `yaml:"samplingRate,omitempty" json:"samplingRate,omitempty"`
	OTLPEndpoint string  `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	ServiceName  string  `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// LogConfig returns the logger configuration, using the logger defaults
// for unset fields.
func (c *ObservabilityConfig) LogConfig() observability.LogConfig {
	cfg := observability.DefaultLogConfig()
	if c == nil || c.Logging == nil {
		return cfg
	}
	if c.Logging.Level != "" {
		cfg.Level = c.Logging.Level
	}
	if c.Logging.Format != "" {
		cfg.Format = c.Logging.Format
	}
	if c.Logging.Output != "" {
		cfg.Output = c.Logging.Output
	}
	return cfg
}

// TracerConfig returns the tracer configuration. Tracing is disabled
// unless configured.
func (c *ObservabilityConfig) TracerConfig() observability.TracerConfig {
	cfg := observability.TracerConfig{
		ServiceName:  DefaultServiceName,
		SamplingRate: 1.0,
	}
	if c == nil || c.Tracing == nil {
		return cfg
	}
	cfg.Enabled = c.Tracing.Enabled
	cfg.OTLPEndpoint = c.Tracing.OTLPEndpoint
	cfg.SamplingRate = c.Tracing.SamplingRate
	if c.Tracing.ServiceName != "" {
		cfg.ServiceName = c.Tracing.ServiceName
	}
	return cfg
}

// MetricsEnabled reports whether the metrics endpoint is served. Metrics
// are on unless explicitly configured off.
func (c *ObservabilityConfig) MetricsEnabled() bool {
	if c == nil || c.Metrics == nil {
		return true
	}
	return c.Metrics.Enabled
}

// MetricsPath returns the metrics endpoint path.
func (c *ObservabilityConfig) MetricsPath() string {
	if c == nil || c.Metrics == nil || c.Metrics.Path == "" {
		return DefaultMetricsPath
	}
	return c.Metrics.Path
}
