package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservabilityConfig_Nil(t *testing.T) {
	t.Parallel()

	var c *ObservabilityConfig

	assert.Equal(t, "info", c.LogConfig().Level)
	assert.False(t, c.TracerConfig().Enabled)
	assert.Equal(t, DefaultServiceName, c.TracerConfig().ServiceName)
	assert.True(t, c.MetricsEnabled())
	assert.Equal(t, DefaultMetricsPath, c.MetricsPath())
}

func TestObservabilityConfig_Set(t *testing.T) {
	t.Parallel()

	c := &ObservabilityConfig{
		Logging: &LoggingConfig{Level: "debug", Format: "console", Output: "stderr"},
		Tracing: &TracingConfig{Enabled: true, SamplingRate: 0.5, OTLPEndpoint: "otel:4317", ServiceName: "edge"},
		Metrics: &MetricsConfig{Enabled: false, Path: "/stats"},
	}

	lc := c.LogConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "console", lc.Format)
	assert.Equal(t, "stderr", lc.Output)

	tc := c.TracerConfig()
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.5, tc.SamplingRate)
	assert.Equal(t, "otel:4317", tc.OTLPEndpoint)
	assert.Equal(t, "edge", tc.ServiceName)

	assert.False(t, c.MetricsEnabled())
	assert.Equal(t, "/stats", c.MetricsPath())
}
