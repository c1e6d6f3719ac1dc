package config

import (
	"time"

	"github.com/vyrodovalexey/verroute/internal/version"
)

// Listener defaults.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Proxy circuit breaker defaults.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerTimeout   = 30 * time.Second
)

// DefaultConfig returns an empty route table with all defaults applied.
func DefaultConfig() *RouteTableConfig {
	cfg := &RouteTableConfig{
		APIVersion: DefaultAPIVersion,
		Kind:       KindRouteTable,
		Metadata:   Metadata{Name: "default"},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset listener and versioning fields. Mappings are
// left untouched.
func ApplyDefaults(cfg *RouteTableConfig) {
	if cfg == nil {
		return
	}

	l := &cfg.Spec.Listen
	if l.Port == 0 {
		l.Port = DefaultPort
	}
	if l.ReadTimeout == 0 {
		l.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if l.WriteTimeout == 0 {
		l.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if l.IdleTimeout == 0 {
		l.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if l.ShutdownTimeout == 0 {
		l.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	v := &cfg.Spec.Versioning
	if v.Comparator == "" {
		v.Comparator = version.ComparatorLexical
	}
}
