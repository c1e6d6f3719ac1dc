package config

import (
	"time"

	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/registry"
)

// Document identity.
const (
	APIVersionPrefix  = "verroute.io/"
	DefaultAPIVersion = APIVersionPrefix + "v1"
	KindRouteTable    = "RouteTable"
)

// RouteTableConfig is the root of a route table document.
type RouteTableConfig struct {
	APIVersion string         `yaml:"apiVersion" json:"apiVersion"`
	Kind       string         `yaml:"kind" json:"kind"`
	Metadata   Metadata       `yaml:"metadata" json:"metadata"`
	Spec       RouteTableSpec `yaml:"spec" json:"spec"`
}

// Metadata contains document metadata.
type Metadata struct {
	Name        string            `yaml:"name" json:"name"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// RouteTableSpec contains the route table specification.
type RouteTableSpec struct {
	Listen        ListenConfig         `yaml:"listen" json:"listen"`
	Versioning    VersioningConfig     `yaml:"versioning" json:"versioning"`
	Mappings      []Mapping            `yaml:"mappings" json:"mappings"`
	Observability *ObservabilityConfig `yaml:"observability,omitempty" json:"observability,omitempty"`
}

// ListenConfig configures the HTTP listener.
type ListenConfig struct {
	Address         string   `yaml:"address,omitempty" json:"address,omitempty"`
	Port            int      `yaml:"port" json:"port"`
	ReadTimeout     Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout    Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout     Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

// VersioningConfig configures how request versions are read and compared.
type VersioningConfig struct {
	// VersionParams are the query/header names carrying the client version.
	VersionParams []string `yaml:"versionParams,omitempty" json:"versionParams,omitempty"`
	// GroupParams are the query/header names carrying the client group.
	GroupParams []string `yaml:"groupParams,omitempty" json:"groupParams,omitempty"`
	// CaseSensitiveParams makes group comparison case-sensitive.
	CaseSensitiveParams bool `yaml:"caseSensitiveParams,omitempty" json:"caseSensitiveParams,omitempty"`
	// Comparator is "lexical" or "numeric".
	Comparator string `yaml:"comparator,omitempty" json:"comparator,omitempty"`
	// DefaultVersion is used when a request carries no version.
	DefaultVersion string `yaml:"defaultVersion,omitempty" json:"defaultVersion,omitempty"`
}

// Mapping is one mapping declaration: a route key, its declared versions
// and the backend serving it.
type Mapping struct {
	Name     string          `yaml:"name" json:"name"`
	Source   string          `yaml:"source,omitempty" json:"source,omitempty"`
	Handler  string          `yaml:"handler,omitempty" json:"handler,omitempty"`
	Methods  []string        `yaml:"methods,omitempty" json:"methods,omitempty"`
	Paths    []string        `yaml:"paths" json:"paths"`
	Priority int             `yaml:"priority,omitempty" json:"priority,omitempty"`
	Versions []VersionConfig `yaml:"versions,omitempty" json:"versions,omitempty"`
	Backend  BackendConfig   `yaml:"backend" json:"backend"`
}

// VersionConfig is one declared version with optional client groups.
type VersionConfig struct {
	Value  string   `yaml:"value" json:"value"`
	Groups []string `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// BackendConfig selects exactly one backend kind.
type BackendConfig struct {
	Static *StaticBackend `yaml:"static,omitempty" json:"static,omitempty"`
	Proxy  *ProxyBackend  `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// StaticBackend answers with a fixed response.
type StaticBackend struct {
	Status  int               `yaml:"status,omitempty" json:"status,omitempty"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ProxyBackend forwards to an upstream URL.
type ProxyBackend struct {
	URL            string                `yaml:"url" json:"url"`
	StripPrefix    string                `yaml:"stripPrefix,omitempty" json:"stripPrefix,omitempty"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty" json:"circuitBreaker,omitempty"`
}

// CircuitBreakerConfig trips a proxy backend after repeated upstream
// failures. Threshold is the number of requests observed before the
// failure ratio is checked; Timeout is how long the breaker stays open.
type CircuitBreakerConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Threshold int      `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Timeout   Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// IsEnabled reports whether the breaker is configured and enabled.
func (c *CircuitBreakerConfig) IsEnabled() bool {
	return c != nil && c.Enabled
}

// GetThreshold returns the threshold or DefaultBreakerThreshold.
func (c *CircuitBreakerConfig) GetThreshold() int {
	if c == nil || c.Threshold <= 0 {
		return DefaultBreakerThreshold
	}
	return c.Threshold
}

// GetTimeout returns the open-state timeout or DefaultBreakerTimeout.
func (c *CircuitBreakerConfig) GetTimeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultBreakerTimeout
	}
	return c.Timeout.Duration()
}

// HandlerID returns the handler identity name, defaulting to the mapping
// name.
func (m *Mapping) HandlerID() string {
	if m.Handler != "" {
		return m.Handler
	}
	return m.Name
}

// HandlerIdentity returns the registry handler identity of the mapping.
// Target carries the mapping name.
func (m *Mapping) HandlerIdentity() registry.Handler {
	return registry.Handler{
		ID:     m.HandlerID(),
		Source: m.Source,
		Target: m.Name,
	}
}

// Declaration converts the mapping into a registry declaration.
func (m *Mapping) Declaration() registry.Declaration {
	specs := make([]registry.VersionSpec, 0, len(m.Versions))
	for _, v := range m.Versions {
		specs = append(specs, registry.VersionSpec{
			Value:  v.Value,
			Groups: append([]string(nil), v.Groups...),
		})
	}

	return registry.Declaration{
		Key:      registry.NewRouteKey(m.Methods, m.Paths),
		Specs:    specs,
		Priority: m.Priority,
		Handler:  m.HandlerIdentity(),
	}
}

// Declarations converts all mappings in declaration order.
func (c *RouteTableConfig) Declarations() []registry.Declaration {
	decls := make([]registry.Declaration, 0, len(c.Spec.Mappings))
	for i := range c.Spec.Mappings {
		decls = append(decls, c.Spec.Mappings[i].Declaration())
	}
	return decls
}

// ExtractorConfig returns the extractor configuration, falling back to the
// extractor defaults for unset parameter lists.
func (v *VersioningConfig) ExtractorConfig() extractor.Config {
	cfg := extractor.DefaultConfig()
	if len(v.VersionParams) > 0 {
		cfg.VersionParams = append([]string(nil), v.VersionParams...)
	}
	if len(v.GroupParams) > 0 {
		cfg.GroupParams = append([]string(nil), v.GroupParams...)
	}
	cfg.CaseSensitive = v.CaseSensitiveParams
	cfg.DefaultVersion = v.DefaultVersion
	return cfg
}
