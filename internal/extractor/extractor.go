package extractor

import (
	"strings"
)

// headerPrefix is tried after the bare parameter name for headers.
const headerPrefix = "x-"

// Config configures an Extractor.
type Config struct {
	// VersionParams are the parameter names carrying the client version,
	// in lookup order.
	VersionParams []string
	// GroupParams are the parameter names carrying the client group, in
	// lookup order.
	GroupParams []string
	// CaseSensitive controls group equality.
	CaseSensitive bool
	// DefaultVersion is used when the request carries no version.
	DefaultVersion string
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() Config {
	return Config{
		VersionParams: []string{"version", "apiVersion", "_v"},
		GroupParams:   []string{"clientType", "platform"},
	}
}

// RequestVersionContext is the version and group a request declares.
// Empty values mean absent.
type RequestVersionContext struct {
	Version string
	Group   string
	// Defaulted is set when Version came from the configured default.
	Defaulted bool
}

// HasVersion reports whether a version is present.
func (c RequestVersionContext) HasVersion() bool {
	return c.Version != ""
}

// HasGroup reports whether a group is present.
func (c RequestVersionContext) HasGroup() bool {
	return c.Group != ""
}

// Extractor pulls the version and group from requests. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	versionParams  []string
	groupParams    []string
	defaultVersion string
	groupEqual     func(a, b string) bool
}

// New creates an Extractor. Empty parameter lists fall back to the
// defaults.
func New(cfg Config) *Extractor {
	def := DefaultConfig()
	if len(cfg.VersionParams) == 0 {
		cfg.VersionParams = def.VersionParams
	}
	if len(cfg.GroupParams) == 0 {
		cfg.GroupParams = def.GroupParams
	}

	return &Extractor{
		versionParams:  append([]string(nil), cfg.VersionParams...),
		groupParams:    append([]string(nil), cfg.GroupParams...),
		defaultVersion: strings.TrimSpace(cfg.DefaultVersion),
		groupEqual:     GroupEqualFunc(cfg.CaseSensitive),
	}
}

// Extract reads the version and group from a.
func (e *Extractor) Extract(a Accessor) RequestVersionContext {
	ctx := RequestVersionContext{
		Version: lookup(a, e.versionParams),
		Group:   lookup(a, e.groupParams),
	}
	if ctx.Version == "" && e.defaultVersion != "" {
		ctx.Version = e.defaultVersion
		ctx.Defaulted = true
	}
	return ctx
}

// GroupEqual returns the configured group equality function.
func (e *Extractor) GroupEqual() func(a, b string) bool {
	return e.groupEqual
}

// lookup tries each name as a query parameter, then a header, then an
// "x-" prefixed header. The first non-blank value wins.
func lookup(a Accessor, names []string) string {
	for _, name := range names {
		if v, ok := a.QueryParam(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		if v, ok := a.Header(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		if v, ok := a.Header(headerPrefix + name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
