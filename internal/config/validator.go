package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vyrodovalexey/verroute/internal/router"
	"github.com/vyrodovalexey/verroute/internal/util"
	"github.com/vyrodovalexey/verroute/internal/version"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Is makes every validation failure match util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// Validator validates route table configuration. It checks document
// structure only; conflicting mappings are detected when the registry is
// built.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a route table configuration.
func ValidateConfig(config *RouteTableConfig) error {
	v := NewValidator()
	return v.Validate(config)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *RouteTableConfig) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateRoot(config)
	v.validateMetadata(&config.Metadata)
	v.validateSpec(&config.Spec)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateRoot validates root-level fields.
func (v *Validator) validateRoot(config *RouteTableConfig) {
	if config.APIVersion == "" {
		v.addError("apiVersion", "apiVersion is required")
	} else if !strings.HasPrefix(config.APIVersion, APIVersionPrefix) {
		v.addError("apiVersion", fmt.Sprintf("apiVersion must start with '%s'", APIVersionPrefix))
	}

	if config.Kind == "" {
		v.addError("kind", "kind is required")
	} else if config.Kind != KindRouteTable {
		v.addError("kind", fmt.Sprintf("kind must be '%s'", KindRouteTable))
	}
}

// validateMetadata validates metadata fields.
func (v *Validator) validateMetadata(metadata *Metadata) {
	if metadata.Name == "" {
		v.addError("metadata.name", "name is required")
	}
}

// validateSpec validates the route table spec.
func (v *Validator) validateSpec(spec *RouteTableSpec) {
	v.validateListen(&spec.Listen, "spec.listen")
	v.validateVersioning(&spec.Versioning, "spec.versioning")
	v.validateMappings(spec.Mappings)

	if spec.Observability != nil {
		v.validateObservability(spec.Observability, "spec.observability")
	}
}

// validateListen validates the listener.
func (v *Validator) validateListen(listen *ListenConfig, path string) {
	if err := util.ValidateNonNegativePort(listen.Port); err != nil {
		v.addError(path+".port", err.Error())
	}

	timeouts := []struct {
		name string
		d    Duration
	}{
		{"readTimeout", listen.ReadTimeout},
		{"writeTimeout", listen.WriteTimeout},
		{"idleTimeout", listen.IdleTimeout},
		{"shutdownTimeout", listen.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if err := util.ValidateDuration(t.d.Duration()); err != nil {
			v.addError(path+"."+t.name, err.Error())
		}
	}
}

// validateVersioning validates parameter names, the comparator and the
// default version.
func (v *Validator) validateVersioning(cfg *VersioningConfig, path string) {
	v.validateParamNames(cfg.VersionParams, path+".versionParams")
	v.validateParamNames(cfg.GroupParams, path+".groupParams")

	if _, err := version.ComparatorByName(cfg.Comparator); err != nil {
		v.addError(path+".comparator", err.Error())
	}

	if cfg.DefaultVersion != "" {
		if _, err := version.Parse(cfg.DefaultVersion, true); err != nil {
			v.addError(path+".defaultVersion", err.Error())
		}
	}
}

// validateParamNames validates names used as query parameters and headers.
func (v *Validator) validateParamNames(names []string, path string) {
	for i, name := range names {
		if err := util.ValidateHeaderName(name); err != nil {
			v.addError(fmt.Sprintf("%s[%d]", path, i), err.Error())
		}
	}
}

// validateMappings validates mapping declarations.
func (v *Validator) validateMappings(mappings []Mapping) {
	names := make(map[string]bool)
	handlers := make(map[[2]string]int)

	for i := range mappings {
		m := &mappings[i]
		path := fmt.Sprintf("spec.mappings[%d]", i)

		v.validateMappingName(m, path, names)
		v.validateMappingMethods(m, path)
		v.validateMappingPaths(m, path)
		v.validateMappingVersions(m, path)
		v.validateBackend(&m.Backend, path+".backend")
		v.validateHandlerIdentity(mappings, i, path, handlers)
	}
}

// validateMappingName validates mapping name uniqueness.
func (v *Validator) validateMappingName(m *Mapping, path string, names map[string]bool) {
	switch {
	case m.Name == "":
		v.addError(path+".name", "mapping name is required")
	case names[m.Name]:
		v.addError(path+".name", fmt.Sprintf("duplicate mapping name: %s", m.Name))
	default:
		names[m.Name] = true
	}
}

// validateMappingMethods validates HTTP methods.
func (v *Validator) validateMappingMethods(m *Mapping, path string) {
	for j, method := range m.Methods {
		if err := util.ValidateHTTPMethod(method); err != nil {
			v.addError(fmt.Sprintf("%s.methods[%d]", path, j), err.Error())
		}
	}
}

// validateMappingPaths validates that at least one path is declared and
// that every pattern compiles.
func (v *Validator) validateMappingPaths(m *Mapping, path string) {
	if len(m.Paths) == 0 {
		v.addError(path+".paths", "at least one path is required")
		return
	}

	for j, p := range m.Paths {
		pp := fmt.Sprintf("%s.paths[%d]", path, j)
		if !router.IsRegexPattern(p) && !strings.HasPrefix(p, "/") {
			v.addError(pp, "path must start with / or "+router.RegexPrefix)
			continue
		}
		if _, err := router.NewPathMatcher(p); err != nil {
			v.addError(pp, err.Error())
		}
	}
}

// validateMappingVersions validates declared versions with strict parsing.
func (v *Validator) validateMappingVersions(m *Mapping, path string) {
	for j, ver := range m.Versions {
		vp := fmt.Sprintf("%s.versions[%d]", path, j)
		if _, err := version.Parse(ver.Value, true); err != nil {
			v.addError(vp+".value", err.Error())
		}
		for k, g := range ver.Groups {
			if err := util.ValidateNonEmpty(g, "group"); err != nil {
				v.addError(fmt.Sprintf("%s.groups[%d]", vp, k), err.Error())
			}
		}
	}
}

// validateBackend validates that exactly one backend kind is set.
func (v *Validator) validateBackend(b *BackendConfig, path string) {
	switch {
	case b.Static == nil && b.Proxy == nil:
		v.addError(path, "backend must set static or proxy")
		return
	case b.Static != nil && b.Proxy != nil:
		v.addError(path, "backend must set only one of static or proxy")
		return
	}

	if b.Static != nil {
		if b.Static.Status != 0 {
			if err := util.ValidateHTTPStatusCode(b.Static.Status); err != nil {
				v.addError(path+".static.status", err.Error())
			}
		}
		for name := range b.Static.Headers {
			if err := util.ValidateHeaderName(name); err != nil {
				v.addError(path+".static.headers", err.Error())
			}
		}
	}

	if b.Proxy != nil {
		if err := util.ValidateUpstreamURL(b.Proxy.URL); err != nil {
			v.addError(path+".proxy.url", err.Error())
		}
		if b.Proxy.StripPrefix != "" && !strings.HasPrefix(b.Proxy.StripPrefix, "/") {
			v.addError(path+".proxy.stripPrefix", "stripPrefix must start with /")
		}
		if cb := b.Proxy.CircuitBreaker; cb != nil {
			if cb.Threshold < 0 {
				v.addError(path+".proxy.circuitBreaker.threshold", "threshold must not be negative")
			}
			if err := util.ValidateDuration(cb.Timeout.Duration()); err != nil {
				v.addError(path+".proxy.circuitBreaker.timeout", err.Error())
			}
		}
	}
}

// validateHandlerIdentity validates that mappings naming the same handler
// identity declare the same backend.
func (v *Validator) validateHandlerIdentity(mappings []Mapping, i int, path string, seen map[[2]string]int) {
	id := mappings[i].HandlerIdentity()
	key := [2]string{id.Source, id.ID}
	first, ok := seen[key]
	if !ok {
		seen[key] = i
		return
	}
	if !reflect.DeepEqual(mappings[first].Backend, mappings[i].Backend) {
		v.addError(path+".backend", fmt.Sprintf(
			"handler %s is already declared by mapping %s with a different backend",
			id, mappings[first].Name,
		))
	}
}

// validateObservability validates observability configuration.
func (v *Validator) validateObservability(obs *ObservabilityConfig, path string) {
	if obs.Metrics != nil {
		if obs.Metrics.Path != "" && !strings.HasPrefix(obs.Metrics.Path, "/") {
			v.addError(path+".metrics.path", "metrics path must start with /")
		}
	}

	if obs.Tracing != nil {
		if err := util.ValidateSamplingRate(obs.Tracing.SamplingRate); err != nil {
			v.addError(path+".tracing.samplingRate", err.Error())
		}
	}

	if obs.Logging != nil {
		validLevels := map[string]bool{
			"":      true,
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}

		if !validLevels[strings.ToLower(obs.Logging.Level)] {
			v.addError(path+".logging.level", fmt.Sprintf("invalid log level: %s", obs.Logging.Level))
		}

		validFormats := map[string]bool{
			"":        true,
			"json":    true,
			"console": true,
		}

		if !validFormats[strings.ToLower(obs.Logging.Format)] {
			v.addError(path+".logging.format", fmt.Sprintf("invalid log format: %s", obs.Logging.Format))
		}
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}
