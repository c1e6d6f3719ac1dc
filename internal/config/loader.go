package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/verroute/internal/util"
	"github.com/vyrodovalexey/verroute/internal/version"
)

// DefaultMaxIncludeDepth bounds how deeply route table files may include
// each other.
const DefaultMaxIncludeDepth = 10

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// escapedDollar stands in for "$$" while variables are expanded.
const escapedDollar = "\x00DOLLAR\x00"

// Loader reads route table files. A Loader records every file it reads,
// so a watcher can follow includes; use a new Loader per load.
type Loader struct {
	maxDepth int
	stack    []string
	files    []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{maxDepth: DefaultMaxIncludeDepth}
}

// LoadConfig loads a single route table file.
func LoadConfig(path string) (*RouteTableConfig, error) {
	return NewLoader().Load(path)
}

// LoadConfigFromReader loads a route table document from r.
func LoadConfigFromReader(r io.Reader) (*RouteTableConfig, error) {
	return NewLoader().LoadFromReader(r)
}

// Load reads one file without following includes.
func (l *Loader) Load(path string) (*RouteTableConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	data, err := l.read(absPath)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

// LoadFromReader parses a document from r.
func (l *Loader) LoadFromReader(r io.Reader) (*RouteTableConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(data)
}

// LoadWithIncludes loads path and the files listed in its top-level
// includes key, recursively. Relative includes resolve against the
// including file. Included documents are merged first, so the including
// file overrides them and its mappings come last.
func (l *Loader) LoadWithIncludes(path string) (*RouteTableConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return l.include(absPath)
}

// Files returns every file read so far, in load order, without repeats.
func (l *Loader) Files() []string {
	return append([]string(nil), l.files...)
}

func (l *Loader) include(path string) (*RouteTableConfig, error) {
	for _, p := range l.stack {
		if p == path {
			chain := strings.Join(append(l.stack, path), " -> ")
			return nil, util.NewConfigError("includes", "circular include detected: "+chain)
		}
	}
	if len(l.stack) >= l.maxDepth {
		return nil, util.NewConfigError("includes",
			fmt.Sprintf("maximum include depth (%d) exceeded at %s", l.maxDepth, path))
	}

	l.stack = append(l.stack, path)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	data, err := l.read(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Includes []string `yaml:"includes"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, util.NewConfigErrorWithCause("includes", "failed to parse YAML for includes", err)
	}

	current, err := parseConfig(data)
	if err != nil {
		return nil, err
	}
	if len(head.Includes) == 0 {
		return current, nil
	}

	docs := make([]*RouteTableConfig, 0, len(head.Includes)+1)
	for _, inc := range head.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		included, err := l.include(filepath.Clean(inc))
		if err != nil {
			return nil, fmt.Errorf("failed to load include %s: %w", inc, err)
		}
		docs = append(docs, included)
	}
	return MergeConfigs(append(docs, current)...), nil
}

func (l *Loader) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if !slices.Contains(l.files, path) {
		l.files = append(l.files, path)
	}
	return data, nil
}

// parseConfig expands environment variables, decodes the document and
// applies defaults.
func parseConfig(data []byte) (*RouteTableConfig, error) {
	var config RouteTableConfig
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &config); err != nil {
		return nil, util.NewConfigErrorWithCause("", "failed to parse YAML", err)
	}
	ApplyDefaults(&config)
	return &config, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default}; "$$" is a literal "$".
func expandEnv(content string) string {
	content = strings.ReplaceAll(content, "$$", escapedDollar)
	content = envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(m[1]); ok {
			return value
		}
		return m[2]
	})
	return strings.ReplaceAll(content, escapedDollar, "$")
}

// MergeConfigs merges multiple configurations, with later configs taking precedence.
func MergeConfigs(configs ...*RouteTableConfig) *RouteTableConfig {
	if len(configs) == 0 {
		return DefaultConfig()
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = mergeTwo(result, configs[i])
	}

	return result
}

// mergeTwo merges two configurations, with the second taking precedence.
func mergeTwo(base, override *RouteTableConfig) *RouteTableConfig {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}

	result := *base

	// Override basic fields
	if override.APIVersion != "" {
		result.APIVersion = override.APIVersion
	}
	if override.Kind != "" {
		result.Kind = override.Kind
	}
	if override.Metadata.Name != "" {
		result.Metadata.Name = override.Metadata.Name
	}

	// Merge labels
	result.Metadata.Labels = cloneMap(result.Metadata.Labels)
	for k, v := range override.Metadata.Labels {
		result.Metadata.Labels[k] = v
	}

	// Merge annotations
	result.Metadata.Annotations = cloneMap(result.Metadata.Annotations)
	for k, v := range override.Metadata.Annotations {
		result.Metadata.Annotations[k] = v
	}

	// Listener fields override individually when set.
	mergeListen(&result.Spec.Listen, override.Spec.Listen)

	// Versioning is replaced as a whole when the override sets anything.
	if !override.Spec.Versioning.isZero() {
		result.Spec.Versioning = override.Spec.Versioning
	}

	// Mappings append, keeping declaration order.
	result.Spec.Mappings = append(
		append([]Mapping(nil), result.Spec.Mappings...),
		override.Spec.Mappings...,
	)

	if override.Spec.Observability != nil {
		result.Spec.Observability = override.Spec.Observability
	}

	return &result
}

// mergeListen overrides base listener fields that are set in override.
// ApplyDefaults has already filled both sides, so only values differing
// from the defaults are taken from override.
func mergeListen(base *ListenConfig, override ListenConfig) {
	if override.Address != "" {
		base.Address = override.Address
	}
	if override.Port != 0 && override.Port != DefaultPort {
		base.Port = override.Port
	}
	if override.ReadTimeout != 0 && override.ReadTimeout != Duration(DefaultReadTimeout) {
		base.ReadTimeout = override.ReadTimeout
	}
	if override.WriteTimeout != 0 && override.WriteTimeout != Duration(DefaultWriteTimeout) {
		base.WriteTimeout = override.WriteTimeout
	}
	if override.IdleTimeout != 0 && override.IdleTimeout != Duration(DefaultIdleTimeout) {
		base.IdleTimeout = override.IdleTimeout
	}
	if override.ShutdownTimeout != 0 && override.ShutdownTimeout != Duration(DefaultShutdownTimeout) {
		base.ShutdownTimeout = override.ShutdownTimeout
	}
}

// isZero reports whether nothing beyond defaults is set.
func (v *VersioningConfig) isZero() bool {
	return len(v.VersionParams) == 0 &&
		len(v.GroupParams) == 0 &&
		!v.CaseSensitiveParams &&
		(v.Comparator == "" || v.Comparator == version.ComparatorLexical) &&
		v.DefaultVersion == ""
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ResolveConfigPath finds a route table file. An absolute path must
// exist. A relative path is tried as given, then under ./configs,
// /etc/verroute and ~/.verroute.
func ResolveConfigPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	candidates := []string{
		path,
		filepath.Join("configs", path),
		filepath.Join(string(filepath.Separator), "etc", "verroute", path),
		filepath.Join(os.Getenv("HOME"), ".verroute", path),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return filepath.Abs(p)
		}
	}
	return "", fmt.Errorf("config file not found: %s", path)
}
