package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vyrodovalexey/verroute/internal/registry"
)

// RegexPrefix marks a path pattern as a regular expression.
const RegexPrefix = "~"

// Matcher types.
const (
	MatcherExact     = "exact"
	MatcherParameter = "parameter"
	MatcherWildcard  = "wildcard"
	MatcherRegex     = "regex"
)

// PathMatcher is the interface for path matching.
type PathMatcher interface {
	Match(path string) (bool, map[string]string)
	Type() string
	Pattern() string
}

// NewPathMatcher creates a path matcher for a route key path pattern:
// "~" followed by a regular expression, a pattern with {param}
// segments, a pattern with * or ** wildcards, or an exact path.
func NewPathMatcher(pattern string) (PathMatcher, error) {
	switch {
	case IsRegexPattern(pattern):
		return NewRegexMatcher(strings.TrimPrefix(pattern, RegexPrefix))
	case HasPathParameters(pattern):
		return NewParameterMatcher(pattern)
	case HasWildcards(pattern):
		return NewWildcardMatcher(pattern)
	default:
		return NewExactMatcher(pattern), nil
	}
}

// ExactMatcher matches one literal path.
type ExactMatcher struct {
	path string
}

// NewExactMatcher creates an exact path matcher.
func NewExactMatcher(path string) *ExactMatcher {
	return &ExactMatcher{path: path}
}

// Match reports whether path equals the pattern.
func (m *ExactMatcher) Match(path string) (matched bool, params map[string]string) {
	return path == m.path, nil
}

// Type returns MatcherExact.
func (m *ExactMatcher) Type() string { return MatcherExact }

// Pattern returns the literal path.
func (m *ExactMatcher) Pattern() string { return m.path }

// compiled is a pattern backed by a regular expression from the shared
// cache. Named groups become path parameters.
type compiled struct {
	pattern string
	regex   *regexp.Regexp
}

func compile(pattern, expr string) (compiled, error) {
	regex, err := defaultRegexCache.compile(expr)
	if err != nil {
		return compiled{}, err
	}
	return compiled{pattern: pattern, regex: regex}, nil
}

// Match reports whether path matches and returns the named groups.
func (c compiled) Match(path string) (matched bool, params map[string]string) {
	groups := c.regex.FindStringSubmatch(path)
	if groups == nil {
		return false, nil
	}
	for i, name := range c.regex.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = groups[i]
	}
	return true, params
}

// Pattern returns the pattern as written in the route key.
func (c compiled) Pattern() string { return c.pattern }

// RegexMatcher matches a "~"-prefixed regular expression.
type RegexMatcher struct {
	compiled
}

// NewRegexMatcher compiles expr, given without the "~" prefix.
func NewRegexMatcher(expr string) (*RegexMatcher, error) {
	c, err := compile(RegexPrefix+expr, expr)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{c}, nil
}

// Type returns MatcherRegex.
func (m *RegexMatcher) Type() string { return MatcherRegex }

// ParameterMatcher matches patterns such as /users/{id}. A parameter
// spans exactly one segment.
type ParameterMatcher struct {
	compiled
	// literal counts the non-parameter segments; more ranks higher.
	literal int
}

// NewParameterMatcher creates a parameter path matcher.
func NewParameterMatcher(pattern string) (*ParameterMatcher, error) {
	var expr strings.Builder
	expr.WriteString("^")
	literal := 0
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "" {
			continue
		}
		expr.WriteString("/")
		if name, ok := strings.CutPrefix(seg, "{"); ok && strings.HasSuffix(name, "}") {
			fmt.Fprintf(&expr, "(?P<%s>[^/]+)", strings.TrimSuffix(name, "}"))
			continue
		}
		expr.WriteString(regexp.QuoteMeta(seg))
		literal++
	}
	expr.WriteString("$")

	c, err := compile(pattern, expr.String())
	if err != nil {
		return nil, err
	}
	return &ParameterMatcher{compiled: c, literal: literal}, nil
}

// Type returns MatcherParameter.
func (m *ParameterMatcher) Type() string { return MatcherParameter }

// WildcardMatcher matches glob patterns: * stays within a segment, **
// crosses segments and ? is one character other than "/".
type WildcardMatcher struct {
	compiled
}

// NewWildcardMatcher creates a wildcard path matcher.
func NewWildcardMatcher(pattern string) (*WildcardMatcher, error) {
	c, err := compile(pattern, wildcardToRegex(pattern))
	if err != nil {
		return nil, err
	}
	return &WildcardMatcher{c}, nil
}

// Type returns MatcherWildcard.
func (m *WildcardMatcher) Type() string { return MatcherWildcard }

func wildcardToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for rest := pattern; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "**"):
			b.WriteString(".*")
			rest = rest[2:]
			continue
		case rest[0] == '*':
			b.WriteString("[^/]*")
		case rest[0] == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(rest[:1]))
		}
		rest = rest[1:]
	}
	b.WriteString("$")
	return b.String()
}

// MethodMatcher matches HTTP methods.
type MethodMatcher struct {
	methods map[string]bool
	any     bool
}

// NewMethodMatcher creates a new method matcher. registry.AnyMethod
// matches every method.
func NewMethodMatcher(methods []string) *MethodMatcher {
	m := &MethodMatcher{methods: make(map[string]bool, len(methods))}
	for _, method := range methods {
		method = strings.ToUpper(method)
		if method == registry.AnyMethod {
			m.any = true
		}
		m.methods[method] = true
	}
	return m
}

// Match checks if the method matches. HEAD matches routes declaring GET.
func (m *MethodMatcher) Match(method string) bool {
	if m.any {
		return true
	}
	method = strings.ToUpper(method)
	if method == "HEAD" && m.methods["GET"] {
		return true
	}
	return m.methods[method]
}

// Any reports whether the matcher accepts every method.
func (m *MethodMatcher) Any() bool {
	return m.any
}

// HasPathParameters checks if a path contains parameters.
func HasPathParameters(path string) bool {
	return strings.Contains(path, "{") && strings.Contains(path, "}")
}

// HasWildcards checks if a path contains wildcards.
func HasWildcards(path string) bool {
	return strings.ContainsAny(path, "*?")
}

// IsRegexPattern checks if a path pattern is a regular expression.
func IsRegexPattern(pattern string) bool {
	return strings.HasPrefix(pattern, RegexPrefix)
}
