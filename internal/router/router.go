package router

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/vyrodovalexey/verroute/internal/registry"
	"github.com/vyrodovalexey/verroute/internal/util"
)

// Path priority constants. Higher priority paths are matched first.
const (
	// priorityExactMatch is the base priority for exact path matches.
	priorityExactMatch = 1000

	// priorityParameterMatch is the base priority for parameter matches.
	// Each literal segment adds priorityLiteralSegment.
	priorityParameterMatch = 500
	priorityLiteralSegment = 10

	// priorityWildcardMatch is the base priority for wildcard matches.
	// Longer patterns receive additional priority based on their length.
	priorityWildcardMatch = 300

	// priorityRegexMatch is the base priority for regex path matches.
	priorityRegexMatch = 100

	// priorityMethodRestriction is the bonus for keys with explicit methods.
	priorityMethodRestriction = 50
)

// ErrNotFrozen is returned when a router is built from a registry that
// is still in its build phase.
var ErrNotFrozen = errors.New("registry is not frozen")

// Router narrows a request to a single route key by method and path. It
// is built once from a frozen registry and is immutable afterwards.
type Router struct {
	routes  []*CompiledRoute
	paths   []*compiledPath
	metrics *routerMetrics
}

// CompiledRoute is a route key with its compiled matchers and the
// mapping entries registered under it.
type CompiledRoute struct {
	Name          string
	Key           registry.RouteKey
	PathMatchers  []PathMatcher
	MethodMatcher *MethodMatcher
	Entries       []*registry.MappingEntry
}

// compiledPath is one path pattern of a route, ranked independently.
type compiledPath struct {
	route    *CompiledRoute
	matcher  PathMatcher
	priority int
	order    int
}

// MatchResult contains the result of a route match.
type MatchResult struct {
	Route      *CompiledRoute
	Pattern    string
	PathParams map[string]string
}

// New compiles a router from a frozen registry.
func New(reg *registry.Registry) (*Router, error) {
	if !reg.Frozen() {
		return nil, ErrNotFrozen
	}

	r := &Router{metrics: getRouterMetrics()}
	for _, key := range reg.Keys() {
		entries, _ := reg.Lookup(key)
		route, err := compileRoute(key, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to compile route %s: %w", key, err)
		}
		r.routes = append(r.routes, route)

		for _, m := range route.PathMatchers {
			r.paths = append(r.paths, &compiledPath{
				route:    route,
				matcher:  m,
				priority: calculatePriority(m, route.MethodMatcher),
				order:    len(r.paths),
			})
		}
	}

	sort.SliceStable(r.paths, func(i, j int) bool {
		return r.paths[i].priority > r.paths[j].priority
	})
	r.metrics.compiledPaths.Set(float64(len(r.paths)))

	return r, nil
}

// compileRoute compiles a route key into a CompiledRoute.
func compileRoute(key registry.RouteKey, entries []*registry.MappingEntry) (*CompiledRoute, error) {
	route := &CompiledRoute{
		Name:          key.String(),
		Key:           key,
		MethodMatcher: NewMethodMatcher(key.Methods),
		Entries:       entries,
	}

	for _, p := range key.Paths {
		m, err := NewPathMatcher(p)
		if err != nil {
			return nil, fmt.Errorf("failed to create path matcher for %q: %w", p, err)
		}
		route.PathMatchers = append(route.PathMatchers, m)
	}

	return route, nil
}

// calculatePriority ranks a path by match specificity:
// exact paths first, then parameter patterns with more literal segments,
// then wildcards with longer patterns, then regular expressions.
// Explicit methods rank above the method wildcard.
func calculatePriority(m PathMatcher, methods *MethodMatcher) int {
	priority := 0

	switch pm := m.(type) {
	case *ExactMatcher:
		priority += priorityExactMatch
	case *ParameterMatcher:
		priority += priorityParameterMatch + pm.literal*priorityLiteralSegment
	case *WildcardMatcher:
		priority += priorityWildcardMatch + len(pm.Pattern())
	case *RegexMatcher:
		priority += priorityRegexMatch
	}

	if methods != nil && !methods.Any() {
		priority += priorityMethodRestriction
	}

	return priority
}

// Match finds the highest priority route key for a request.
func (r *Router) Match(req *http.Request) (*MatchResult, error) {
	path := req.URL.Path
	method := req.Method

	for _, cp := range r.paths {
		if !cp.route.MethodMatcher.Match(method) {
			continue
		}
		if matched, params := cp.matcher.Match(path); matched {
			r.metrics.matches.WithLabelValues(cp.matcher.Type()).Inc()
			return &MatchResult{
				Route:      cp.route,
				Pattern:    cp.matcher.Pattern(),
				PathParams: params,
			}, nil
		}
	}

	r.metrics.matches.WithLabelValues(matchNone).Inc()
	return nil, util.NewRouteNotFoundError(method, path)
}

// Routes returns all compiled routes in registration order.
func (r *Router) Routes() []*CompiledRoute {
	routes := make([]*CompiledRoute, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Len returns the number of route keys.
func (r *Router) Len() int {
	return len(r.routes)
}
