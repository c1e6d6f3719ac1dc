package router

import (
	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/registry"
	"github.com/vyrodovalexey/verroute/internal/version"
)

// Observer receives resolution events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	OnMatched(route string, sel Selection)
	OnNoMatch(route string, rv extractor.RequestVersionContext)
	OnMalformed(route string, version string)
}

// NopObserver ignores all events.
type NopObserver struct{}

// OnMatched implements Observer.
func (NopObserver) OnMatched(string, Selection) {}

// OnNoMatch implements Observer.
func (NopObserver) OnNoMatch(string, extractor.RequestVersionContext) {}

// OnMalformed implements Observer.
func (NopObserver) OnMalformed(string, string) {}

// Resolver picks the handler for a request among the entries of one
// route key.
type Resolver struct {
	extractor *extractor.Extractor
	engine    *Engine
	observer  Observer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	comparator version.Comparator
	groupEqual func(a, b string) bool
	observer   Observer
}

// WithComparator sets the version comparator.
func WithComparator(cmp version.Comparator) ResolverOption {
	return func(o *resolverOptions) {
		o.comparator = cmp
	}
}

// WithGroupEqual overrides the extractor's group equality.
func WithGroupEqual(fn func(a, b string) bool) ResolverOption {
	return func(o *resolverOptions) {
		o.groupEqual = fn
	}
}

// WithObserver sets the resolution observer.
func WithObserver(obs Observer) ResolverOption {
	return func(o *resolverOptions) {
		o.observer = obs
	}
}

// NewResolver creates a resolver reading requests with ex.
func NewResolver(ex *extractor.Extractor, opts ...ResolverOption) *Resolver {
	o := &resolverOptions{
		comparator: version.LexicalComparator{},
		groupEqual: ex.GroupEqual(),
		observer:   NopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Resolver{
		extractor: ex,
		engine:    NewEngine(o.comparator, o.groupEqual),
		observer:  o.observer,
	}
}

// Resolve returns the handler for the request behind a, or a
// *NoMatchError.
func (r *Resolver) Resolve(entries []*registry.MappingEntry, a extractor.Accessor) (registry.Handler, error) {
	sel, err := r.Select(entries, a)
	if err != nil {
		return registry.Handler{}, err
	}
	return sel.Handler(), nil
}

// Select is Resolve with the full selection. A malformed request version
// is reported to the observer and then treated as no version.
func (r *Resolver) Select(entries []*registry.MappingEntry, a extractor.Accessor) (Selection, error) {
	rv := r.extractor.Extract(a)
	route := routeName(entries)

	if rv.HasVersion() && !version.Valid(rv.Version) {
		// Lenient parse logs the rejected value, throttled.
		_, _ = version.Parse(rv.Version, false)
		r.observer.OnMalformed(route, rv.Version)
	}

	sel, ok := r.engine.Select(entries, rv)
	if !ok {
		r.observer.OnNoMatch(route, rv)
		return sel, &NoMatchError{Route: route, Version: rv.Version, Group: rv.Group}
	}

	r.observer.OnMatched(route, sel)
	return sel, nil
}

// Engine returns the matching engine.
func (r *Resolver) Engine() *Engine {
	return r.engine
}

func routeName(entries []*registry.MappingEntry) string {
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Key.String()
}
