package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vyrodovalexey/verroute/internal/observability"
)

// route holds the entries registered under one route key, in
// registration order.
type route struct {
	key     RouteKey
	entries []*MappingEntry
}

// Registry maps route keys to their non-conflicting mapping entries.
//
// A registry has two phases. While building, Register validates and
// inserts declarations under a mutex. Freeze ends the build phase; after
// that the registry is read-only and lookups take no locks.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool

	routes       map[string]*route
	order        []string
	fingerprints map[string]*MappingEntry
	warnings     []*RegistrationConflictWarning
	seq          uint64

	logger  observability.Logger
	metrics *registryMetrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger observability.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry in the build phase.
func New(opts ...Option) *Registry {
	r := &Registry{
		routes:       make(map[string]*route),
		fingerprints: make(map[string]*MappingEntry),
		logger:       observability.NopLogger(),
		metrics:      getRegistryMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build registers all declarations into a new registry and freezes it.
func Build(decls []Declaration, opts ...Option) (*Registry, error) {
	r := New(opts...)
	if err := r.RegisterAll(decls); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

// Register validates a declaration and inserts it.
//
// A declaration whose fingerprint is already taken is handled as follows:
// the same handler re-registering is a no-op; two plain mappings from
// different sources are arbitrated by priority; anything else is an
// *AmbiguousMappingError.
func (r *Registry) Register(d Declaration) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}

	key, specs, err := validateDeclaration(d)
	if err != nil {
		r.metrics.registrations.WithLabelValues(resultInvalid).Inc()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrRegistryFrozen
	}

	incoming := &MappingEntry{
		Key:      key,
		Handler:  d.Handler,
		Specs:    specs,
		Priority: d.Priority,
	}

	fp := fingerprint(key, specs)
	existing, ok := r.fingerprints[fp]
	if !ok {
		r.insert(fp, incoming)
		return nil
	}

	switch {
	case existing.Handler.Equal(incoming.Handler):
		r.logger.Debug("duplicate registration ignored",
			observability.String("route", key.String()),
			observability.String("handler", incoming.Handler.String()),
		)
		r.metrics.registrations.WithLabelValues(resultDuplicate).Inc()
		return nil
	case canOverride(existing, incoming):
		r.resolveOverride(fp, existing, incoming)
		return nil
	default:
		r.metrics.registrations.WithLabelValues(resultAmbiguous).Inc()
		return &AmbiguousMappingError{
			Key:         key,
			Versions:    sortedValues(specs),
			Existing:    existing.Handler,
			Conflicting: incoming.Handler,
		}
	}
}

// RegisterAll registers declarations in order and stops at the first
// error.
func (r *Registry) RegisterAll(decls []Declaration) error {
	for i := range decls {
		if err := r.Register(decls[i]); err != nil {
			return fmt.Errorf("declaration %d: %w", i, err)
		}
	}
	return nil
}

// insert appends a new entry. Must be called with r.mu held.
func (r *Registry) insert(fp string, e *MappingEntry) {
	r.seq++
	e.seq = r.seq

	id := e.Key.String()
	rt, ok := r.routes[id]
	if !ok {
		rt = &route{key: e.Key}
		r.routes[id] = rt
		r.order = append(r.order, id)
	}
	rt.entries = append(rt.entries, e)
	r.fingerprints[fp] = e

	r.logger.Debug("mapping registered",
		observability.String("route", id),
		observability.String("handler", e.Handler.String()),
		observability.Strings("versions", e.VersionValues()),
		observability.Int("priority", e.Priority),
	)
	r.metrics.registrations.WithLabelValues(resultRegistered).Inc()
}

// replace swaps existing for incoming in place. Must be called with
// r.mu held.
func (r *Registry) replace(fp string, existing, incoming *MappingEntry) {
	rt := r.routes[existing.Key.String()]
	for i, e := range rt.entries {
		if e == existing {
			rt.entries[i] = incoming
			break
		}
	}
	r.fingerprints[fp] = incoming
}

// Freeze ends the build phase. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Swap(true) {
		return
	}

	n := len(r.fingerprints)
	r.metrics.frozenEntries.Set(float64(n))
	r.logger.Info("registry frozen",
		observability.Int("routes", len(r.order)),
		observability.Int("entries", n),
		observability.Int("warnings", len(r.warnings)),
	)
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Lookup returns the entries registered under key, in registration
// order. The key is normalized before lookup.
func (r *Registry) Lookup(key RouteKey) ([]*MappingEntry, bool) {
	id := NewRouteKey(key.Methods, key.Paths).String()
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	rt, ok := r.routes[id]
	if !ok {
		return nil, false
	}
	return rt.entries, true
}

// Keys returns all route keys in first-registration order.
func (r *Registry) Keys() []RouteKey {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	keys := make([]RouteKey, 0, len(r.order))
	for _, id := range r.order {
		keys = append(keys, r.routes[id].key)
	}
	return keys
}

// Entries returns all entries grouped by route key in first-registration
// order.
func (r *Registry) Entries() []*MappingEntry {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	var out []*MappingEntry
	for _, id := range r.order {
		out = append(out, r.routes[id].entries...)
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return len(r.fingerprints)
}

// Warnings returns the registration conflicts recorded by the override
// resolver.
func (r *Registry) Warnings() []*RegistrationConflictWarning {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return append([]*RegistrationConflictWarning(nil), r.warnings...)
}
