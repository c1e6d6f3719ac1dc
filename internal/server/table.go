package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vyrodovalexey/verroute/internal/config"
	"github.com/vyrodovalexey/verroute/internal/dispatch"
	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/registry"
	"github.com/vyrodovalexey/verroute/internal/router"
	"github.com/vyrodovalexey/verroute/internal/version"
)

// Table is one immutable generation of the routing state. A reload
// builds a new Table and swaps it in; a live Table is never mutated.
type Table struct {
	Name       string
	Comparator string
	Registry   *registry.Registry
	Router     *router.Router
	Resolver   *router.Resolver
	Catalog    *dispatch.Catalog
	BuiltAt    time.Time
}

// TableOptions carries the collaborators used while building a table.
type TableOptions struct {
	Logger   observability.Logger
	Observer router.Observer
}

// BuildTable registers every mapping of cfg into a new frozen registry,
// compiles the router and creates one handler per handler identity.
func BuildTable(cfg *config.RouteTableConfig, opts TableOptions) (*Table, error) {
	if cfg == nil {
		return nil, fmt.Errorf("route table config is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	observer := opts.Observer
	if observer == nil {
		observer = router.NopObserver{}
	}

	versioning := cfg.Spec.Versioning
	cmp, err := version.ComparatorByName(versioning.Comparator)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Build(cfg.Declarations(), registry.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	rt, err := router.New(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile router: %w", err)
	}

	ex := extractor.New(versioning.ExtractorConfig())
	resolver := router.NewResolver(ex,
		router.WithComparator(cmp),
		router.WithObserver(observer),
	)

	catalog := dispatch.NewCatalog()
	for i := range cfg.Spec.Mappings {
		m := &cfg.Spec.Mappings[i]
		id := m.HandlerIdentity()
		if catalog.Has(id) {
			continue
		}
		if err := catalog.Add(id, newBackendHandler(id, m.Backend, logger)); err != nil {
			return nil, err
		}
	}

	logger.Info("route table built",
		observability.String("name", cfg.Metadata.Name),
		observability.Int("route_keys", rt.Len()),
		observability.Int("entries", reg.Len()),
		observability.Int("handlers", catalog.Len()),
		observability.Int("warnings", len(reg.Warnings())),
	)

	return &Table{
		Name:       cfg.Metadata.Name,
		Comparator: versioning.Comparator,
		Registry:   reg,
		Router:     rt,
		Resolver:   resolver,
		Catalog:    catalog,
		BuiltAt:    time.Now(),
	}, nil
}

// newBackendHandler creates the handler for a backend. Proxies are built
// on first use.
func newBackendHandler(id registry.Handler, b config.BackendConfig, logger observability.Logger) http.Handler {
	if b.Proxy != nil {
		pc := dispatch.ProxyConfig{
			Name:        id.String(),
			URL:         b.Proxy.URL,
			StripPrefix: b.Proxy.StripPrefix,
			Logger:      logger,
		}
		if cb := b.Proxy.CircuitBreaker; cb.IsEnabled() {
			pc.Breaker = &dispatch.BreakerConfig{
				Threshold: cb.GetThreshold(),
				Timeout:   cb.GetTimeout(),
			}
		}
		return dispatch.NewProxy(pc)
	}

	s := b.Static
	if s == nil {
		s = &config.StaticBackend{}
	}
	return dispatch.NewStaticHandler(s.Status, s.Body, s.Headers)
}
