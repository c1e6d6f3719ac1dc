package registry

import (
	"slices"
	"strings"
)

// AnyMethod is the method wildcard used when a route key declares no methods.
const AnyMethod = "*"

// RouteKey identifies a routable endpoint independent of version: an
// ordered set of HTTP methods and an ordered set of path patterns.
type RouteKey struct {
	Methods []string
	Paths   []string
}

// NewRouteKey returns a normalized route key. Methods are upper-cased,
// deduplicated and sorted; paths are deduplicated and sorted. An empty
// method list becomes AnyMethod.
func NewRouteKey(methods, paths []string) RouteKey {
	ms := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			ms = append(ms, m)
		}
	}
	if len(ms) == 0 {
		ms = append(ms, AnyMethod)
	}
	slices.Sort(ms)
	ms = slices.Compact(ms)

	ps := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			ps = append(ps, p)
		}
	}
	slices.Sort(ps)
	ps = slices.Compact(ps)

	return RouteKey{Methods: ms, Paths: ps}
}

// String renders the key as "GET,POST /a,/b". The rendering of a
// normalized key is its identity.
func (k RouteKey) String() string {
	return strings.Join(k.Methods, ",") + " " + strings.Join(k.Paths, ",")
}

// VersionSpec is one declared compatibility point. Empty Groups matches
// any client group.
type VersionSpec struct {
	Value  string   `json:"value"`
	Groups []string `json:"groups,omitempty"`
}

// Handler is the identity of a callable target. Two handlers are the
// same logical handler when both ID and Source are equal; Target is
// carried for the caller and never compared.
type Handler struct {
	ID     string
	Source string
	Target any
}

// Equal reports whether h and o identify the same logical handler.
func (h Handler) Equal(o Handler) bool {
	return h.ID == o.ID && h.Source == o.Source
}

// String returns "source/id", or the bare ID when no source is set.
func (h Handler) String() string {
	if h.Source == "" {
		return h.ID
	}
	return h.Source + "/" + h.ID
}

// Declaration is one mapping declaration as produced by a declaration
// source, such as the route table loader.
type Declaration struct {
	Key      RouteKey
	Specs    []VersionSpec
	Priority int
	Handler  Handler
}

// MappingEntry is a registered declaration. Entries are immutable once
// the registry is frozen.
type MappingEntry struct {
	Key      RouteKey
	Handler  Handler
	Specs    []VersionSpec
	Priority int

	// seq is the registration order, used for first-registered-wins ties.
	seq uint64
}

// Versioned reports whether the entry declares at least one version.
func (e *MappingEntry) Versioned() bool {
	return len(e.Specs) > 0
}

// Seq returns the registration sequence number of the entry.
func (e *MappingEntry) Seq() uint64 {
	return e.seq
}

// VersionValues returns the declared version values in declaration order.
func (e *MappingEntry) VersionValues() []string {
	out := make([]string, len(e.Specs))
	for i, s := range e.Specs {
		out[i] = s.Value
	}
	return out
}
