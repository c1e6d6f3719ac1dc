package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vyrodovalexey/verroute/internal/version"
)

// fingerprint identifies a declaration for conflict detection: route key
// plus the sorted set of declared version values. Groups do not take part.
func fingerprint(key RouteKey, specs []VersionSpec) string {
	var b strings.Builder
	b.WriteString(key.String())
	for _, v := range sortedValues(specs) {
		b.WriteByte(0)
		b.WriteString(v)
	}
	return b.String()
}

// sortedValues returns the version values of specs in sorted order.
// Repeated values are kept, so [1.0 1.0] and [1.0] differ.
func sortedValues(specs []VersionSpec) []string {
	values := make([]string, 0, len(specs))
	for _, s := range specs {
		values = append(values, s.Value)
	}
	slices.Sort(values)
	return values
}

// validateDeclaration checks a declaration before it is registered and
// returns its normalized route key and specs.
func validateDeclaration(d Declaration) (RouteKey, []VersionSpec, error) {
	if strings.TrimSpace(d.Handler.ID) == "" {
		return RouteKey{}, nil, fmt.Errorf("%w: handler ID is required", ErrInvalidDeclaration)
	}

	key := NewRouteKey(d.Key.Methods, d.Key.Paths)
	if len(key.Paths) == 0 {
		return RouteKey{}, nil, fmt.Errorf(
			"%w: handler %s declares no paths", ErrInvalidDeclaration, d.Handler,
		)
	}

	specs := make([]VersionSpec, 0, len(d.Specs))
	for _, s := range d.Specs {
		if _, err := version.Parse(s.Value, true); err != nil {
			return RouteKey{}, nil, fmt.Errorf("handler %s: %w", d.Handler, err)
		}
		specs = append(specs, VersionSpec{
			Value:  s.Value,
			Groups: normalizeGroups(s.Groups),
		})
	}

	return key, specs, nil
}

// normalizeGroups drops blank group tags and duplicates, keeping order.
func normalizeGroups(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
