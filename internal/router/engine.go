package router

import (
	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/registry"
	"github.com/vyrodovalexey/verroute/internal/version"
)

// Candidate is a mapping entry compatible with a request, with the
// matching declared versions in declaration order. Plain entries have no
// versions.
type Candidate struct {
	Entry    *registry.MappingEntry
	Versions []string
}

// Selection is the outcome of a successful match.
type Selection struct {
	Entry *registry.MappingEntry
	// Version is the first matching declared version, empty for plain
	// entries.
	Version string
	// Request is the version context the selection was made for.
	Request extractor.RequestVersionContext
	// Candidates is the number of compatible entries considered.
	Candidates int
}

// Handler returns the selected handler identity.
func (s Selection) Handler() registry.Handler {
	return s.Entry.Handler
}

// Engine filters and ranks the entries of one route key against a
// request version context. It holds no mutable state.
type Engine struct {
	cmp        version.Comparator
	groupEqual func(a, b string) bool
}

// NewEngine creates an engine. A nil comparator selects the lexical
// comparator; a nil group equality folds case.
func NewEngine(cmp version.Comparator, groupEqual func(a, b string) bool) *Engine {
	if cmp == nil {
		cmp = version.LexicalComparator{}
	}
	if groupEqual == nil {
		groupEqual = extractor.GroupEqualFunc(false)
	}
	return &Engine{cmp: cmp, groupEqual: groupEqual}
}

// Candidates returns the entries compatible with rv, in entry order.
//
// A versioned spec matches when its groups accept rv.Group and the
// request version is the same as or newer than the spec value. A request
// without a well-formed version matches no versioned spec. Plain entries
// are always candidates.
func (e *Engine) Candidates(entries []*registry.MappingEntry, rv extractor.RequestVersionContext) []Candidate {
	versionOK := rv.HasVersion() && version.Valid(rv.Version)

	var out []Candidate
	for _, entry := range entries {
		if !entry.Versioned() {
			out = append(out, Candidate{Entry: entry})
			continue
		}
		if !versionOK {
			continue
		}

		var versions []string
		for _, spec := range entry.Specs {
			if !extractor.MatchesGroup(spec.Groups, rv.Group, e.groupEqual) {
				continue
			}
			if e.cmp.Compare(rv.Version, spec.Value) >= 0 {
				versions = append(versions, spec.Value)
			}
		}
		if len(versions) > 0 {
			out = append(out, Candidate{Entry: entry, Versions: versions})
		}
	}
	return out
}

// Select returns the best candidate for rv. It reports false when no
// entry is compatible.
//
// Candidates are ranked by the first element of their version list.
// Versioned candidates rank above plain ones, and on equal rank the
// first registered entry wins.
func (e *Engine) Select(entries []*registry.MappingEntry, rv extractor.RequestVersionContext) (Selection, bool) {
	candidates := e.Candidates(entries, rv)
	if len(candidates) == 0 {
		return Selection{Request: rv}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if e.better(c, best) {
			best = c
		}
	}

	sel := Selection{
		Entry:      best.Entry,
		Request:    rv,
		Candidates: len(candidates),
	}
	if len(best.Versions) > 0 {
		sel.Version = best.Versions[0]
	}
	return sel, true
}

// better reports whether c ranks strictly above best.
func (e *Engine) better(c, best Candidate) bool {
	switch {
	case len(c.Versions) == 0:
		return false
	case len(best.Versions) == 0:
		return true
	default:
		return e.cmp.Compare(c.Versions[0], best.Versions[0]) > 0
	}
}
