package extractor

import (
	"slices"
	"sync"

	"golang.org/x/text/cases"
)

// foldPool holds case folders; a cases.Caser is not safe for concurrent use.
var foldPool = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// GroupEqualFunc returns the group equality function for the given
// case sensitivity.
func GroupEqualFunc(caseSensitive bool) func(a, b string) bool {
	if caseSensitive {
		return equalExact
	}
	return EqualFold
}

func equalExact(a, b string) bool {
	return a == b
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	if a == b {
		return true
	}
	c := foldPool.Get().(*cases.Caser)
	fa := c.String(a)
	fb := c.String(b)
	foldPool.Put(c)
	return fa == fb
}

// MatchesGroup reports whether a spec with the declared groups accepts
// group g. Empty declared groups accept any group, including none.
func MatchesGroup(declared []string, g string, equal func(a, b string) bool) bool {
	if len(declared) == 0 {
		return true
	}
	if g == "" {
		return false
	}
	return slices.ContainsFunc(declared, func(d string) bool {
		return equal(d, g)
	})
}
