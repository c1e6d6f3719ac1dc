package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparator orders two version strings. Compare returns -1, 0 or 1.
type Comparator interface {
	Compare(a, b string) int
}

// ComparatorFunc adapts a plain function to the Comparator interface.
type ComparatorFunc func(a, b string) int

// Compare calls f(a, b).
func (f ComparatorFunc) Compare(a, b string) int {
	return f(a, b)
}

// Comparator names accepted by ComparatorByName.
const (
	ComparatorLexical = "lexical"
	ComparatorNumeric = "numeric"
)

// LexicalComparator compares versions segment by segment as ordinal
// strings. It is the default comparator.
//
// Identical raw strings compare equal. Otherwise the first differing
// segment decides. When all shared segments are equal but the raw strings
// differ (different delimiters or segment counts), the result is -1 in
// both directions. Multi-digit segments are not compared numerically:
// "1.9.0" is greater than "1.10.0".
type LexicalComparator struct{}

// Compare implements Comparator.
func (LexicalComparator) Compare(a, b string) int {
	if a == b {
		return 0
	}

	sa, sb := Split(a), Split(b)
	n := min(len(sa), len(sb))
	for i := 0; i < n; i++ {
		switch {
		case sa[i] > sb[i]:
			return 1
		case sa[i] < sb[i]:
			return -1
		}
	}
	return -1
}

// NumericComparator compares segments as unsigned integers when both
// segments are numeric and as ordinal strings otherwise. A version with
// more segments ranks above its own prefix.
type NumericComparator struct{}

// Compare implements Comparator.
func (NumericComparator) Compare(a, b string) int {
	if a == b {
		return 0
	}

	sa, sb := Split(a), Split(b)
	n := min(len(sa), len(sb))
	for i := 0; i < n; i++ {
		if c := compareSegment(sa[i], sb[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(sa) > len(sb):
		return 1
	case len(sa) < len(sb):
		return -1
	default:
		return 0
	}
}

// compareSegment compares two segments numerically when possible.
func compareSegment(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na > nb:
			return 1
		case na < nb:
			return -1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// ComparatorByName returns the built-in comparator registered under name.
// An empty name selects the lexical comparator.
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ComparatorLexical:
		return LexicalComparator{}, nil
	case ComparatorNumeric:
		return NumericComparator{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownComparator, name)
	}
}
