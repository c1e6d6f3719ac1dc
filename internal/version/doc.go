// Package version provides version string parsing and comparison for
// versioned route selection.
//
// A version string is split on any of the delimiters "-", "_", ".", "/",
// ";" and ":" into 2 to 4 segments. Comparison is pluggable through the
// Comparator interface.
//
// # Comparators
//
//   - LexicalComparator (default): compares segments as ordinal strings,
//     so "1.9.0" is greater than "1.10.0".
//   - NumericComparator: compares segments as integers when both sides
//     are numeric, falling back to ordinal comparison otherwise.
//
// # Usage
//
//	segments, err := version.Parse("1.10.0.2b", true)
//	if err != nil {
//	    return err
//	}
//
//	cmp := version.LexicalComparator{}
//	if cmp.Compare(requested, declared) >= 0 {
//	    // requested version is compatible with declared
//	}
package version
