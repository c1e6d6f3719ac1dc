package version

import (
	"errors"
	"fmt"
)

// ErrMalformedVersion is the sentinel matched by every MalformedVersionError.
var ErrMalformedVersion = errors.New("malformed version")

// ErrUnknownComparator is returned by ComparatorByName for unsupported names.
var ErrUnknownComparator = errors.New("unknown version comparator")

// MalformedVersionError reports a version string that does not split into
// MinSegments..MaxSegments segments.
type MalformedVersionError struct {
	Version  string
	Segments int
}

// Error implements the error interface.
func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version %q: got %d segments, want %d to %d",
		e.Version, e.Segments, MinSegments, MaxSegments)
}

// Is checks if the error matches the target.
func (e *MalformedVersionError) Is(target error) bool {
	if target == ErrMalformedVersion {
		return true
	}
	_, ok := target.(*MalformedVersionError)
	return ok
}
