package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrAmbiguousMapping is returned when two declarations share route
	// key and version set.
	ErrAmbiguousMapping = errors.New("ambiguous mapping")

	// ErrRegistryFrozen is returned by Register after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidDeclaration is returned for declarations without a
	// handler ID or without paths.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

// AmbiguousMappingError reports a duplicate (methods, paths, version set)
// fingerprint. It is fatal at startup.
type AmbiguousMappingError struct {
	Key         RouteKey
	Versions    []string
	Existing    Handler
	Conflicting Handler
}

// Error implements the error interface.
func (e *AmbiguousMappingError) Error() string {
	versions := "none"
	if len(e.Versions) > 0 {
		versions = strings.Join(e.Versions, ",")
	}
	return fmt.Sprintf(
		"ambiguous mapping for %s (versions: %s): %s conflicts with already registered %s",
		e.Key, versions, e.Conflicting, e.Existing,
	)
}

// Is checks if the error matches the target.
func (e *AmbiguousMappingError) Is(target error) bool {
	if target == ErrAmbiguousMapping {
		return true
	}
	_, ok := target.(*AmbiguousMappingError)
	return ok
}

// RegistrationConflictWarning records a plain registration rejected by
// the override resolver. It is kept for introspection and never returned
// as an error.
type RegistrationConflictWarning struct {
	Key              RouteKey
	Kept             Handler
	KeptPriority     int
	Rejected         Handler
	RejectedPriority int
}

// String renders the warning.
func (w *RegistrationConflictWarning) String() string {
	return fmt.Sprintf(
		"registration of %s (priority %d) for %s rejected: %s (priority %d) already registered",
		w.Rejected, w.RejectedPriority, w.Key, w.Kept, w.KeptPriority,
	)
}
