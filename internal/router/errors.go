package router

import (
	"errors"
	"fmt"

	"github.com/vyrodovalexey/verroute/internal/util"
)

// ErrNoMatch is returned when no mapping entry is compatible with the
// request version and group.
var ErrNoMatch = errors.New("no compatible version")

// NoMatchError is the per-request outcome of a failed resolution. It
// matches ErrNoMatch and util.ErrNotFound.
type NoMatchError struct {
	Route   string
	Version string
	Group   string
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	v := e.Version
	if v == "" {
		v = "none"
	}
	if e.Group == "" {
		return fmt.Sprintf("no compatible version for %s (version: %s)", e.Route, v)
	}
	return fmt.Sprintf("no compatible version for %s (version: %s, group: %s)", e.Route, v, e.Group)
}

// Is checks if the error matches the target.
func (e *NoMatchError) Is(target error) bool {
	if target == ErrNoMatch || target == util.ErrNotFound {
		return true
	}
	_, ok := target.(*NoMatchError)
	return ok
}
