package util

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by the structured errors below.
var (
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConfigInvalid       = errors.New("invalid configuration")
)

// ConfigError reports a problem in a route table document. Field is the
// dotted path of the offending value, if known.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	if e.Field != "" {
		msg += " at " + e.Field
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is matches ErrConfigInvalid and any *ConfigError.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a ConfigError wrapping cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// RouteNotFoundError is returned when no route key matches a request's
// method and path, before any version is looked at.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route key matches %s %s", e.Method, e.Path)
}

// Is matches ErrNotFound and any *RouteNotFoundError.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a RouteNotFoundError.
func NewRouteNotFoundError(method, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Method: method, Path: path}
}

// UpstreamError reports a failure of the upstream behind a resolved
// handler: an unusable target URL or a failed proxied request.
type UpstreamError struct {
	Handler string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("handler %s: %s", e.Handler, e.Op)
	}
	return fmt.Sprintf("handler %s: %s: %v", e.Handler, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches ErrUpstreamUnavailable and any *UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstreamUnavailable {
		return true
	}
	_, ok := target.(*UpstreamError)
	return ok
}

// NewUpstreamError creates an UpstreamError for handler.
func NewUpstreamError(handler, op string, err error) *UpstreamError {
	return &UpstreamError{Handler: handler, Op: op, Err: err}
}
