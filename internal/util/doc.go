// Package util provides shared helpers for the version router.
//
// # Context Helpers
//
// Request-scoped values set by the server and read by handlers:
//
//	ctx = util.ContextWithRoute(ctx, "GET /users")
//	route := util.RouteFromContext(ctx)
//
// # Error Types
//
//   - ConfigError: configuration validation errors
//   - RouteNotFoundError: no route key matches a request
//   - UpstreamError: proxy upstream failures
//   - Sentinel errors: ErrNotFound, ErrUpstreamUnavailable, ErrConfigInvalid
//
// # Error Conventions
//
// Errors follow one pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., ConfigError, RouteNotFoundError). Each
//     type implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// # Validation
//
// Validation helpers for upstream URLs, methods, and headers:
//
//	err := util.ValidateUpstreamURL("https://example.com")
//	err := util.ValidateHTTPMethod("GET")
package util
