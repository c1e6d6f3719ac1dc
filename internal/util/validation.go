package util

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// ValidateUpstreamURL checks a proxy target: an absolute http or https
// URL with a host and no query or fragment. A path is kept as the
// upstream base path.
func ValidateUpstreamURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	case u.Host == "":
		return fmt.Errorf("URL must have a host")
	case u.RawQuery != "" || u.Fragment != "":
		return fmt.Errorf("URL must not carry a query or fragment")
	}
	return nil
}

// ValidateHeaderName checks that name is a valid HTTP header field name.
func ValidateHeaderName(name string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("invalid header name: %q", name)
	}
	return nil
}

// ValidateNonNegativePort accepts 0 (pick a free port) through 65535.
func ValidateNonNegativePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", port)
	}
	return nil
}

// ParseDuration parses a Go duration string. A bare integer is read as
// seconds and an empty string as zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if strings.Trim(s, "0123456789") == "" {
		return time.ParseDuration(s + "s")
	}
	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// ValidateDuration rejects negative durations.
func ValidateDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("duration cannot be negative: %v", d)
	}
	return nil
}

// ValidateHTTPMethod accepts the standard methods in any case, and "*"
// for every method.
func ValidateHTTPMethod(method string) error {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace, "*":
		return nil
	}
	return fmt.Errorf("invalid HTTP method: %s", method)
}

// ValidateHTTPStatusCode checks that code is in the 100-599 range.
func ValidateHTTPStatusCode(code int) error {
	if code < 100 || code > 599 {
		return fmt.Errorf("HTTP status code must be between 100 and 599, got: %d", code)
	}
	return nil
}

// ValidateNonEmpty rejects blank strings.
func ValidateNonEmpty(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

// ValidateSamplingRate checks a trace sampling ratio.
func ValidateSamplingRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("sampling rate must be between 0 and 1, got: %v", rate)
	}
	return nil
}
