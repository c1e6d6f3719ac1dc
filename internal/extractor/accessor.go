package extractor

import (
	"net/http"
	"net/url"
)

// Accessor exposes the request values the extractor reads.
type Accessor interface {
	// QueryParam returns the first value of a query or form parameter.
	QueryParam(name string) (string, bool)
	// Header returns the first value of a header.
	Header(name string) (string, bool)
}

// HTTPAccessor reads from an *http.Request. Form values are used when the
// request form has already been parsed; otherwise the URL query is parsed
// once. The request body is never read.
type HTTPAccessor struct {
	req   *http.Request
	query url.Values
}

// NewHTTPAccessor creates an accessor for r.
func NewHTTPAccessor(r *http.Request) *HTTPAccessor {
	a := &HTTPAccessor{req: r}
	if r.Form != nil {
		a.query = r.Form
	} else if r.URL != nil {
		a.query = r.URL.Query()
	}
	return a
}

// QueryParam implements Accessor.
func (a *HTTPAccessor) QueryParam(name string) (string, bool) {
	return first(a.query[name])
}

// Header implements Accessor.
func (a *HTTPAccessor) Header(name string) (string, bool) {
	return first(a.req.Header.Values(name))
}

// MapAccessor is an Accessor over plain maps.
type MapAccessor struct {
	Query   url.Values
	Headers http.Header
}

// QueryParam implements Accessor.
func (a MapAccessor) QueryParam(name string) (string, bool) {
	return first(a.Query[name])
}

// Header implements Accessor.
func (a MapAccessor) Header(name string) (string, bool) {
	return first(a.Headers.Values(name))
}

func first(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}
