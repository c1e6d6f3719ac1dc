// Package router selects the handler for a request.
//
// Selection happens in two steps. Router narrows the request to one
// route key by method and path. Path patterns are exact paths,
// {param} patterns, * and ** wildcards, or "~" followed by a regular
// expression; more specific patterns are tried first. Resolver then
// extracts the client version and group and lets the Engine choose among
// the mapping entries of that key:
//
//	rt, err := router.New(reg) // reg must be frozen
//	res := router.NewResolver(extractor.New(extractor.DefaultConfig()))
//
//	m, err := rt.Match(req)
//	if err != nil {
//	    // util.ErrNotFound
//	}
//	handler, err := res.Resolve(m.Route.Entries, extractor.NewHTTPAccessor(req))
//	if errors.Is(err, router.ErrNoMatch) {
//	    // no compatible version
//	}
//
// Both types are immutable after construction and safe for concurrent
// use without locking.
package router
