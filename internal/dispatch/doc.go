// Package dispatch turns resolved handler identities into HTTP handlers.
//
// A Catalog maps each handler identity of the route table to an
// http.Handler. Handlers are either static responses or reverse proxies.
// Proxies are built lazily on first use through Lazy, which populates its
// delegate once under a lock and serves without holding it.
package dispatch
