// Package server hosts the route table behind a gin engine.
//
// Every request that does not hit an operational endpoint (/healthz,
// /readyz, /_routes and the metrics path) is narrowed to one route key by
// the router, resolved to a handler by the version resolver, and served
// by that handler. The routing state lives in an immutable Table that is
// replaced atomically on reload.
package server
