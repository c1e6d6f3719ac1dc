package dispatch

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Factory builds a handler on first use.
type Factory func() (http.Handler, error)

// Lazy is an http.Handler whose delegate is built on first use. The lock
// is held only while the delegate is built, never while it serves. A
// failed build is not cached, so the next request retries.
type Lazy struct {
	name     string
	factory  Factory
	mu       sync.Mutex
	delegate atomic.Pointer[delegateBox]
	onError  func(w http.ResponseWriter, r *http.Request, err error)
}

type delegateBox struct {
	handler http.Handler
}

// NewLazy creates a lazily built handler.
func NewLazy(name string, factory Factory) *Lazy {
	return &Lazy{
		name:    name,
		factory: factory,
		onError: defaultErrorHandler,
	}
}

// Get returns the delegate, building it if needed.
func (l *Lazy) Get() (http.Handler, error) {
	if box := l.delegate.Load(); box != nil {
		return box.handler, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if box := l.delegate.Load(); box != nil {
		return box.handler, nil
	}

	h, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.delegate.Store(&delegateBox{handler: h})
	return h, nil
}

// Ready reports whether the delegate has been built.
func (l *Lazy) Ready() bool {
	return l.delegate.Load() != nil
}

// Name returns the handler name.
func (l *Lazy) Name() string {
	return l.name
}

// ServeHTTP implements http.Handler.
func (l *Lazy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := l.Get()
	if err != nil {
		l.onError(w, r, err)
		return
	}
	h.ServeHTTP(w, r)
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	writeJSONError(w, http.StatusBadGateway, "backend unavailable")
}
