package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/verroute/internal/registry"
)

// ErrDuplicateHandler is returned when a handler identity is added twice.
var ErrDuplicateHandler = errors.New("duplicate handler")

// Catalog maps handler identities to HTTP handlers. It is filled before
// serving starts and only read afterwards. Entries are keyed on the
// (Source, ID) pair, not on the printed form.
type Catalog struct {
	handlers map[handlerKey]http.Handler
}

type handlerKey struct {
	source, id string
}

func keyOf(h registry.Handler) handlerKey {
	return handlerKey{source: h.Source, id: h.ID}
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{handlers: make(map[handlerKey]http.Handler)}
}

// Add registers h for the handler identity id.
func (c *Catalog) Add(id registry.Handler, h http.Handler) error {
	key := keyOf(id)
	if _, ok := c.handlers[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, id)
	}
	c.handlers[key] = h
	return nil
}

// Get returns the handler for the identity id.
func (c *Catalog) Get(id registry.Handler) (http.Handler, bool) {
	h, ok := c.handlers[keyOf(id)]
	return h, ok
}

// Has reports whether the identity id is registered.
func (c *Catalog) Has(id registry.Handler) bool {
	_, ok := c.handlers[keyOf(id)]
	return ok
}

// Len returns the number of handlers.
func (c *Catalog) Len() int {
	return len(c.handlers)
}

// errorBody is the JSON error response body.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
