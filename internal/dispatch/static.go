package dispatch

import (
	"net/http"
	"strconv"
)

// StaticHandler writes a fixed response.
type StaticHandler struct {
	Status  int
	Body    []byte
	Headers map[string]string
}

// NewStaticHandler creates a static handler. A zero status means 200.
func NewStaticHandler(status int, body string, headers map[string]string) *StaticHandler {
	if status == 0 {
		status = http.StatusOK
	}
	return &StaticHandler{
		Status:  status,
		Body:    []byte(body),
		Headers: headers,
	}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range h.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" && len(h.Body) > 0 {
		w.Header().Set("Content-Type", http.DetectContentType(h.Body))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(h.Body)))
	w.WriteHeader(h.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(h.Body)
	}
}
