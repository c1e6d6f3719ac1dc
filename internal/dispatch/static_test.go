package dispatch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handler     *StaticHandler
		method      string
		status      int
		body        string
		contentType string
	}{
		{
			name:        "json body with header",
			handler:     NewStaticHandler(http.StatusOK, `{"v":2}`, map[string]string{"Content-Type": "application/json"}),
			method:      http.MethodGet,
			status:      http.StatusOK,
			body:        `{"v":2}`,
			contentType: "application/json",
		},
		{
			name:        "detected content type",
			handler:     NewStaticHandler(0, "hello", nil),
			method:      http.MethodGet,
			status:      http.StatusOK,
			body:        "hello",
			contentType: "text/plain; charset=utf-8",
		},
		{
			name:        "head has no body",
			handler:     NewStaticHandler(http.StatusCreated, "hello", nil),
			method:      http.MethodHead,
			status:      http.StatusCreated,
			body:        "",
			contentType: "text/plain; charset=utf-8",
		},
		{
			name:    "empty body",
			handler: NewStaticHandler(http.StatusNoContent, "", nil),
			method:  http.MethodDelete,
			status:  http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
		})
	}
}
