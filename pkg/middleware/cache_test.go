package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		maxAge int
		method string
		status int
		want   string
	}{
		{"successful get", 300, http.MethodGet, http.StatusOK, "public, max-age=300, stale-while-revalidate=300"},
		{"head", 60, http.MethodHead, http.StatusOK, "public, max-age=60, stale-while-revalidate=60"},
		{"zero max age", 0, http.MethodGet, http.StatusOK, "no-cache"},
		{"error response", 300, http.MethodGet, http.StatusBadGateway, "no-store"},
		{"post untouched", 300, http.MethodPost, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CacheControl(tt.maxAge)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/v1/faqs", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.want, rr.Header().Get("Cache-Control"))
		})
	}
}

func TestCacheControl_ImplicitOK(t *testing.T) {
	handler := CacheControl(120)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil))

	assert.Equal(t, "public, max-age=120, stale-while-revalidate=120", rr.Header().Get("Cache-Control"))
	assert.Equal(t, `{"data":[]}`, rr.Body.String())
}

func TestNoStore(t *testing.T) {
	handler := NoStore("X-Session-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, "private, no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, []string{"X-Session-ID"}, rr.Header().Values("Vary"))
}
