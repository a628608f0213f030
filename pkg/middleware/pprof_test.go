package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name   string
		cidrs  []string
		remote string
		want   int
	}{
		{"loopback allowed", []string{"127.0.0.0/8"}, "127.0.0.1:40000", http.StatusOK},
		{"outside range denied", []string{"10.0.0.0/8"}, "192.168.1.1:40000", http.StatusForbidden},
		{"second prefix matches", []string{"10.0.0.0/8", "172.16.0.0/12"}, "172.20.3.4:1", http.StatusOK},
		{"ipv6 loopback", []string{"::1/128"}, "[::1]:40000", http.StatusOK},
		{"ipv4 mapped ipv6", []string{"10.0.0.0/8"}, "[::ffff:10.1.2.3]:40000", http.StatusOK},
		{"address without port", []string{"127.0.0.0/8"}, "127.0.0.1", http.StatusOK},
		{"unparseable peer", []string{"0.0.0.0/0"}, "somewhere", http.StatusForbidden},
		{"invalid entries skipped", []string{"not-a-cidr", "127.0.0.0/8"}, "127.0.0.1:1", http.StatusOK},
		{"empty list denies", nil, "127.0.0.1:1", http.StatusForbidden},
		{"unmasked prefix", []string{"192.168.7.9/16"}, "192.168.200.1:1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := IPAllowlist(tt.cidrs, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			req.RemoteAddr = tt.remote
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestIPAllowlist_IgnoresForwardedFor(t *testing.T) {
	handler := IPAllowlist([]string{"127.0.0.0/8"}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, discardLogger())

	tests := []struct {
		path   string
		remote string
		want   int
	}{
		{"/debug/pprof/", "127.0.0.1:1", http.StatusOK},
		{"/debug/pprof/cmdline", "127.0.0.1:1", http.StatusOK},
		{"/debug/pprof/symbol", "127.0.0.1:1", http.StatusOK},
		{"/debug/pprof/heap?debug=1", "127.0.0.1:1", http.StatusOK},
		{"/debug/pprof/heap", "203.0.113.1:1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = tt.remote
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
