package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Sandanitin/AJ-Mana-Style/internal/cart"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httputil"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
)

// SessionHeader identifies the browser session whose cart a request acts on.
const SessionHeader = "X-Session-ID"

const (
	maxSessionIDLength = 128
	maxBodyBytes       = 1 << 20
)

// SessionFromHeader reads X-Session-ID into the request context. Requests
// without the header share the default session.
func SessionFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := strings.TrimSpace(r.Header.Get(SessionHeader))
		if session == "" {
			session = cart.DefaultSession
		}
		if len(session) > maxSessionIDLength || strings.ContainsAny(session, ": \t") {
			httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid "+SessionHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), session)))
	})
}

// sessionFromContext returns the session set by SessionFromHeader.
func sessionFromContext(ctx context.Context) string {
	if s := logger.SessionIDFromContext(ctx); s != "" {
		return s
	}
	return cart.DefaultSession
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteErrorCode(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// decodeJSON decodes a size-limited request body into dst and writes a 400
// when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	return true
}
