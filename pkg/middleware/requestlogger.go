package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
)

// RequestLogger stores a logger carrying the request's correlation, session,
// user and trace ids in the context, where logger.FromContext finds it.
//
// Mount it after every middleware that adds one of those ids. It may be
// mounted again further down a route tree, e.g. after Auth.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.NewContext(r.Context(), logger.WithContext(r.Context(), base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
