// Package requesttime pins a single "now" per HTTP request so every timestamp
// written while handling it agrees.
package requesttime

import (
	"net/http"
	"time"

	"botregistry/pkg/requestcontext"
)

// Middleware captures the wall clock at the start of the request and stores it
// in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
