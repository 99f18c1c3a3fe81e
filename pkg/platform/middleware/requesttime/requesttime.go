// Package requesttime pins one "now" per HTTP request, so every timestamp a
// request writes and every date or age rule it evaluates agree.
package requesttime

import (
	"net/http"
	"time"

	"github.com/werterpires/salt-in-forms-back-sub000/pkg/requestcontext"
)

// Middleware stores the request start time in the context. Services read it
// through requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
