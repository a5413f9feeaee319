package httpx

import (
	"fmt"
	"net/http"

	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/slogx"
)

// HandlerFunc is a request handler that reports failure by returning an
// error instead of writing a status itself. Wrap funnels every returned
// error to the terminal handler, so a handler cannot forget to serialize a
// failure.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts a HandlerFunc to http.Handler, serializing any returned error
// through the taxonomy.
func Wrap(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, r, err)
		}
	})
}

// Recover converts handler panics into Internal taxonomy errors. The panic
// value is logged in full; the client sees only the generic defect message.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log := slogx.FromContext(r.Context())
					log.Error("panic recovered", "panic", fmt.Sprintf("%v", rec), "path", r.URL.Path)
					WriteError(w, r, errx.Internal("an unexpected error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NotFoundHandler terminates unmatched routes with the taxonomy shape.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, errx.NotFound(fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path)))
	})
}
