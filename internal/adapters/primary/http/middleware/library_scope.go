package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/studyspace-backend/internal/infrastructure/logging"
)

// LibraryScope tags the request context with the library named by the
// route parameter so every log line below it carries library_id.
func LibraryScope(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := chi.URLParam(r, param); id != "" {
				r = r.WithContext(logging.WithLibraryID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
