package middleware

import (
	"net/http"
)

// CORS writes cross-origin headers for the browser frontend.
type CORS struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewCORS creates CORS middleware. An entry of "*" allows every origin.
func NewCORS(allowedOrigins []string) *CORS {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}
	return &CORS{allowedOrigins: allowed, allowAll: allowAll}
}

// Handler sets the CORS headers and short-circuits preflight requests.
func (m *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && (m.allowAll || m.allowedOrigins[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
