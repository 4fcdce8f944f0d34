// Package httpx pkg/http/middleware.go
package httpx

import (
	"net/http"
)

// CommonMiddleware sets the CORS and content-type headers shared by every
// API response and short-circuits CORS preflight requests.
func CommonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Handlers that answer with http.Error reset this to text/plain.
		w.Header().Set("Content-Type", "application/json")

		next.ServeHTTP(w, r)
	})
}
