// Package middleware holds the request middleware of the API, chi and
// go-chi/cors behind plain func(http.Handler) http.Handler values
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

func RequestID() func(http.Handler) http.Handler    { return chimw.RequestID }
func RealIP() func(http.Handler) http.Handler       { return chimw.RealIP }
func NoCache() func(http.Handler) http.Handler      { return chimw.NoCache }
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Timeout cancels the request context after d; zero leaves it unbounded
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimw.Timeout(d)
}

// Compress gzips JSON responses; level is a compress/flate level
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.Compress(level, "application/json")
}

// CORS lets browsers on origins call the API; no origins means any. Credentials are never allowed
func CORS(origins []string, maxAge time.Duration) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After", "X-RateLimit-Remaining"},
		MaxAge:         int(maxAge / time.Second),
	})
}
