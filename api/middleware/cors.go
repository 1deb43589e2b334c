package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}
	corsHeaders = []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader}
)

// CORS allows the configured storefront origins. Credentials are only
// allowed when no wildcard origin is configured.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		ExposedHeaders:   []string{requestIDHeader, replayedHeader, "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}).Handler
}
