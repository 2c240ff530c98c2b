package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string // Allowed origins, or ["*"] for all
	AllowedMethods   []string // HTTP methods allowed
	AllowedHeaders   []string // Headers allowed in requests
	AllowCredentials bool     // Whether cookies and auth headers are allowed
	MaxAge           int      // Preflight cache duration in seconds
}

// DefaultCORSConfig returns a configuration that allows no cross-origin
// access. Deployments opt in by listing origins (or "*" for the console).
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   []string{},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	}
}

// originAllowed reports whether the origin matches the config. "*" matches
// any origin; the concrete origin is echoed back rather than the wildcard so
// the header stays compatible with credentials.
func (c *CORSConfig) originAllowed(origin string) bool {
	if c == nil || origin == "" {
		return false
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// CORS creates middleware that handles cross-origin request headers and
// preflight OPTIONS requests. Preflights from unlisted origins get 403.
func CORS(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := config.originAllowed(origin)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")

				methods := "GET, POST, PUT, DELETE, OPTIONS"
				headers := "Content-Type, Authorization, X-API-Key, X-Request-ID"
				if len(config.AllowedMethods) > 0 {
					methods = strings.Join(config.AllowedMethods, ", ")
				}
				if len(config.AllowedHeaders) > 0 {
					headers = strings.Join(config.AllowedHeaders, ", ")
				}
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)

				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}

			if r.Method == http.MethodOptions {
				if allowed {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
