package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/mbnr/matrimonial/internal/auth"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// RateLimitByIP limits requests per client IP. Used in front of the
// unauthenticated auth endpoints.
func RateLimitByIP(config RateLimitConfig, ips *pkghttp.IPResolver) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return "ip:" + ips.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitByUser limits requests per authenticated user, falling back to the
// client IP when no claims are in the context. It must run after the auth
// middleware.
func RateLimitByUser(config RateLimitConfig, ips *pkghttp.IPResolver) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetUserFromContext(r); claims != nil {
				return "user:" + claims.UserID, nil
			}
			return "ip:" + ips.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// WritesOnly applies limit to state-changing methods and passes reads through.
func WritesOnly(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded, try again later")
}
