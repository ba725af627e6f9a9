package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
)

// Limiter is satisfied by cache.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, int, error)
}

// RateLimit throttles a session-scoped route. The key is prefix plus the {id}
// path value, so it must wrap a handler registered on a pattern with {id}.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, prefix string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			logger := LoggerFromContext(r.Context())
			key := prefix + ":" + r.PathValue("id")

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limit check failed, allowing request", slog.String("key", key), slog.String("error", err.Error()))
				next(w, r)
				return
			}

			if !allowed {
				logger.Warn("Rate limit exceeded", slog.String("key", key), slog.Int("retryAfter", retryAfter))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				response.Error(w, errors.TooManyRequestsError("Too many capture attempts. Please try again later."))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			next(w, r)
		}
	}
}
