package router

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/ponggrid/authsvc/internal/pkg/ratelimit"
)

// middlewareRateLimit throttles requests per client IP. A nil limiter or a
// store failure lets the request through; availability beats strictness here.
func middlewareRateLimit(limiter ratelimit.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(key); err == nil {
				key = host
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limit check failed, allowing request",
					"error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))

			if !res.Allowed() {
				retryAfter := int(math.Ceil(res.RetryAfter().Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, map[string]any{
					"message":    "Too many requests",
					"retryAfter": retryAfter,
				}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
