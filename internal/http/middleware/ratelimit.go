package middlewarex

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients over their per-window budget with 429.
// Limiter errors fail open.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", "60")
				deny(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chimw.RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
