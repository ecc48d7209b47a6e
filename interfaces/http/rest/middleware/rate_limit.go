package middleware

import (
	"net"
	"net/http"

	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/ratelimit"

	"go.uber.org/zap"
)

// RateLimit rejects requests from a client address once limiter refuses it.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, errs *apperrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("Rate limiter failed", zap.String("client", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", "1")
				errs.Handle(w, r, apperrors.ErrRateLimitExceeded.New())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the client IP; chi's RealIP middleware has already applied
// X-Forwarded-For when present.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
