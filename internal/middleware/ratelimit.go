package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/avdeev-dev/fulfillment-service/pkg/utils"
)

type Limiter interface {
	Allow(ctx context.Context, action, identifier string) bool
}

// RateLimit guards a route with the given action namespace, keyed by the
// caller's address. Denials answer with 429 before the handler runs.
func RateLimit(limiter Limiter, action string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !limiter.Allow(r.Context(), action, host) {
				utils.WriteTooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
