package ratelimit

import (
	"net/http"

	"github.com/gorilla/mux"
	"webhook-notifier/internal/common/logging"
)

// KeyFunc extracts the rate-limit key from a request
type KeyFunc func(r *http.Request) string

// SourceKey keys requests by the webhook source path variable, falling back
// to the source header and then the remote address.
func SourceKey(r *http.Request) string {
	if source := mux.Vars(r)["source"]; source != "" {
		return source
	}
	if source := r.Header.Get("X-Webhook-Source"); source != "" {
		return source
	}
	return r.RemoteAddr
}

// HTTPMiddleware returns middleware enforcing the limiter per key
func HTTPMiddleware(limiter Limiter, keyFn KeyFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if !limiter.TryAcquireForKey(key) {
				logging.Warn("Rate limit exceeded",
					logging.String("key", key),
					logging.String("path", r.URL.Path),
				)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
