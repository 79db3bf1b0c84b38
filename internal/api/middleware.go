package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"stakesure/internal/bootstrap/logging"
)

const identityHeader = "X-Member-Id"

type identityKey struct{}

// withRequestID tags every request with a fresh id for log correlation.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", requestID))
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity rejects requests without a member identity header and
// stores the identity in context for handlers.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get(identityHeader)
		if identity == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]errorBody{"error": {
				Code:    "identity_required",
				Message: identityHeader + " header is required",
			}})
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		ctx = logging.WithAttrs(ctx, slog.String("identity", identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) string {
	identity, _ := r.Context().Value(identityKey{}).(string)
	return identity
}

// identityLimiter rate-limits per member identity.
type identityLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   float64
	burst    int
}

func newIdentityLimiter(perMinute float64, burst int) *identityLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &identityLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMinute,
		burst:    burst,
	}
}

func (l *identityLimiter) allow(identity string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[identity]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.perMin/60.0), l.burst)
		l.limiters[identity] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func (l *identityLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(identityFrom(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]errorBody{"error": {
				Code:    "rate_limited",
				Message: "too many requests for this identity",
			}})
			return
		}
		next.ServeHTTP(w, r)
	})
}
