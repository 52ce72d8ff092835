package httpapi

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiters hands out one token-bucket limiter per client IP, created
// lazily on first use. Grounded on the per-client shape of
// DimaJoyti-ai-agentic-crypto-browser's rate.NewLimiter usage in
// pkg/middleware; that repo limits per authenticated user, this one has no
// auth layer so it keys on remote address instead.
type clientLimiters struct {
	mu       sync.Mutex
	perSec   rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newClientLimiters(perSecond float64, burst int) *clientLimiters {
	return &clientLimiters{
		perSec:   rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *clientLimiters) allow(clientKey string) bool {
	c.mu.Lock()
	l, ok := c.limiters[clientKey]
	if !ok {
		l = rate.NewLimiter(c.perSec, c.burst)
		c.limiters[clientKey] = l
	}
	c.mu.Unlock()
	return l.Allow()
}

// rateLimit wraps next, rejecting with 429 any request whose client has
// exhausted its token bucket. Only mounted on POST /v1/orders (spec_full
// §6): read endpoints and streams are not rate limited.
func rateLimit(limiters *clientLimiters, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiters.allow(key) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
