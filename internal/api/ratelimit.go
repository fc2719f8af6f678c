// Rate limiting for the parameter-mutation endpoints: every accepted POST
// triggers a full recompute plus collaborator round-trips, so writes are
// capped per client with a fixed window.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter per client address.
type RateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	opened time.Time
	limit  int
	window time.Duration
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts: make(map[string]int),
		opened: time.Now(),
		limit:  limit,
		window: window,
	}
}

// allow counts one request for addr, rolling the window when it expires.
// The second return is the seconds until the window resets.
func (rl *RateLimiter) allow(addr string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.opened) >= rl.window {
		rl.counts = make(map[string]int)
		rl.opened = now
	}

	retry := int((rl.window - now.Sub(rl.opened)).Seconds()) + 1
	if rl.counts[addr] >= rl.limit {
		return false, retry
	}
	rl.counts[addr]++
	return true, retry
}

// clientAddr extracts the caller address, honoring X-Forwarded-For.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects over-limit requests with 429 and a Retry-After.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientAddr(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
