// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key. Buckets idle for longer
// than the TTL are dropped.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time

	lastSweep time.Time
}

// NewRateLimiter allows perMinute requests per key with a burst of the same
// size. A nil limiter, returned for perMinute <= 0, allows everything.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		entryTTL: 10 * time.Minute,
		now:      time.Now,
	}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.entryTTL {
		l.sweep(now)
	}

	if limiter, ok := l.limiters[key]; ok {
		l.lastSeen[key] = now
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[key] = limiter
	l.lastSeen[key] = now
	return limiter
}

// sweep drops idle buckets. It runs at most once per entryTTL.
func (l *RateLimiter) sweep(now time.Time) {
	for k, ts := range l.lastSeen {
		if now.Sub(ts) > l.entryTTL {
			delete(l.limiters, k)
			delete(l.lastSeen, k)
		}
	}
	l.lastSweep = now
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	return l.getLimiter(key).AllowN(l.now(), 1)
}

// RateLimit rejects requests from a client IP that exceeded its budget.
func RateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(GetClientIP(r)) {
				ErrorResponse(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
