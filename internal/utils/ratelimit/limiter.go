// Package ratelimit throttles repeated attempts against the auth endpoints.
// Each client gets a token bucket per category, refilled at a fixed rate.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// Limiter is the token bucket of a single client.
type Limiter struct {
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
	rate       float64
	capacity   float64
	now        func() time.Time

	mu sync.Mutex
}

// newLimiterWithClock creates a full bucket holding burst tokens, refilled at
// rate per second.
func newLimiterWithClock(rate float64, burst int, now func() time.Time) *Limiter {
	t := now()
	return &Limiter{
		tokens:     float64(burst),
		lastRefill: t,
		lastAccess: t,
		rate:       rate,
		capacity:   float64(burst),
		now:        now,
	}
}

// Allow consumes one token. When the bucket is empty it returns false and the
// time until the next token is available.
func (l *Limiter) Allow() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.refill(now)
	l.lastAccess = now

	if l.tokens >= 1 {
		l.tokens--
		return true, 0
	}

	if l.rate <= 0 {
		return false, time.Duration(math.MaxInt64)
	}
	missing := 1 - l.tokens
	return false, time.Duration(missing / l.rate * float64(time.Second))
}

func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	l.lastRefill = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

// IdleSince reports whether the limiter has not been used since cutoff.
func (l *Limiter) IdleSince(cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAccess.Before(cutoff)
}
