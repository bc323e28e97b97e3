package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store keeps one limiter per client and category and evicts the idle ones.
type Store struct {
	limiters map[string]*Limiter
	rate     Rate

	idleExpiry time.Duration
	now        func() time.Time

	mu sync.RWMutex
}

// NewStore creates a store giving every client the same rate in each category.
// Limiters unused for idleExpiry are dropped by Cleanup.
func NewStore(rate Rate, idleExpiry time.Duration) *Store {
	return &Store{
		limiters:   make(map[string]*Limiter),
		rate:       rate,
		idleExpiry: idleExpiry,
		now:        time.Now,
	}
}

// Allow consumes a token from the bucket of clientID in category.
func (s *Store) Allow(clientID, category string) (bool, time.Duration) {
	return s.GetLimiter(clientID, category).Allow()
}

// GetLimiter returns the limiter for clientID in category, creating it on first use.
func (s *Store) GetLimiter(clientID, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have created it while the read lock was released.
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	limiter = newLimiterWithClock(s.rate.RequestsPerSecond, s.rate.Burst, s.now)
	s.limiters[key] = limiter
	return limiter
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Cleanup removes limiters idle for longer than the store's expiry and
// returns how many were removed.
func (s *Store) Cleanup() int {
	cutoff := s.now().Add(-s.idleExpiry)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.IdleSince(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Cleanup(); removed > 0 {
				log.Debug().Int("removed", removed).Int("remaining", s.Len()).Msg("Evicted idle rate limiters")
			}
		}
	}
}
