package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNewLimiterWithClock(t *testing.T) {
	t.Run("Limiter starts with a full bucket", func(t *testing.T) {
		// Act
		limiter := newLimiterWithClock(10, 5, time.Now)

		// Assert
		require.NotNil(t, limiter)
		assert.Equal(t, float64(10), limiter.rate)
		assert.Equal(t, float64(5), limiter.capacity)
		assert.Equal(t, float64(5), limiter.tokens)
		assert.NotZero(t, limiter.lastRefill)
		assert.NotZero(t, limiter.lastAccess)
	})

	t.Run("Zero burst never allows", func(t *testing.T) {
		// Arrange
		limiter := newLimiterWithClock(10, 0, time.Now)

		// Act
		allowed, _ := limiter.Allow()

		// Assert
		assert.False(t, allowed)
	})
}

func TestLimiter_Allow(t *testing.T) {
	t.Run("Burst is consumed then requests are refused", func(t *testing.T) {
		// Arrange
		clock := newFakeClock()
		limiter := newLimiterWithClock(1, 3, clock.Now)

		// Act and Assert
		for i := 0; i < 3; i++ {
			allowed, wait := limiter.Allow()
			assert.True(t, allowed, "request %d should be allowed", i+1)
			assert.Zero(t, wait)
		}

		allowed, wait := limiter.Allow()
		assert.False(t, allowed)
		assert.Equal(t, time.Second, wait)
	})

	t.Run("Tokens refill over time", func(t *testing.T) {
		// Arrange
		clock := newFakeClock()
		limiter := newLimiterWithClock(2, 1, clock.Now)
		allowed, _ := limiter.Allow()
		require.True(t, allowed)

		// Act
		clock.Advance(250 * time.Millisecond)
		allowedEarly, wait := limiter.Allow()
		clock.Advance(250 * time.Millisecond)
		allowedLater, _ := limiter.Allow()

		// Assert
		assert.False(t, allowedEarly)
		assert.Equal(t, 250*time.Millisecond, wait)
		assert.True(t, allowedLater)
	})

	t.Run("Refill is capped at capacity", func(t *testing.T) {
		// Arrange
		clock := newFakeClock()
		limiter := newLimiterWithClock(10, 2, clock.Now)

		// Act
		clock.Advance(time.Hour)
		first, _ := limiter.Allow()
		second, _ := limiter.Allow()
		third, _ := limiter.Allow()

		// Assert
		assert.True(t, first)
		assert.True(t, second)
		assert.False(t, third)
	})

	t.Run("Concurrent callers never exceed the burst", func(t *testing.T) {
		// Arrange
		clock := newFakeClock()
		limiter := newLimiterWithClock(1, 10, clock.Now)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowedCount := 0

		// Act
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := limiter.Allow(); ok {
					mu.Lock()
					allowedCount++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Assert
		assert.Equal(t, 10, allowedCount)
	})
}

func TestLimiter_IdleSince(t *testing.T) {
	// Arrange
	clock := newFakeClock()
	limiter := newLimiterWithClock(1, 1, clock.Now)
	created := clock.Now()

	// Act
	clock.Advance(time.Minute)

	// Assert
	assert.True(t, limiter.IdleSince(created.Add(time.Second)))
	limiter.Allow()
	assert.False(t, limiter.IdleSince(created.Add(time.Second)))
}
