package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int, window time.Duration) (*SlidingWindowLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewSlidingWindowLimiter(limit, window)
	l.now = clock.Now
	return l, clock
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
		clock.Advance(10 * time.Second)
	}

	ok, _ := l.Allow(ctx, "u1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "u2")
	assert.True(t, ok, "keys have separate budgets")

	// the first request leaves the window 60s after it was made
	clock.Advance(30 * time.Second)
	ok, _ = l.Allow(ctx, "u1")
	assert.True(t, ok)

	ok, _ = l.Allow(ctx, "u1")
	assert.False(t, ok)
}

func TestSlidingWindowLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(1, time.Minute)

	ok, _ := l.Allow(ctx, "u1")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "u1")
	require.False(t, ok)

	require.NoError(t, l.Reset(ctx, "u1"))
	ok, _ = l.Allow(ctx, "u1")
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_SweepDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(5, time.Minute)

	_, _ = l.Allow(ctx, "idle")
	clock.Advance(30 * time.Second)
	_, _ = l.Allow(ctx, "busy")
	clock.Advance(45 * time.Second)

	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.logs, "idle")
	assert.Contains(t, l.logs, "busy")
}

func TestSlidingWindowLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewSlidingWindowLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(ctx, "shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
