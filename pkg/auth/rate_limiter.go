package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether the caller identified by key may proceed.
// Allowed requests are counted against the caller's budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter keeps per-key request timestamps in process. A key
// may make at most limit requests in any span of windowSize.
type SlidingWindowLimiter struct {
	limit      int
	windowSize time.Duration
	now        func() time.Time

	mu   sync.Mutex
	logs map[string]*requestLog
}

// requestLog holds one caller's accepted request times, oldest first
type requestLog struct {
	mu    sync.Mutex
	times []time.Time
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:      limit,
		windowSize: windowSize,
		now:        time.Now,
		logs:       make(map[string]*requestLog),
	}
}

func (l *SlidingWindowLimiter) logFor(key string) *requestLog {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl, ok := l.logs[key]
	if !ok {
		rl = &requestLog{}
		l.logs[key] = rl
	}
	return rl
}

// Allow never returns an error; the signature matches the shared limiter
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl := l.logFor(key)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := l.now()
	rl.expire(now.Add(-l.windowSize))
	if len(rl.times) >= l.limit {
		return false, nil
	}
	rl.times = append(rl.times, now)
	return true, nil
}

// Reset forgets every request recorded for key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.logs, key)
	l.mu.Unlock()
	return nil
}

// Run drops idle keys every interval until ctx is cancelled
func (l *SlidingWindowLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *SlidingWindowLimiter) sweep() {
	cutoff := l.now().Add(-l.windowSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, rl := range l.logs {
		rl.mu.Lock()
		rl.expire(cutoff)
		empty := len(rl.times) == 0
		rl.mu.Unlock()
		if empty {
			delete(l.logs, key)
		}
	}
}

// expire drops entries at or before cutoff
func (rl *requestLog) expire(cutoff time.Time) {
	i := 0
	for i < len(rl.times) && !rl.times[i].After(cutoff) {
		i++
	}
	rl.times = rl.times[i:]
}
