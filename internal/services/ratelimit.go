package services

import (
	"sync"
	"time"
)

// SlidingWindowLimiter bounds outbound volume per destination over a trailing
// window. State is in-process and resets on restart; with a single active
// dispatcher that is sufficient. Scaling beyond one dispatcher instance
// requires moving this state into shared storage.
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewRateLimiter builds a limiter with the dispatch defaults: at most 100
// notifications per destination per minute.
func NewRateLimiter() *SlidingWindowLimiter {
	return NewSlidingWindowLimiter(rateLimitWindow, rateLimitMax)
}

func NewSlidingWindowLimiter(window time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		window: window,
		limit:  limit,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
}

// Admit accepts count units for key if the trailing window still has room,
// recording them on acceptance. Rejection records nothing: the whole batch
// is either admitted or refused.
func (l *SlidingWindowLimiter) Admit(key string, count int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept)+count > l.limit {
		l.hits[key] = kept
		return false
	}

	for i := 0; i < count; i++ {
		kept = append(kept, now)
	}
	l.hits[key] = kept
	return true
}
