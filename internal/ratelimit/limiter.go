// Package ratelimit implements the per-client login throttle: a discrete
// interval-refill token bucket. The bucket does not leak tokens back one at
// a time; when a window rolls over the bucket is reset to full capacity in
// one step.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity is the number of login attempts allowed per window.
	DefaultCapacity = 5

	// DefaultWindow is the refill interval.
	DefaultWindow = 15 * time.Minute
)

type bucket struct {
	remaining int
	resetAt   time.Time
}

// Limiter admits or rejects attempts per client key. Buckets are created
// lazily on first observation of a key and live for the process lifetime;
// there is no eviction, an accepted resource-growth trade-off.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	window   time.Duration
	now      func() time.Time
}

// Option configures Limiter behavior.
type Option func(*Limiter)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.now = fn
		}
	}
}

// New constructs a Limiter. Non-positive capacity or window fall back to
// the defaults.
func New(capacity int, window time.Duration, opts ...Option) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token for the key and reports whether the attempt is
// admitted. Check-and-decrement is one atomic operation under the lock, so
// two concurrent attempts cannot both spend the last token.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refreshed(key)
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// RetryAfter reports how long the key must wait before its bucket refills.
// Zero means an attempt would currently be admitted.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refreshed(key)
	if b.remaining > 0 {
		return 0
	}
	d := b.resetAt.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}

// Remaining reports the tokens left in the key's current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshed(key).remaining
}

// Size reports the number of tracked client keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// refreshed returns the bucket for key, creating it on first sight and
// resetting it to full capacity once its window has rolled over. Callers
// must hold l.mu.
func (l *Limiter) refreshed(key string) *bucket {
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{remaining: l.capacity, resetAt: now.Add(l.window)}
		l.buckets[key] = b
		return b
	}
	if !now.Before(b.resetAt) {
		b.remaining = l.capacity
		b.resetAt = now.Add(l.window)
	}
	return b
}
