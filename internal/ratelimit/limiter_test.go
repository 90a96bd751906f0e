package ratelimit

import (
	"testing"
	"time"
)

func testClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestLimiterExhaustsCapacity(t *testing.T) {
	_, clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	l := New(5, 15*time.Minute, WithClock(clock))

	for i := 0; i < 5; i++ {
		if !l.Allow("203.0.113.7") {
			t.Fatalf("attempt %d should be admitted", i+1)
		}
	}
	if l.Allow("203.0.113.7") {
		t.Fatal("sixth attempt must be rejected")
	}
	if l.Remaining("203.0.113.7") != 0 {
		t.Fatalf("expected empty bucket, got %d", l.Remaining("203.0.113.7"))
	}
}

func TestLimiterWindowRolloverResetsToFull(t *testing.T) {
	now, clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	l := New(5, 15*time.Minute, WithClock(clock))

	for i := 0; i < 5; i++ {
		l.Allow("client")
	}
	if l.Allow("client") {
		t.Fatal("bucket should be empty")
	}

	// One second short of the rollover: still rejected, no gradual refill.
	*now = now.Add(15*time.Minute - time.Second)
	if l.Allow("client") {
		t.Fatal("no tokens may return before the window rolls over")
	}

	*now = now.Add(time.Second)
	if l.Remaining("client") != 5 {
		t.Fatalf("expected full reset, got %d", l.Remaining("client"))
	}
	if !l.Allow("client") {
		t.Fatal("attempt after rollover should be admitted")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	_, clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	l := New(2, 15*time.Minute, WithClock(clock))

	l.Allow("a")
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("key a should be exhausted")
	}
	if !l.Allow("b") {
		t.Fatal("key b must not be affected by key a")
	}
	if l.Size() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Size())
	}
}

func TestLimiterRetryAfter(t *testing.T) {
	now, clock := testClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	l := New(1, 15*time.Minute, WithClock(clock))

	if got := l.RetryAfter("client"); got != 0 {
		t.Fatalf("fresh key should not need to wait, got %v", got)
	}
	l.Allow("client")
	if got := l.RetryAfter("client"); got != 15*time.Minute {
		t.Fatalf("expected full window wait, got %v", got)
	}

	*now = now.Add(10 * time.Minute)
	if got := l.RetryAfter("client"); got != 5*time.Minute {
		t.Fatalf("expected 5m wait, got %v", got)
	}

	*now = now.Add(5 * time.Minute)
	if got := l.RetryAfter("client"); got != 0 {
		t.Fatalf("expected no wait after rollover, got %v", got)
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := New(0, 0)
	if l.capacity != DefaultCapacity || l.window != DefaultWindow {
		t.Fatalf("expected defaults, got capacity=%d window=%v", l.capacity, l.window)
	}
}
