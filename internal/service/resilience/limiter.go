package resilience

import (
	"context"
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// RateLimiter enforces two sliding-window quotas at once: a per-minute
// cap and a per-day cap. Acquire blocks until both windows have room,
// then records the grant. Both checks and the grant happen under one
// lock so concurrent callers cannot overshoot either quota.
type RateLimiter struct {
	mu        sync.Mutex
	perMinute int
	perDay    int
	minute    []time.Time
	day       []time.Time
	clock     Clock
}

// NewRateLimiter creates a limiter with the given window quotas. A nil
// clock falls back to the system clock.
func NewRateLimiter(perMinute, perDay int, clock Clock) *RateLimiter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RateLimiter{
		perMinute: perMinute,
		perDay:    perDay,
		clock:     clock,
	}
}

// Acquire blocks until a request slot is available in both windows,
// then consumes it. Returns the context error if ctx is done before a
// slot frees up. After any sleep both windows are re-evaluated from
// scratch, so a slot freed for one window cannot mask exhaustion of
// the other.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.clock.Now()
		l.minute = purge(l.minute, now, minuteWindow)
		l.day = purge(l.day, now, dayWindow)

		if len(l.minute) >= l.perMinute {
			wait := minuteWindow - now.Sub(l.minute[0])
			l.mu.Unlock()
			l.clock.Sleep(wait)
			continue
		}
		if len(l.day) >= l.perDay {
			wait := dayWindow - now.Sub(l.day[0])
			l.mu.Unlock()
			l.clock.Sleep(wait)
			continue
		}

		l.minute = append(l.minute, now)
		l.day = append(l.day, now)
		l.mu.Unlock()
		return nil
	}
}

// Pending returns the current in-window counts, mostly for telemetry.
func (l *RateLimiter) Pending() (minute, day int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	l.minute = purge(l.minute, now, minuteWindow)
	l.day = purge(l.day, now, dayWindow)
	return len(l.minute), len(l.day)
}

func purge(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	cut := 0
	for cut < len(ts) && now.Sub(ts[cut]) >= window {
		cut++
	}
	if cut == 0 {
		return ts
	}
	return append(ts[:0], ts[cut:]...)
}
