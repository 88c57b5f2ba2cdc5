package resilience

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker lifecycle state.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateHalfOpen
	StateOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	}
	return "unknown"
}

// CircuitBreaker trips open after a run of consecutive failures and
// lets a single probe through once the cooldown elapses. The caller
// drives it explicitly: CanAttempt before each call, then Succeeded or
// Failed depending on the outcome.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	timeout   time.Duration
	clock     Clock

	state    BreakerState
	failures int
	openedAt time.Time
}

// NewCircuitBreaker creates a closed breaker that opens after threshold
// consecutive failures and allows a probe after timeout.
func NewCircuitBreaker(threshold int, timeout time.Duration, clock Clock) *CircuitBreaker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CircuitBreaker{
		threshold: threshold,
		timeout:   timeout,
		clock:     clock,
		state:     StateClosed,
	}
}

// CanAttempt reports whether a call may proceed. When the breaker is
// open and the cooldown has elapsed it transitions to half-open and
// admits the caller as the probe.
func (b *CircuitBreaker) CanAttempt() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.clock.Now().Sub(b.openedAt) >= b.timeout {
			b.state = StateHalfOpen
			return true
		}
		return false
	}
	return false
}

// Succeeded records a successful call, closing the breaker and
// clearing the failure count.
func (b *CircuitBreaker) Succeeded() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

// Failed records a failed call. In half-open state any failure reopens
// the breaker immediately; in closed state the breaker opens once the
// consecutive failure count reaches the threshold.
func (b *CircuitBreaker) Failed() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = b.clock.Now()
	}
}

// State returns the current breaker state.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
