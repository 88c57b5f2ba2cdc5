package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(3, time.Minute, clock)

	b.Failed()
	b.Failed()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.CanAttempt())
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(3, time.Minute, clock)

	b.Failed()
	b.Failed()
	b.Failed()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.CanAttempt())
}

func TestBreakerAdmitsProbeAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(1, time.Minute, clock)

	b.Failed()
	require.False(t, b.CanAttempt())

	clock.Advance(59 * time.Second)
	assert.False(t, b.CanAttempt(), "cooldown not yet elapsed")

	clock.Advance(time.Second)
	assert.True(t, b.CanAttempt())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerClosesOnProbeSuccess(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(1, time.Minute, clock)

	b.Failed()
	clock.Advance(time.Minute)
	require.True(t, b.CanAttempt())

	b.Succeeded()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.CanAttempt())
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(5, time.Minute, clock)

	for i := 0; i < 5; i++ {
		b.Failed()
	}
	clock.Advance(time.Minute)
	require.True(t, b.CanAttempt())
	require.Equal(t, StateHalfOpen, b.State())

	// A single failure while half-open reopens regardless of threshold.
	b.Failed()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.CanAttempt())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(3, time.Minute, clock)

	b.Failed()
	b.Failed()
	b.Succeeded()

	b.Failed()
	b.Failed()
	assert.Equal(t, StateClosed, b.State())
}
