package circuitbreaker

import (
	"testing"
	"time"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newTestBreaker(enabled bool, threshold int) *CircuitBreaker {
	return New(enabled, threshold, time.Minute, 5*time.Minute, &logger.EmptyLogger{})
}

func TestDisabledBreakerNeverTrips(t *testing.T) {
	cb := newTestBreaker(false, 1)

	for i := 0; i < 10; i++ {
		assert.False(t, cb.RecordFailure(1))
	}
	assert.False(t, cb.IsOpen())
	assert.False(t, cb.IsEnabled())
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	cb := newTestBreaker(true, 3)

	assert.False(t, cb.RecordFailure(1))
	assert.False(t, cb.RecordFailure(1))
	assert.False(t, cb.IsOpen())

	assert.True(t, cb.RecordFailure(1), "the third failure should trip the circuit")
	assert.True(t, cb.IsOpen())
}

func TestBreakerSuccessClearsFailures(t *testing.T) {
	cb := newTestBreaker(true, 3)

	cb.RecordFailure(1)
	cb.RecordFailure(1)
	cb.RecordSuccess()

	assert.False(t, cb.RecordFailure(1), "the count should restart after a success")
	assert.False(t, cb.IsOpen())
}

func TestBreakerManualReset(t *testing.T) {
	cb := newTestBreaker(true, 1)

	assert.True(t, cb.RecordFailure(1))
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())

	count, tripped := cb.State()
	assert.Zero(t, count)
	assert.False(t, tripped)
}

func TestBreakerResetTimeout(t *testing.T) {
	cb := New(true, 1, time.Minute, 10*time.Millisecond, &logger.EmptyLogger{})

	assert.True(t, cb.RecordFailure(1))
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen(), "the circuit should close after the reset timeout")
}

func TestBreakerWindowExpiry(t *testing.T) {
	cb := New(true, 2, 10*time.Millisecond, time.Minute, &logger.EmptyLogger{})

	assert.False(t, cb.RecordFailure(1))
	time.Sleep(20 * time.Millisecond)

	// The first failure fell out of the window; this one starts a new count.
	assert.False(t, cb.RecordFailure(1))
	assert.False(t, cb.IsOpen())
}
