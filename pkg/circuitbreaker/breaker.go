// Package circuitbreaker guards a source chain against repeated submission
// failures. When enough failures accumulate inside the window the breaker
// trips and later transfers on that chain are rejected until the reset
// timeout elapses. Disabled by default: the harness usually wants to observe
// every failure rather than suppress them.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
)

// CircuitBreaker tracks submission failures for one chain.
type CircuitBreaker struct {
	enabled       bool
	failThreshold int
	failureWindow time.Duration
	resetTimeout  time.Duration
	logger        logger.Logger

	mu           sync.Mutex
	failureCount int
	lastFailure  time.Time
	tripped      bool
	tripTime     time.Time
}

// New creates a circuit breaker. A disabled breaker never trips and never
// rejects.
func New(enabled bool, threshold int, window, resetTimeout time.Duration, log logger.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		enabled:       enabled,
		failThreshold: threshold,
		failureWindow: window,
		resetTimeout:  resetTimeout,
		logger:        log,
	}
}

// RecordFailure counts a failure and reports whether the circuit is open
// afterwards. Failures older than the window do not count toward the
// threshold.
func (cb *CircuitBreaker) RecordFailure(chainID int) bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()

	if cb.tripped {
		if now.Sub(cb.tripTime) > cb.resetTimeout {
			cb.logger.NoticeWithChain(chainID, "Circuit breaker reset timeout elapsed, closing")
			cb.tripped = false
			cb.failureCount = 0
		} else {
			return true
		}
	}

	if now.Sub(cb.lastFailure) > cb.failureWindow {
		cb.failureCount = 0
	}

	cb.failureCount++
	cb.lastFailure = now

	if cb.failureCount >= cb.failThreshold {
		cb.tripped = true
		cb.tripTime = now
		cb.logger.ErrorWithChain(chainID, "Circuit breaker tripped after %d failures in window", cb.failureCount)
		return true
	}

	return false
}

// RecordSuccess clears the failure count. A settled transfer is proof the
// chain is healthy again.
func (cb *CircuitBreaker) RecordSuccess() {
	if !cb.enabled {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
}

// IsOpen reports whether the circuit is currently rejecting transfers.
func (cb *CircuitBreaker) IsOpen() bool {
	if !cb.enabled {
		return false
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.tripped && time.Since(cb.tripTime) > cb.resetTimeout {
		cb.tripped = false
		cb.failureCount = 0
		return false
	}

	return cb.tripped
}

// Reset manually closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.tripped = false
	cb.failureCount = 0
}

// IsEnabled reports whether the breaker is active at all.
func (cb *CircuitBreaker) IsEnabled() bool {
	return cb.enabled
}

// State returns the failure count and trip status for status reporting.
func (cb *CircuitBreaker) State() (failureCount int, tripped bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount, cb.tripped
}
