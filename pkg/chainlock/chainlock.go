// Package chainlock serializes the submission phase of transfers that share
// a source chain. Concurrent submissions from one wallet on one chain race on
// the transaction nonce and on allowance state; holding the chain's lock for
// the duration of the submission phase removes both hazards. Polling after
// submission is not covered by the lock and runs fully in parallel.
package chainlock

import (
	"context"
	"sync"
)

// Registry maps chain IDs to lock state. One registry is owned by the
// orchestrator for the lifetime of a batch run; entries are created on first
// acquisition and removed once a chain has no holder and no waiters.
type Registry struct {
	mu     sync.Mutex
	chains map[int]*chainState
}

// chainState tracks the holder and FIFO waiter queue for one chain.
type chainState struct {
	held    bool
	waiters []chan struct{}
}

// Handle represents a held lock. Release is idempotent.
type Handle struct {
	registry *Registry
	chainID  int
	once     sync.Once
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[int]*chainState)}
}

// Acquire suspends the caller until the chain is free, then returns a handle.
// Waiters are granted the lock in acquisition order. The wait is aborted if
// the context is cancelled.
func (r *Registry) Acquire(ctx context.Context, chainID int) (*Handle, error) {
	r.mu.Lock()
	state, exists := r.chains[chainID]
	if !exists {
		state = &chainState{}
		r.chains[chainID] = state
	}

	if !state.held {
		state.held = true
		r.mu.Unlock()
		return &Handle{registry: r, chainID: chainID}, nil
	}

	grant := make(chan struct{})
	state.waiters = append(state.waiters, grant)
	r.mu.Unlock()

	select {
	case <-grant:
		return &Handle{registry: r, chainID: chainID}, nil
	case <-ctx.Done():
		r.mu.Lock()
		select {
		case <-grant:
			// The grant raced the cancellation: we own the lock now and
			// must hand it on before reporting the error.
			r.releaseLocked(chainID)
			r.mu.Unlock()
		default:
			r.removeWaiterLocked(chainID, grant)
			r.mu.Unlock()
		}
		return nil, ctx.Err()
	}
}

// Release frees the chain for the next waiter in FIFO order. Safe to call
// more than once; only the first call has an effect.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.registry.mu.Lock()
		h.registry.releaseLocked(h.chainID)
		h.registry.mu.Unlock()
	})
}

// ChainID returns the chain this handle locks.
func (h *Handle) ChainID() int {
	return h.chainID
}

// releaseLocked hands the lock to the oldest waiter, or clears the entry.
// Caller must hold r.mu.
func (r *Registry) releaseLocked(chainID int) {
	state, exists := r.chains[chainID]
	if !exists {
		return
	}

	if len(state.waiters) > 0 {
		next := state.waiters[0]
		state.waiters = state.waiters[1:]
		close(next)
		return
	}

	delete(r.chains, chainID)
}

// removeWaiterLocked drops a cancelled waiter from the queue.
// Caller must hold r.mu.
func (r *Registry) removeWaiterLocked(chainID int, grant chan struct{}) {
	state, exists := r.chains[chainID]
	if !exists {
		return
	}
	for i, waiter := range state.waiters {
		if waiter == grant {
			state.waiters = append(state.waiters[:i], state.waiters[i+1:]...)
			return
		}
	}
}
