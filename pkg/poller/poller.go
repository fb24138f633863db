// Package poller tracks one intent through the status API until it settles,
// exhausts its attempt budget, or turns out never to have been indexed.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/speedrun-hq/speedrun-e2e/pkg/statusapi"
)

// NotFoundLimit is the number of consecutive not-found responses tolerated
// before the intent is declared unindexed.
const NotFoundLimit = 5

// ErrIntentNotIndexed means the status API never returned a record for the
// intent within the consecutive-not-found ceiling. Distinct from a generic
// API error so callers can report "may not be indexed yet".
var ErrIntentNotIndexed = errors.New("intent not indexed by status API")

// IntentGetter is the status API surface the poller needs.
type IntentGetter interface {
	GetIntent(ctx context.Context, intentID string) (*models.Intent, error)
}

// Result captures everything one polling session observed.
type Result struct {
	// Intent is the last observed record; nil when the intent was never seen
	// before exhaustion.
	Intent *models.Intent
	// Attempts is the number of API queries made.
	Attempts int
	// Exhausted is set when the attempt budget ran out without settlement.
	Exhausted bool

	// Local observation timestamps. Zero when the transition was never
	// observed by this session; never back-filled from remote timestamps.
	FulfilledAt time.Time
	SettledAt   time.Time

	TimeToFulfill time.Duration
	TimeToSettle  time.Duration
	TotalTime     time.Duration
}

// FulfilledObserved reports whether this session saw the fulfilled transition.
// Coarse polling can skip it entirely and observe settled directly.
func (r *Result) FulfilledObserved() bool {
	return !r.FulfilledAt.IsZero()
}

// SettledObserved reports whether this session saw the intent settle.
func (r *Result) SettledObserved() bool {
	return !r.SettledAt.IsZero()
}

// Status returns the last observed status, or empty when never found.
func (r *Result) Status() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Status
}

// Poller polls the status API for intent records at a fixed interval.
// One Poller may serve many concurrent polling sessions; each session owns
// its own Result and intent record.
type Poller struct {
	client      IntentGetter
	interval    time.Duration
	maxAttempts int
	logger      logger.Logger
}

// New creates a poller with a fixed interval and attempt budget.
func New(client IntentGetter, interval time.Duration, maxAttempts int, log logger.Logger) *Poller {
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// PollUntil queries the intent record until a target status stops the
// session, the attempt budget is exhausted, or the not-found ceiling is hit.
// A nil targets slice defaults to stopping on settled.
//
// Only settled stops the session early: fulfilled is an incomplete outcome
// worth continuing to observe, and cancelled/failed are recorded but polled
// through to the end of the budget as well.
func (p *Poller) PollUntil(ctx context.Context, intentID string, targets []string) (*Result, error) {
	if targets == nil {
		targets = []string{models.StatusSettled}
	}

	start := time.Now()
	result := &Result{}
	consecutiveNotFound := 0
	lastStatus := ""

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result.Attempts = attempt

		intent, err := p.client.GetIntent(ctx, intentID)
		switch {
		case errors.Is(err, statusapi.ErrIntentNotFound):
			consecutiveNotFound++
			p.logger.Debug("Intent %s not found yet (attempt %d/%d, consecutive misses: %d)",
				intentID, attempt, p.maxAttempts, consecutiveNotFound)
			if consecutiveNotFound >= NotFoundLimit {
				return nil, fmt.Errorf("%w: no record for %s after %d consecutive attempts",
					ErrIntentNotIndexed, intentID, consecutiveNotFound)
			}

		case err != nil:
			return nil, err

		default:
			consecutiveNotFound = 0
			result.Intent = intent

			if intent.Status != lastStatus {
				p.logger.Info("Intent %s status changed: %q -> %q (attempt %d)",
					intentID, lastStatus, intent.Status, attempt)
				p.recordTransition(result, intent.Status, start)
				lastStatus = intent.Status
			}

			if intent.Status == models.StatusSettled && contains(targets, models.StatusSettled) {
				return result, nil
			}
		}

		if attempt < p.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.interval):
			}
		}
	}

	result.Exhausted = true
	return result, nil
}

// recordTransition stamps the local observation time for the transitions the
// timing metrics are derived from. A transition is only stamped once.
func (p *Poller) recordTransition(result *Result, status string, start time.Time) {
	now := time.Now()
	switch status {
	case models.StatusFulfilled:
		if result.FulfilledAt.IsZero() {
			result.FulfilledAt = now
			result.TimeToFulfill = now.Sub(start)
		}
	case models.StatusSettled:
		if result.SettledAt.IsZero() {
			result.SettledAt = now
			result.TotalTime = now.Sub(start)
			// TimeToSettle is only defined when fulfilled was actually
			// observed; coarse polling can jump straight to settled.
			if result.FulfilledObserved() {
				result.TimeToSettle = now.Sub(result.FulfilledAt)
			}
		}
	}
}

func contains(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
