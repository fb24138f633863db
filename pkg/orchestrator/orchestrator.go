// Package orchestrator drives transfers end to end: validation, chain
// locking, submission, polling and outcome classification. It is the only
// place where errors from the lower layers turn into transfer outcomes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/speedrun-e2e/pkg/chainlock"
	"github.com/speedrun-hq/speedrun-e2e/pkg/circuitbreaker"
	"github.com/speedrun-hq/speedrun-e2e/pkg/config"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/metrics"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/speedrun-hq/speedrun-e2e/pkg/poller"
	"github.com/speedrun-hq/speedrun-e2e/pkg/submitter"
)

// Configuration problems detected before any network traffic.
var (
	ErrUnsupportedChain   = errors.New("chain not configured")
	ErrAssetNotConfigured = errors.New("asset not configured")
)

// IntentSubmitter runs the submission phase on one source chain.
type IntentSubmitter interface {
	Submit(ctx context.Context, req *submitter.Request) (*submitter.Receipt, error)
	Sender() common.Address
}

// StatusPoller tracks a submitted intent until a terminal observation.
type StatusPoller interface {
	PollUntil(ctx context.Context, intentID string, targets []string) (*poller.Result, error)
}

// Orchestrator coordinates the full lifecycle of transfers across chains.
// Safe for concurrent use; RunBatch leans on that.
type Orchestrator struct {
	cfg        *config.Config
	submitters map[int]IntentSubmitter
	poller     StatusPoller
	locks      *chainlock.Registry
	breakers   map[int]*circuitbreaker.CircuitBreaker
	logger     logger.Logger
}

// New creates an orchestrator over per-chain submitters and a shared poller.
// The submitters map is keyed by source chain ID.
func New(cfg *config.Config, submitters map[int]IntentSubmitter, statusPoller StatusPoller, log logger.Logger) *Orchestrator {
	breakers := make(map[int]*circuitbreaker.CircuitBreaker, len(submitters))
	for chainID := range submitters {
		breakers[chainID] = circuitbreaker.New(
			cfg.CircuitBreaker.Enabled,
			cfg.CircuitBreaker.Threshold,
			cfg.CircuitBreaker.WindowDuration,
			cfg.CircuitBreaker.ResetTimeout,
			log,
		)
	}

	return &Orchestrator{
		cfg:        cfg,
		submitters: submitters,
		poller:     statusPoller,
		locks:      chainlock.NewRegistry(),
		breakers:   breakers,
		logger:     log,
	}
}

// Run drives one transfer to a final outcome. It never returns an error:
// every failure mode is folded into the result so batch callers get a
// uniform record per request.
func (o *Orchestrator) Run(ctx context.Context, req models.TransferRequest) models.TransferResult {
	result := models.TransferResult{
		SourceChain:      req.SourceChain,
		DestinationChain: req.DestinationChain,
		Asset:            req.Asset,
	}
	if req.Amount != nil {
		result.Amount = req.Amount.String()
	}

	sourceChain, targetChain, err := o.validate(&req)
	if err != nil {
		return o.fail(result, 0, err)
	}

	if breaker, ok := o.breakers[sourceChain.ChainID]; ok && breaker.IsOpen() {
		metrics.CircuitBreakerOpen.WithLabelValues(strconv.Itoa(sourceChain.ChainID)).Set(1)
		return o.fail(result, sourceChain.ChainID,
			fmt.Errorf("circuit breaker open for chain %s, transfer rejected", req.SourceChain))
	}

	sub := o.submitters[sourceChain.ChainID]

	receiver := req.Receiver
	if receiver == (common.Address{}) {
		receiver = sub.Sender()
	}

	tip := req.Fee
	if tip == nil {
		tip = big.NewInt(0)
	}

	// The lock covers only the submission phase. Polling afterwards is
	// independent per transfer and must not hold up other submissions.
	receipt, err := o.submit(ctx, sub, sourceChain.ChainID, &submitter.Request{
		Asset:       req.Asset,
		Amount:      req.Amount,
		Tip:         tip,
		TargetChain: targetChain.ChainID,
		Receiver:    receiver,
		Salt:        req.Salt,
		Call:        req.Call,
	})
	if err != nil {
		if breaker, ok := o.breakers[sourceChain.ChainID]; ok {
			breaker.RecordFailure(sourceChain.ChainID)
		}
		return o.fail(result, sourceChain.ChainID, err)
	}

	result.IntentID = receipt.IntentID
	result.InitiateTx = receipt.TxHash

	pollResult, err := o.poller.PollUntil(ctx, receipt.IntentID, nil)
	if err != nil {
		if errors.Is(err, poller.ErrIntentNotIndexed) {
			return o.fail(result, sourceChain.ChainID,
				fmt.Errorf("intent %s was submitted but never appeared in the status API: %v", receipt.IntentID, err))
		}
		return o.fail(result, sourceChain.ChainID, err)
	}

	o.classify(&result, pollResult)
	o.record(&result, sourceChain.ChainID, pollResult)
	return result
}

// RunBatch drives all requests concurrently and returns one result per
// request, in request order. A failing transfer never disturbs the others;
// transfers sharing a source chain serialize their submission phase through
// the chain lock and then poll in parallel.
func (o *Orchestrator) RunBatch(ctx context.Context, reqs []models.TransferRequest) []models.TransferResult {
	results := make([]models.TransferResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(index int, req models.TransferRequest) {
			defer wg.Done()
			result := o.Run(ctx, req)
			result.Index = index
			results[index] = result
		}(i, req)
	}
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Succeeded() {
			succeeded++
		}
	}
	o.logger.Notice("Batch complete: %d/%d transfers settled", succeeded, len(reqs))

	return results
}

// validate checks the request against the static configuration before any
// network traffic. Both chains must be configured, the asset must be
// supported on both ends and the amount must be positive.
func (o *Orchestrator) validate(req *models.TransferRequest) (source, target *config.ChainConfig, err error) {
	source, ok := o.cfg.Chain(req.SourceChain)
	if !ok {
		return nil, nil, fmt.Errorf("%w: source chain %q", ErrUnsupportedChain, req.SourceChain)
	}
	target, ok = o.cfg.Chain(req.DestinationChain)
	if !ok {
		return nil, nil, fmt.Errorf("%w: destination chain %q", ErrUnsupportedChain, req.DestinationChain)
	}
	if source.ChainID == target.ChainID {
		return nil, nil, fmt.Errorf("source and destination chain are both %q", req.SourceChain)
	}

	if _, ok := source.Token(req.Asset); !ok {
		return nil, nil, fmt.Errorf("%w: %q on chain %q", ErrAssetNotConfigured, req.Asset, req.SourceChain)
	}
	if _, ok := target.Token(req.Asset); !ok {
		return nil, nil, fmt.Errorf("%w: %q on chain %q", ErrAssetNotConfigured, req.Asset, req.DestinationChain)
	}

	if _, ok := o.submitters[source.ChainID]; !ok {
		return nil, nil, fmt.Errorf("no client connected for chain %q", req.SourceChain)
	}

	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, nil, fmt.Errorf("transfer amount must be positive")
	}
	if req.Fee != nil && req.Fee.Sign() < 0 {
		return nil, nil, fmt.Errorf("transfer fee must not be negative")
	}

	return source, target, nil
}

// submit runs the submission phase under the source chain's lock.
func (o *Orchestrator) submit(ctx context.Context, sub IntentSubmitter, chainID int, req *submitter.Request) (*submitter.Receipt, error) {
	handle, err := o.locks.Acquire(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire chain lock: %v", err)
	}
	defer handle.Release()

	return sub.Submit(ctx, req)
}

// classify maps what the polling session observed onto the final outcome.
// Settled is the only full success; fulfilled without settlement means the
// asset moved but the protocol did not complete, and exhaustion without a
// terminal observation leaves the transfer pending.
func (o *Orchestrator) classify(result *models.TransferResult, pollResult *poller.Result) {
	result.TimeToFulfill = pollResult.TimeToFulfill
	result.TimeToSettle = pollResult.TimeToSettle
	result.TotalTime = pollResult.TotalTime

	if intent := pollResult.Intent; intent != nil {
		result.FulfillmentTx = intent.FulfillmentTx
		result.SettlementTx = intent.SettlementTx
	}

	switch {
	case pollResult.SettledObserved():
		result.Outcome = models.OutcomeSettled
		result.Message = fmt.Sprintf("settled after %d poll attempts", pollResult.Attempts)

	case pollResult.Status() == models.StatusFulfilled:
		result.Outcome = models.OutcomeFulfilled
		result.Message = fmt.Sprintf("fulfilled but not settled after %d poll attempts", pollResult.Attempts)

	case pollResult.Status() == models.StatusCancelled || pollResult.Status() == models.StatusFailed:
		result.Outcome = models.OutcomeFailed
		result.Message = fmt.Sprintf("intent reached status %q", pollResult.Status())

	default:
		result.Outcome = models.OutcomePending
		result.Message = fmt.Sprintf("still %q after %d poll attempts; may complete later",
			pollResult.Status(), pollResult.Attempts)
	}
}

// record emits metrics and logs for a completed transfer.
func (o *Orchestrator) record(result *models.TransferResult, chainID int, pollResult *poller.Result) {
	metrics.TransfersTotal.WithLabelValues(result.SourceChain, result.DestinationChain, string(result.Outcome)).Inc()
	metrics.PollAttempts.WithLabelValues(result.SourceChain).Observe(float64(pollResult.Attempts))

	if pollResult.FulfilledObserved() {
		metrics.TimeToFulfill.WithLabelValues(result.SourceChain, result.DestinationChain).
			Observe(pollResult.TimeToFulfill.Seconds())
	}
	if pollResult.SettledObserved() {
		metrics.TotalTransferTime.WithLabelValues(result.SourceChain, result.DestinationChain).
			Observe(pollResult.TotalTime.Seconds())
		if pollResult.FulfilledObserved() {
			metrics.TimeToSettle.WithLabelValues(result.SourceChain, result.DestinationChain).
				Observe(pollResult.TimeToSettle.Seconds())
		}
	}

	if breaker, ok := o.breakers[chainID]; ok {
		if result.Succeeded() {
			breaker.RecordSuccess()
		}
		_, tripped := breaker.State()
		open := 0.0
		if tripped {
			open = 1.0
		}
		metrics.CircuitBreakerOpen.WithLabelValues(strconv.Itoa(chainID)).Set(open)
	}

	switch result.Outcome {
	case models.OutcomeSettled:
		o.logger.NoticeWithChain(chainID, "Transfer %s -> %s settled in %s (fulfill: %s, settle: %s)",
			result.SourceChain, result.DestinationChain, result.TotalTime, result.TimeToFulfill, result.TimeToSettle)
	case models.OutcomeFulfilled:
		o.logger.ErrorWithChain(chainID, "Transfer %s -> %s fulfilled but never settled (intent %s)",
			result.SourceChain, result.DestinationChain, result.IntentID)
	case models.OutcomePending:
		o.logger.NoticeWithChain(chainID, "Transfer %s -> %s still pending after polling window (intent %s)",
			result.SourceChain, result.DestinationChain, result.IntentID)
	}
}

// fail finalizes a result as failed and emits the failure metrics.
func (o *Orchestrator) fail(result models.TransferResult, chainID int, err error) models.TransferResult {
	result.Outcome = models.OutcomeFailed
	result.Message = err.Error()

	metrics.TransfersTotal.WithLabelValues(result.SourceChain, result.DestinationChain, string(result.Outcome)).Inc()
	if chainID != 0 {
		o.logger.ErrorWithChain(chainID, "Transfer %s -> %s failed: %v", result.SourceChain, result.DestinationChain, err)
	} else {
		o.logger.Error("Transfer %s -> %s failed: %v", result.SourceChain, result.DestinationChain, err)
	}
	return result
}

// Breakers exposes the per-chain circuit breakers for the health server.
func (o *Orchestrator) Breakers() map[int]*circuitbreaker.CircuitBreaker {
	return o.breakers
}
