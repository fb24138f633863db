package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/speedrun-e2e/pkg/config"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
	"github.com/speedrun-hq/speedrun-e2e/pkg/poller"
	"github.com/speedrun-hq/speedrun-e2e/pkg/submitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWallet = common.HexToAddress("0x1111111111111111111111111111111111111111")

// fakeSubmitter scripts the submission phase for one chain. failOn lets a
// single request in a batch fail while its siblings proceed.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []*submitter.Request
	err       error
	failOn    func(req *submitter.Request) error
}

func (f *fakeSubmitter) Sender() common.Address { return testWallet }

func (f *fakeSubmitter) Submit(_ context.Context, req *submitter.Request) (*submitter.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != nil {
		if err := f.failOn(req); err != nil {
			return nil, err
		}
	}
	f.submitted = append(f.submitted, req)
	return &submitter.Receipt{
		IntentID: fmt.Sprintf("0xintent%d", len(f.submitted)),
		TxHash:   "0xsubmit",
	}, nil
}

func (f *fakeSubmitter) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

// fakePoller returns a scripted polling result for every intent.
type fakePoller struct {
	result *poller.Result
	err    error
}

func (f *fakePoller) PollUntil(context.Context, string, []string) (*poller.Result, error) {
	return f.result, f.err
}

func testConfig() *config.Config {
	tokens := map[string]config.TokenConfig{
		"USDC": {Address: "0x3333333333333333333333333333333333333333", Decimals: 6},
	}
	return &config.Config{
		Chains: map[string]*config.ChainConfig{
			"BASE":     {Name: "BASE", ChainID: 8453, Tokens: tokens},
			"ARBITRUM": {Name: "ARBITRUM", ChainID: 42161, Tokens: tokens},
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:        false,
			Threshold:      5,
			WindowDuration: time.Minute,
			ResetTimeout:   5 * time.Minute,
		},
	}
}

func settledResult() *poller.Result {
	return &poller.Result{
		Intent: &models.Intent{
			ID:            "0xintent1",
			Status:        models.StatusSettled,
			FulfillmentTx: "0xfulfill",
			SettlementTx:  "0xsettle",
		},
		Attempts:      3,
		FulfilledAt:   time.Now().Add(-3 * time.Second),
		SettledAt:     time.Now(),
		TimeToFulfill: 5 * time.Second,
		TimeToSettle:  3 * time.Second,
		TotalTime:     8 * time.Second,
	}
}

func newTestOrchestrator(cfg *config.Config, sub IntentSubmitter, statusPoller StatusPoller) *Orchestrator {
	submitters := map[int]IntentSubmitter{8453: sub, 42161: sub}
	return New(cfg, submitters, statusPoller, &logger.EmptyLogger{})
}

func baseRequest() models.TransferRequest {
	return models.TransferRequest{
		SourceChain:      "BASE",
		DestinationChain: "ARBITRUM",
		Asset:            "USDC",
		Amount:           big.NewInt(1000000),
		Fee:              big.NewInt(100),
	}
}

func TestRunSettledTransfer(t *testing.T) {
	sub := &fakeSubmitter{}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	result := orch.Run(context.Background(), baseRequest())

	assert.Equal(t, models.OutcomeSettled, result.Outcome)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "0xintent1", result.IntentID)
	assert.Equal(t, "0xsubmit", result.InitiateTx)
	assert.Equal(t, "0xfulfill", result.FulfillmentTx)
	assert.Equal(t, "0xsettle", result.SettlementTx)
	assert.Equal(t, 5*time.Second, result.TimeToFulfill)
	assert.Equal(t, 3*time.Second, result.TimeToSettle)
	assert.Equal(t, 8*time.Second, result.TotalTime)
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *models.TransferRequest)
		message string
	}{
		{
			name:    "unknown source chain",
			mutate:  func(req *models.TransferRequest) { req.SourceChain = "SOLANA" },
			message: "not configured",
		},
		{
			name:    "unknown destination chain",
			mutate:  func(req *models.TransferRequest) { req.DestinationChain = "SOLANA" },
			message: "not configured",
		},
		{
			name:    "same source and destination",
			mutate:  func(req *models.TransferRequest) { req.DestinationChain = "BASE" },
			message: "both",
		},
		{
			name:    "unsupported asset",
			mutate:  func(req *models.TransferRequest) { req.Asset = "DAI" },
			message: "asset not configured",
		},
		{
			name:    "zero amount",
			mutate:  func(req *models.TransferRequest) { req.Amount = big.NewInt(0) },
			message: "must be positive",
		},
		{
			name:    "nil amount",
			mutate:  func(req *models.TransferRequest) { req.Amount = nil },
			message: "must be positive",
		},
		{
			name:    "negative fee",
			mutate:  func(req *models.TransferRequest) { req.Fee = big.NewInt(-1) },
			message: "must not be negative",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

			req := baseRequest()
			tc.mutate(&req)
			result := orch.Run(context.Background(), req)

			assert.Equal(t, models.OutcomeFailed, result.Outcome)
			assert.Contains(t, result.Message, tc.message)
			assert.Zero(t, sub.submitCount(), "validation failures must not reach the chain")
		})
	}
}

func TestRunSubmissionFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("insufficient funds for gas")}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	result := orch.Run(context.Background(), baseRequest())

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Message, "insufficient funds")
	assert.Empty(t, result.IntentID)
}

func TestRunIntentNeverIndexed(t *testing.T) {
	sub := &fakeSubmitter{}
	pollErr := fmt.Errorf("%w: no record", poller.ErrIntentNotIndexed)
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{err: pollErr})

	result := orch.Run(context.Background(), baseRequest())

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Message, "status API")
	assert.Equal(t, "0xintent1", result.IntentID, "the intent ID is still reported for debugging")
}

func TestRunFulfilledButNeverSettled(t *testing.T) {
	pollResult := &poller.Result{
		Intent:        &models.Intent{ID: "0xintent1", Status: models.StatusFulfilled, FulfillmentTx: "0xfulfill"},
		Attempts:      60,
		Exhausted:     true,
		FulfilledAt:   time.Now(),
		TimeToFulfill: 4 * time.Second,
	}
	orch := newTestOrchestrator(testConfig(), &fakeSubmitter{}, &fakePoller{result: pollResult})

	result := orch.Run(context.Background(), baseRequest())

	assert.Equal(t, models.OutcomeFulfilled, result.Outcome)
	assert.False(t, result.Succeeded(), "fulfilled without settlement is a failed run")
	assert.Equal(t, "0xfulfill", result.FulfillmentTx)
}

func TestRunExhaustedWhilePending(t *testing.T) {
	pollResult := &poller.Result{
		Intent:    &models.Intent{ID: "0xintent1", Status: models.StatusPending},
		Attempts:  60,
		Exhausted: true,
	}
	orch := newTestOrchestrator(testConfig(), &fakeSubmitter{}, &fakePoller{result: pollResult})

	result := orch.Run(context.Background(), baseRequest())

	assert.Equal(t, models.OutcomePending, result.Outcome)
	assert.Contains(t, result.Message, "may complete later")
}

func TestRunTerminalFailureStatus(t *testing.T) {
	for _, status := range []string{models.StatusCancelled, models.StatusFailed} {
		t.Run(status, func(t *testing.T) {
			pollResult := &poller.Result{
				Intent:    &models.Intent{ID: "0xintent1", Status: status},
				Attempts:  10,
				Exhausted: true,
			}
			orch := newTestOrchestrator(testConfig(), &fakeSubmitter{}, &fakePoller{result: pollResult})

			result := orch.Run(context.Background(), baseRequest())
			assert.Equal(t, models.OutcomeFailed, result.Outcome)
			assert.Contains(t, result.Message, status)
		})
	}
}

func TestRunReceiverDefaultsToSender(t *testing.T) {
	sub := &fakeSubmitter{}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	orch.Run(context.Background(), baseRequest())

	require.Len(t, sub.submitted, 1)
	assert.Equal(t, testWallet, sub.submitted[0].Receiver)
	assert.Equal(t, 42161, sub.submitted[0].TargetChain)
}

func TestRunExplicitReceiverKept(t *testing.T) {
	receiver := common.HexToAddress("0x4444444444444444444444444444444444444444")
	sub := &fakeSubmitter{}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	req := baseRequest()
	req.Receiver = receiver
	orch.Run(context.Background(), req)

	require.Len(t, sub.submitted, 1)
	assert.Equal(t, receiver, sub.submitted[0].Receiver)
}

func TestRunReleasesLockAfterSubmissionFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("rpc down")}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	first := orch.Run(context.Background(), baseRequest())
	require.Equal(t, models.OutcomeFailed, first.Outcome)

	// The chain lock must be free again for the next transfer.
	sub.err = nil
	done := make(chan models.TransferResult, 1)
	go func() { done <- orch.Run(context.Background(), baseRequest()) }()

	select {
	case second := <-done:
		assert.Equal(t, models.OutcomeSettled, second.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("second transfer blocked on a lock the failed transfer should have released")
	}
}

func TestRunBatchSubmissionFailureIsolated(t *testing.T) {
	poison := big.NewInt(666)
	sub := &fakeSubmitter{failOn: func(req *submitter.Request) error {
		if req.Amount.Cmp(poison) == 0 {
			return errors.New("nonce too low")
		}
		return nil
	}}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	bad := baseRequest()
	bad.Amount = poison

	results := orch.RunBatch(context.Background(), []models.TransferRequest{baseRequest(), bad, baseRequest()})
	require.Len(t, results, 3)

	assert.Equal(t, models.OutcomeSettled, results[0].Outcome)
	assert.Equal(t, models.OutcomeFailed, results[1].Outcome)
	assert.Contains(t, results[1].Message, "nonce too low")
	assert.Equal(t, models.OutcomeSettled, results[2].Outcome)
}

func TestRunBatchOrderingAndIsolation(t *testing.T) {
	sub := &fakeSubmitter{}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	bad := baseRequest()
	bad.SourceChain = "SOLANA"

	reqs := []models.TransferRequest{baseRequest(), bad, baseRequest()}
	results := orch.RunBatch(context.Background(), reqs)

	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, i, result.Index, "results must come back in request order")
	}

	assert.Equal(t, models.OutcomeSettled, results[0].Outcome)
	assert.Equal(t, models.OutcomeFailed, results[1].Outcome, "one bad request must not disturb the rest")
	assert.Equal(t, models.OutcomeSettled, results[2].Outcome)
	assert.Equal(t, 2, sub.submitCount())
}

func TestRunBatchSharedSourceChain(t *testing.T) {
	sub := &fakeSubmitter{}
	orch := newTestOrchestrator(testConfig(), sub, &fakePoller{result: settledResult()})

	reqs := []models.TransferRequest{baseRequest(), baseRequest(), baseRequest(), baseRequest()}

	done := make(chan []models.TransferResult, 1)
	go func() { done <- orch.RunBatch(context.Background(), reqs) }()

	select {
	case results := <-done:
		for _, result := range results {
			assert.Equal(t, models.OutcomeSettled, result.Outcome)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch on a shared source chain deadlocked")
	}
}

func TestRunCircuitBreakerTripsAndRejects(t *testing.T) {
	cfg := testConfig()
	cfg.CircuitBreaker.Enabled = true
	cfg.CircuitBreaker.Threshold = 1

	sub := &fakeSubmitter{err: errors.New("rpc down")}
	orch := newTestOrchestrator(cfg, sub, &fakePoller{result: settledResult()})

	first := orch.Run(context.Background(), baseRequest())
	require.Equal(t, models.OutcomeFailed, first.Outcome)

	second := orch.Run(context.Background(), baseRequest())
	assert.Equal(t, models.OutcomeFailed, second.Outcome)
	assert.Contains(t, second.Message, "circuit breaker open")
}
