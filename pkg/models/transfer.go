package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TransferRequest describes one cross-chain transfer to be driven end to end.
// Amounts are in the token's smallest unit. A nil Salt means the submitter
// draws one from its salt source. A non-nil Call selects the call variant,
// which executes a swap instruction on the destination chain.
type TransferRequest struct {
	SourceChain      string
	DestinationChain string
	Asset            string
	Amount           *big.Int
	Fee              *big.Int
	Receiver         common.Address
	Salt             *big.Int
	Call             *CallInstruction
}

// CallInstruction is the swap payload carried by the call variant and
// executed by the initiator contract on the destination side.
type CallInstruction struct {
	Path         []common.Address
	Stables      []bool
	AmountOutMin *big.Int
	Deadline     *big.Int
	GasLimit     uint64
}

// Outcome classifies the final state of one transfer run.
type Outcome string

const (
	// OutcomeSettled means the intent reached settled: full success.
	OutcomeSettled Outcome = "settled"
	// OutcomeFulfilled means the asset moved but settlement was never
	// observed: reported as a failure.
	OutcomeFulfilled Outcome = "fulfilled"
	// OutcomePending means polling exhausted while the intent was still
	// non-terminal; the transfer may succeed outside our window.
	OutcomePending Outcome = "pending"
	// OutcomeFailed means submission or lookup failed outright.
	OutcomeFailed Outcome = "failed"
)

// TransferResult is the immutable record produced for one requested transfer.
type TransferResult struct {
	Index            int
	SourceChain      string
	DestinationChain string
	Asset            string
	Amount           string
	Outcome          Outcome
	Message          string
	IntentID         string
	InitiateTx       string
	FulfillmentTx    string
	SettlementTx     string
	TimeToFulfill    time.Duration
	TimeToSettle     time.Duration
	TotalTime        time.Duration
}

// Succeeded reports whether the transfer reached full success.
func (r TransferResult) Succeeded() bool {
	return r.Outcome == OutcomeSettled
}
