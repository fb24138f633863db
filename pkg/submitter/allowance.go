package submitter

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/metrics"
)

// TokenBackend is the ERC20 surface the allowance manager needs.
type TokenBackend interface {
	ID() int
	Allowance(ctx context.Context, symbol string, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, symbol string, spender common.Address, amount *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// ApprovalOutcome reports what EnsureAllowance did.
type ApprovalOutcome struct {
	// Approved is false when the existing allowance was already sufficient
	// and no transaction was sent.
	Approved bool
	// TxHash is the approval transaction hash, zero when Approved is false.
	TxHash common.Hash
	// Allowance is the allowance in effect after the call.
	Allowance *big.Int
}

// AllowanceManager ensures a spender contract holds sufficient ERC20
// allowance before a transfer is initiated.
type AllowanceManager struct {
	chain  TokenBackend
	logger logger.Logger
}

// NewAllowanceManager creates an allowance manager for one chain.
func NewAllowanceManager(chain TokenBackend, log logger.Logger) *AllowanceManager {
	return &AllowanceManager{chain: chain, logger: log}
}

// EnsureAllowance checks the current allowance for (owner, spender) on the
// token and tops it up to exactly the required amount when insufficient.
// The harness approves only what each run needs so that the approval path is
// exercised on every run; it deliberately avoids unlimited approvals.
// Errors are not retried and propagate to the caller.
func (m *AllowanceManager) EnsureAllowance(ctx context.Context, owner, spender common.Address, symbol string, required *big.Int) (ApprovalOutcome, error) {
	current, err := m.chain.Allowance(ctx, symbol, owner, spender)
	if err != nil {
		return ApprovalOutcome{}, err
	}

	if current.Cmp(required) >= 0 {
		m.logger.DebugWithChain(m.chain.ID(), "Existing %s allowance (%s) covers required amount (%s), skipping approval",
			symbol, current.String(), required.String())
		return ApprovalOutcome{Approved: false, Allowance: current}, nil
	}

	m.logger.InfoWithChain(m.chain.ID(), "Approving %s %s for spender %s (current allowance: %s)",
		required.String(), symbol, spender.Hex(), current.String())

	tx, err := m.chain.Approve(ctx, symbol, spender, required)
	if err != nil {
		return ApprovalOutcome{}, err
	}

	receipt, err := m.chain.WaitMined(ctx, tx)
	if err != nil {
		return ApprovalOutcome{}, fmt.Errorf("failed to wait for approve transaction: %v", err)
	}
	if receipt.Status == 0 {
		return ApprovalOutcome{}, fmt.Errorf("approve transaction %s reverted", tx.Hash().Hex())
	}

	m.logger.InfoWithChain(m.chain.ID(), "Approval confirmed: %s (gas used: %d)", tx.Hash().Hex(), receipt.GasUsed)
	metrics.ApprovalsSent.WithLabelValues(strconv.Itoa(m.chain.ID())).Inc()

	return ApprovalOutcome{Approved: true, TxHash: tx.Hash(), Allowance: required}, nil
}
