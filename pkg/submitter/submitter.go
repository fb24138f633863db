// Package submitter drives the submission phase of one transfer: allowance
// management, intent-ID derivation and the initiating transaction.
package submitter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/speedrun-hq/speedrun-e2e/pkg/chains"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/models"
)

// Request carries the resolved on-chain parameters for one submission.
// Immutable once built.
type Request struct {
	Asset       string
	Amount      *big.Int
	Tip         *big.Int
	TargetChain int
	Receiver    common.Address
	// Salt is optional; nil draws from the submitter's salt source.
	Salt *big.Int
	// Call selects the call variant when non-nil.
	Call *models.CallInstruction
}

// Receipt is returned once the initiating transaction is confirmed.
type Receipt struct {
	IntentID string
	TxHash   string
}

// Backend is the chain surface the submitter drives. Implemented by
// chainclient.Client, faked in tests.
type Backend interface {
	TokenBackend
	Sender() common.Address
	Spender() common.Address
	TokenAddress(symbol string) (common.Address, error)
	NextIntentID(ctx context.Context, salt *big.Int) ([32]byte, error)
	Initiate(ctx context.Context, asset common.Address, amount *big.Int, targetChain int, receiver []byte, tip, salt *big.Int) (*types.Transaction, error)
	InitiateCall(ctx context.Context, asset common.Address, amount *big.Int, targetChain int, receiver []byte, tip, salt *big.Int, gasLimit uint64, data []byte) (*types.Transaction, error)
}

// Submitter submits intents on one source chain.
type Submitter struct {
	chain     Backend
	allowance *AllowanceManager
	salts     SaltSource
	logger    logger.Logger
}

// New creates a submitter for one chain.
func New(chain Backend, salts SaltSource, log logger.Logger) *Submitter {
	return &Submitter{
		chain:     chain,
		allowance: NewAllowanceManager(chain, log),
		salts:     salts,
		logger:    log,
	}
}

// Sender returns the wallet address intents are initiated from.
func (s *Submitter) Sender() common.Address {
	return s.chain.Sender()
}

// Submit runs the full submission protocol: ensure allowance for
// amount + tip, preview the intent ID for the salt, send the initiating
// transaction and wait for one confirmation. The returned intent ID is the
// one previewed before submission; for a fixed (sender, salt) pair it equals
// the ID the contract assigns.
//
// Callers sharing a source chain must serialize calls to Submit; the
// orchestrator holds the chain lock around it.
func (s *Submitter) Submit(ctx context.Context, req *Request) (*Receipt, error) {
	required := new(big.Int).Add(req.Amount, req.Tip)
	_, err := s.allowance.EnsureAllowance(ctx, s.chain.Sender(), s.chain.Spender(), req.Asset, required)
	if err != nil {
		return nil, err
	}

	assetAddress, err := s.chain.TokenAddress(req.Asset)
	if err != nil {
		return nil, err
	}

	salt := req.Salt
	if salt == nil {
		salt = s.salts.Next()
	}

	// The preview call is keyed by (sender, salt); it must happen before the
	// state-changing transaction so the ID is known up front.
	rawID, err := s.chain.NextIntentID(ctx, salt)
	if err != nil {
		return nil, err
	}
	intentID := common.Hash(rawID).Hex()

	// Fixed-width 20-byte receiver regardless of input formatting.
	receiver := req.Receiver.Bytes()

	var tx *types.Transaction
	if req.Call != nil {
		tx, err = s.submitCall(ctx, assetAddress, receiver, salt, req)
	} else {
		tx, err = s.chain.Initiate(ctx, assetAddress, req.Amount, req.TargetChain, receiver, req.Tip, salt)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithChain(s.chain.ID(), "Intent %s initiated: %s (target chain: %d, amount: %s, tip: %s)",
		intentID, tx.Hash().Hex(), req.TargetChain, req.Amount.String(), req.Tip.String())

	receipt, err := s.chain.WaitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for initiate transaction: %v", err)
	}
	if receipt.Status == 0 {
		return nil, fmt.Errorf("initiate transaction %s reverted", tx.Hash().Hex())
	}

	s.logger.InfoWithChain(s.chain.ID(), "Intent %s confirmed in block %s (gas used: %d)",
		intentID, receipt.BlockNumber.String(), receipt.GasUsed)

	return &Receipt{IntentID: intentID, TxHash: tx.Hash().Hex()}, nil
}

// submitCall sends the call variant with the abi-encoded swap instruction.
func (s *Submitter) submitCall(ctx context.Context, asset common.Address, receiver []byte, salt *big.Int, req *Request) (*types.Transaction, error) {
	data, err := EncodeSwapInstruction(req.Call)
	if err != nil {
		return nil, fmt.Errorf("failed to encode swap instruction: %v", err)
	}

	gasLimit := req.Call.GasLimit
	if gasLimit == 0 {
		gasLimit = chains.CallDefaultGasLimit[req.TargetChain]
	}

	return s.chain.InitiateCall(ctx, asset, req.Amount, req.TargetChain, receiver, req.Tip, salt, gasLimit, data)
}

// EncodeSwapInstruction packs the destination-side swap parameters the way
// the initiator contract expects them: (address[] path, bool[] stables,
// uint256 amountOutMin, uint256 deadline).
func EncodeSwapInstruction(call *models.CallInstruction) ([]byte, error) {
	if len(call.Path) < 2 {
		return nil, fmt.Errorf("swap path needs at least 2 tokens, got %d", len(call.Path))
	}
	if len(call.Stables) != len(call.Path)-1 {
		return nil, fmt.Errorf("stable flags length %d does not match path hops %d", len(call.Stables), len(call.Path)-1)
	}

	addressSliceType, err := abi.NewType("address[]", "", nil)
	if err != nil {
		return nil, err
	}
	boolSliceType, err := abi.NewType("bool[]", "", nil)
	if err != nil {
		return nil, err
	}
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{
		{Type: addressSliceType},
		{Type: boolSliceType},
		{Type: uint256Type},
		{Type: uint256Type},
	}
	return args.Pack(call.Path, call.Stables, call.AmountOutMin, call.Deadline)
}
