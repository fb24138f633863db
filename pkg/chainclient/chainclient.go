// Package chainclient wraps a per-chain RPC connection together with the
// transactor and the contract bindings the harness drives.
package chainclient

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/speedrun-hq/speedrun-e2e/pkg/config"
	"github.com/speedrun-hq/speedrun-e2e/pkg/contracts"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/metrics"
)

// defaultGasPriceCap bounds the buffered gas price at 500 gwei.
var defaultGasPriceCap = new(big.Int).Mul(big.NewInt(500), big.NewInt(1e9))

// boundToken couples an ERC20 binding with its static configuration.
type boundToken struct {
	erc20    *contracts.ERC20
	decimals uint8
}

// Client contains the connection and contract state for a specific blockchain
type Client struct {
	ChainID          int
	Name             string
	RPCURL           string
	InitiatorAddress common.Address
	Client           *ethclient.Client
	Initiator        *contracts.Initiator
	Auth             *bind.TransactOpts
	GasMultiplier    float64
	GasPriceCap      *big.Int

	tokens map[string]boundToken
	logger logger.Logger
}

// Dial connects to the chain's RPC endpoint and initializes the transactor
// and contract bindings.
func Dial(ctx context.Context, cfg *config.ChainConfig, privateKey string, log logger.Logger) (*Client, error) {
	rpcClient, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %s: %v", cfg.Name, err)
	}

	auth, err := createAuthenticator(ctx, rpcClient, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator for chain %s: %v", cfg.Name, err)
	}

	initiatorAddress := common.HexToAddress(cfg.InitiatorAddress)
	initiator, err := contracts.NewInitiator(initiatorAddress, rpcClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize initiator contract: %v", err)
	}

	tokens := make(map[string]boundToken, len(cfg.Tokens))
	for symbol, tokenCfg := range cfg.Tokens {
		erc20, err := contracts.NewERC20(common.HexToAddress(tokenCfg.Address), rpcClient)
		if err != nil {
			return nil, fmt.Errorf("failed to bind token %s on chain %s: %v", symbol, cfg.Name, err)
		}
		tokens[symbol] = boundToken{erc20: erc20, decimals: tokenCfg.Decimals}
	}

	return &Client{
		ChainID:          cfg.ChainID,
		Name:             cfg.Name,
		RPCURL:           cfg.RPCURL,
		InitiatorAddress: initiatorAddress,
		Client:           rpcClient,
		Initiator:        initiator,
		Auth:             auth,
		GasMultiplier:    1.1,
		GasPriceCap:      defaultGasPriceCap,
		tokens:           tokens,
		logger:           log,
	}, nil
}

// ID returns the numeric chain ID.
func (c *Client) ID() int {
	return c.ChainID
}

// Sender returns the wallet address transactions are sent from.
func (c *Client) Sender() common.Address {
	return c.Auth.From
}

// Spender returns the initiator contract address, the spender for approvals.
func (c *Client) Spender() common.Address {
	return c.InitiatorAddress
}

// TokenAddress returns the contract address for a configured asset symbol.
func (c *Client) TokenAddress(symbol string) (common.Address, error) {
	token, err := c.token(symbol)
	if err != nil {
		return common.Address{}, err
	}
	return token.erc20.Address(), nil
}

// TokenDecimals returns the configured decimal count for an asset symbol.
func (c *Client) TokenDecimals(symbol string) (uint8, error) {
	token, err := c.token(symbol)
	if err != nil {
		return 0, err
	}
	return token.decimals, nil
}

// Allowance reads the current ERC20 allowance for (owner, spender) on a token.
func (c *Client) Allowance(ctx context.Context, symbol string, owner, spender common.Address) (*big.Int, error) {
	token, err := c.token(symbol)
	if err != nil {
		return nil, err
	}

	allowance, err := token.erc20.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to check allowance for %s on chain %d: %v", symbol, c.ChainID, err)
	}
	return allowance, nil
}

// Approve submits an ERC20 approval transaction for the given amount.
func (c *Client) Approve(ctx context.Context, symbol string, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	token, err := c.token(symbol)
	if err != nil {
		return nil, err
	}

	txOpts := *c.Auth
	txOpts.Context = ctx
	tx, err := token.erc20.Approve(&txOpts, spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to approve %s on chain %d: %v", symbol, c.ChainID, err)
	}
	return tx, nil
}

// TokenBalance reads the wallet's balance for a configured asset symbol.
func (c *Client) TokenBalance(ctx context.Context, symbol string, owner common.Address) (*big.Int, error) {
	token, err := c.token(symbol)
	if err != nil {
		return nil, err
	}

	balance, err := token.erc20.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance on chain %d: %v", symbol, c.ChainID, err)
	}
	return balance, nil
}

// NextIntentID previews the intent ID the contract will assign for this
// sender and salt. Read-only; must be called before the initiating transaction.
func (c *Client) NextIntentID(ctx context.Context, salt *big.Int) ([32]byte, error) {
	callOpts := &bind.CallOpts{Context: ctx, From: c.Auth.From}
	intentID, err := c.Initiator.GetNextIntentId(callOpts, salt)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to preview intent ID on chain %d: %v", c.ChainID, err)
	}
	return intentID, nil
}

// Initiate submits the direct-transfer initiating transaction.
func (c *Client) Initiate(ctx context.Context, asset common.Address, amount *big.Int, targetChain int, receiver []byte, tip, salt *big.Int) (*types.Transaction, error) {
	txOpts := *c.Auth
	txOpts.Context = ctx
	tx, err := c.Initiator.Initiate(&txOpts, asset, amount, big.NewInt(int64(targetChain)), receiver, tip, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate intent on chain %d: %v", c.ChainID, err)
	}
	return tx, nil
}

// InitiateCall submits the call-variant initiating transaction with an
// abi-encoded swap instruction for the destination side.
func (c *Client) InitiateCall(ctx context.Context, asset common.Address, amount *big.Int, targetChain int, receiver []byte, tip, salt *big.Int, gasLimit uint64, data []byte) (*types.Transaction, error) {
	txOpts := *c.Auth
	txOpts.Context = ctx
	tx, err := c.Initiator.InitiateCall(&txOpts, asset, amount, big.NewInt(int64(targetChain)), receiver, tip, salt, new(big.Int).SetUint64(gasLimit), data)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate call intent on chain %d: %v", c.ChainID, err)
	}
	return tx, nil
}

// WaitMined blocks until the transaction has one confirmation and returns its receipt.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.Client, tx)
}

// UpdateGasPrice refreshes the transactor's gas price from current network
// conditions, applying the configured multiplier.
func (c *Client) UpdateGasPrice(ctx context.Context) (*big.Int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gasPrice, err := c.Client.SuggestGasPrice(timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	// Apply gas multiplier (e.g. 1.1 = 10% buffer)
	multipliedGasPrice := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(c.GasMultiplier),
	)
	finalGasPrice := new(big.Int)
	multipliedGasPrice.Int(finalGasPrice)

	if c.GasPriceCap != nil && finalGasPrice.Cmp(c.GasPriceCap) > 0 {
		c.logger.NoticeWithChain(c.ChainID, "Gas price %s wei exceeds cap, clamping to %s",
			finalGasPrice.String(), c.GasPriceCap.String())
		finalGasPrice = new(big.Int).Set(c.GasPriceCap)
	}

	c.Auth.GasPrice = finalGasPrice
	c.logger.DebugWithChain(c.ChainID, "Updated gas price: %s wei (multiplier: %.2f)",
		finalGasPrice.String(), c.GasMultiplier)

	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(finalGasPrice), big.NewFloat(1e9)).Float64()
	metrics.GasPrice.WithLabelValues(strconv.Itoa(c.ChainID)).Set(gwei)

	return finalGasPrice, nil
}

// GetLatestBlockNumber gets the latest block number from the chain
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.Client.BlockNumber(ctx)
}

func (c *Client) token(symbol string) (boundToken, error) {
	token, exists := c.tokens[strings.ToUpper(symbol)]
	if !exists {
		return boundToken{}, fmt.Errorf("token %s not configured for chain %d", symbol, c.ChainID)
	}
	return token, nil
}

// Helper function to create authenticator
func createAuthenticator(ctx context.Context, client *ethclient.Client, privateKeyHex string) (*bind.TransactOpts, error) {
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}

	return auth, nil
}
