package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
)

// Config holds the configuration for the transfer harness
type Config struct {
	APIEndpoint     string
	PrivateKey      string
	WalletAddress   string
	PollInterval    time.Duration
	MaxPollAttempts int
	MetricsPort     string
	CircuitBreaker  CircuitBreakerConfig
	LoggerConfig    LoggerConfig
	Chains          map[string]*ChainConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// TokenConfig holds the address and decimal count for one supported asset
type TokenConfig struct {
	Address  string
	Decimals uint8
}

// ChainConfig holds the immutable network parameters for a specific chain.
// Never mutated after load.
type ChainConfig struct {
	Name             string
	ChainID          int
	RPCURL           string
	InitiatorAddress string
	Tokens           map[string]TokenConfig
}

// Token returns the token configuration for an asset symbol (case-insensitive).
func (c *ChainConfig) Token(symbol string) (TokenConfig, bool) {
	token, exists := c.Tokens[strings.ToUpper(symbol)]
	return token, exists
}

// Chain looks up a chain configuration by name (case-insensitive).
func (c *Config) Chain(name string) (*ChainConfig, bool) {
	chain, exists := c.Chains[strings.ToUpper(name)]
	return chain, exists
}

// ChainByID looks up a chain configuration by numeric chain ID.
func (c *Config) ChainByID(chainID int) (*ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainID == chainID {
			return chain, true
		}
	}
	return nil, false
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	apiEndpoint, err := GetEnvAPIEndpoint()
	if err != nil {
		return nil, err
	}

	pollInterval, err := GetEnvPollInterval()
	if err != nil {
		return nil, err
	}

	maxPollAttempts, err := GetEnvMaxPollAttempts()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	privateKey := GetEnvPrivateKey()
	walletAddress, err := GetEnvWalletAddress()
	if err != nil {
		return nil, err
	}

	chainConfigs, err := GetEnvChainConfigs()
	if err != nil {
		return nil, err
	}
	chains := make(map[string]*ChainConfig, len(chainConfigs))
	for _, chainConfig := range chainConfigs {
		chains[chainConfig.Name] = chainConfig
	}

	cfg := &Config{
		APIEndpoint:     apiEndpoint,
		PrivateKey:      privateKey,
		WalletAddress:   walletAddress,
		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
		MetricsPort:     metricsPort,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
		Chains: chains,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY environment variable is required")
	}
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain configuration is required")
	}
	for name, chainConfig := range cfg.Chains {
		if chainConfig.InitiatorAddress == "" {
			return fmt.Errorf("%s_INTENT_ADDRESS is required", name)
		}
		if len(chainConfig.Tokens) == 0 {
			return fmt.Errorf("at least one token is required for chain %s", name)
		}
	}
	return nil
}
