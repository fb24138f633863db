package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
)

const (
	// DefaultAPIEndpoint defines the default API endpoint for the Speedrun service
	DefaultAPIEndpoint = "https://api.speedrun.exchange"

	// DefaultPollInterval defines the default status poll interval in seconds
	DefaultPollInterval = 5

	// DefaultMaxPollAttempts defines the default maximum number of status polls per intent
	DefaultMaxPollAttempts = 60

	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	// The harness is meant to observe failures, so the breaker is off unless asked for
	DefaultCircuitBreakerEnabled = false

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker in seconds
	DefaultCircuitBreakerWindow = 60

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker in seconds
	DefaultCircuitBreakerReset = 300
)

// chainDefaults describes the built-in mainnet parameters for one chain.
// Every field can be overridden through environment variables.
type chainDefaults struct {
	name           string
	chainID        int
	rpcURL         string
	intentAddress  string
	usdcAddress    string
	usdtAddress    string
	stableDecimals uint8
}

var mainnetChains = []chainDefaults{
	{
		name:           "BASE",
		chainID:        8453,
		rpcURL:         "https://mainnet.base.org",
		intentAddress:  "0x999fce149FD078DCFaa2C681e060e00F528552f4",
		usdcAddress:    "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		usdtAddress:    "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb",
		stableDecimals: 6,
	},
	{
		name:           "ARBITRUM",
		chainID:        42161,
		rpcURL:         "https://arb1.arbitrum.io/rpc",
		intentAddress:  "0xD6B0E2a8D115cCA2823c5F80F8416644F3970dD2",
		usdcAddress:    "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		usdtAddress:    "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
		stableDecimals: 6,
	},
	{
		name:           "POLYGON",
		chainID:        137,
		rpcURL:         "https://polygon-rpc.com",
		intentAddress:  "0x4017717c550E4B6E61048D412a718D6A8078d264",
		usdcAddress:    "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
		usdtAddress:    "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
		stableDecimals: 6,
	},
	{
		name:           "ETHEREUM",
		chainID:        1,
		rpcURL:         "https://eth.llamarpc.com",
		intentAddress:  "0x951AB2A5417a51eB5810aC44BC1fC716995C1CAB",
		usdcAddress:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		usdtAddress:    "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		stableDecimals: 6,
	},
	{
		name:           "AVALANCHE",
		chainID:        43114,
		rpcURL:         "https://avalanche-c-chain-rpc.publicnode.com",
		intentAddress:  "0x9a22A7d337aF1801BEEcDBE7f4f04BbD09F9E5bb",
		usdcAddress:    "0xb97ef9ef8734c71904d8002f8b6bc66dd9c48a6e",
		usdtAddress:    "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7",
		stableDecimals: 6,
	},
	{
		// BSC stables use 18 decimals, unlike every other supported chain
		name:           "BSC",
		chainID:        56,
		rpcURL:         "https://bsc-dataseed.bnbchain.org",
		intentAddress:  "0x68282fa70a32E52711d437b6c5984B714Eec3ED0",
		usdcAddress:    "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
		usdtAddress:    "0x55d398326f99059fF775485246999027B3197955",
		stableDecimals: 18,
	},
	{
		name:           "ZETACHAIN",
		chainID:        7000,
		rpcURL:         "https://zetachain-evm.blockpi.network/v1/rpc/public",
		intentAddress:  "0x986e2db1aF08688dD3C9311016026daD15969e09",
		usdcAddress:    "0x0cbe0dF132a6c6B4a2974Fa1b7Fb953CF0Cc798a",
		usdtAddress:    "0x7c8dDa80bbBE1254a7aACf3219EBe1481c6E01d7",
		stableDecimals: 6,
	},
}

// GetEnvAPIEndpoint returns the API endpoint from environment variables
func GetEnvAPIEndpoint() (string, error) {
	apiEndpoint := os.Getenv("API_ENDPOINT")
	if apiEndpoint == "" {
		return DefaultAPIEndpoint, nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(apiEndpoint); err != nil {
		return "", fmt.Errorf("invalid API_ENDPOINT value: %s, must be a valid URL", apiEndpoint)
	}
	return apiEndpoint, nil
}

// GetEnvPollInterval returns the status poll interval in seconds from environment variables
func GetEnvPollInterval() (time.Duration, error) {
	pollInterval := os.Getenv("POLL_INTERVAL")
	if pollInterval == "" {
		return time.Duration(DefaultPollInterval) * time.Second, nil
	}

	interval, err := strconv.Atoi(pollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid POLL_INTERVAL value: %s, must be an integer", pollInterval)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("POLL_INTERVAL must be greater than 0")
	}
	return time.Duration(interval) * time.Second, nil
}

// GetEnvMaxPollAttempts returns the maximum number of status polls from environment variables
func GetEnvMaxPollAttempts() (int, error) {
	maxAttempts := os.Getenv("MAX_POLL_ATTEMPTS")
	if maxAttempts == "" {
		return DefaultMaxPollAttempts, nil
	}

	attempts, err := strconv.Atoi(maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_POLL_ATTEMPTS value: %s, must be an integer", maxAttempts)
	}
	if attempts <= 0 {
		return 0, fmt.Errorf("MAX_POLL_ATTEMPTS must be greater than 0")
	}
	return attempts, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables.
// An empty METRICS_PORT is allowed and disables the metrics server.
func GetEnvMetricsPort() (string, error) {
	metricsPort, set := os.LookupEnv("METRICS_PORT")
	if !set {
		return DefaultMetricsPort, nil
	}
	if metricsPort == "" {
		return "", nil
	}

	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return logger.InfoLevel, nil
	}

	switch strings.ToLower(level) {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of debug, info, notice, error", level)
}

// GetEnvLogColoring returns whether colored log output is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}

// GetEnvPrivateKey returns the wallet private key from environment variables
func GetEnvPrivateKey() string {
	return strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x")
}

// GetEnvWalletAddress returns the wallet address from environment variables.
// Optional; when empty the address is derived from the private key at connect time.
func GetEnvWalletAddress() (string, error) {
	walletAddress := os.Getenv("WALLET_ADDRESS")
	if walletAddress == "" {
		return "", nil
	}

	if !common.IsHexAddress(walletAddress) {
		return "", fmt.Errorf("invalid WALLET_ADDRESS value: %s, must be a valid Ethereum address", walletAddress)
	}
	return walletAddress, nil
}

// GetEnvChainConfigs returns the chain configurations for all supported chains,
// applying environment variable overrides on top of the built-in mainnet defaults
func GetEnvChainConfigs() ([]*ChainConfig, error) {
	configs := make([]*ChainConfig, 0, len(mainnetChains))
	for _, defaults := range mainnetChains {
		rpcURL := os.Getenv(defaults.name + "_RPC_URL")
		if rpcURL == "" {
			rpcURL = defaults.rpcURL
		}

		intentAddress := os.Getenv(defaults.name + "_INTENT_ADDRESS")
		if intentAddress == "" {
			intentAddress = defaults.intentAddress
		}
		if !common.IsHexAddress(intentAddress) {
			return nil, fmt.Errorf("invalid %s_INTENT_ADDRESS value: %s", defaults.name, intentAddress)
		}

		usdcAddress := os.Getenv(defaults.name + "_USDC_ADDRESS")
		if usdcAddress == "" {
			usdcAddress = defaults.usdcAddress
		}
		usdtAddress := os.Getenv(defaults.name + "_USDT_ADDRESS")
		if usdtAddress == "" {
			usdtAddress = defaults.usdtAddress
		}

		tokens := make(map[string]TokenConfig)
		if common.IsHexAddress(usdcAddress) {
			tokens["USDC"] = TokenConfig{Address: usdcAddress, Decimals: defaults.stableDecimals}
		}
		if common.IsHexAddress(usdtAddress) {
			tokens["USDT"] = TokenConfig{Address: usdtAddress, Decimals: defaults.stableDecimals}
		}

		configs = append(configs, &ChainConfig{
			Name:             defaults.name,
			ChainID:          defaults.chainID,
			RPCURL:           rpcURL,
			InitiatorAddress: intentAddress,
			Tokens:           tokens,
		})
	}
	return configs, nil
}
