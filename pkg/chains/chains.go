package chains

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ChainList contains the list of supported chain IDs
var ChainList = []int{
	1,     // Ethereum
	137,   // Polygon
	42161, // Arbitrum
	43114, // Avalanche
	56,    // Binance Smart Chain
	7000,  // ZetaChain
	8453,  // Base
}

// chainNames maps chain IDs to their names
var chainNames = map[int]string{
	1:     "ETHEREUM",
	137:   "POLYGON",
	42161: "ARBITRUM",
	43114: "AVALANCHE",
	56:    "BSC",
	7000:  "ZETACHAIN",
	8453:  "BASE",
}

// CallDefaultGasLimit is the default destination-side gas limit used by the
// call variant when the request does not specify one
var CallDefaultGasLimit = map[int]uint64{
	1:     400000,  // Ethereum
	137:   400000,  // Polygon
	42161: 1000000, // Arbitrum
	43114: 400000,  // Avalanche
	56:    400000,  // Binance Smart Chain
	7000:  400000,  // ZetaChain
	8453:  400000,  // Base
}

// GetChainName returns the name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// GetChainID returns the chain ID for a given chain name (case-insensitive),
// or 0 if the name is unknown.
func GetChainID(name string) int {
	upper := strings.ToUpper(name)
	for id, n := range chainNames {
		if n == upper {
			return id
		}
	}
	return 0
}

// IsSupported reports whether the chain ID is part of the supported set.
func IsSupported(chainID int) bool {
	_, exists := chainNames[chainID]
	return exists
}

// StandardizedAmount converts a base-unit amount to a float using the token's
// decimal count. Used only for display and summary output.
func StandardizedAmount(baseAmount *big.Int, decimals uint8) (float64, error) {
	if baseAmount == nil {
		return 0, fmt.Errorf("nil amount")
	}
	if baseAmount.Sign() < 0 {
		return 0, fmt.Errorf("negative amount: %s", baseAmount.String())
	}

	amountFloat := new(big.Float).SetInt(baseAmount)
	divisor := new(big.Float).SetFloat64(math.Pow10(int(decimals)))
	result, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return result, nil
}
