package chains

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChainName(t *testing.T) {
	tests := []struct {
		chainID  int
		expected string
	}{
		{1, "ETHEREUM"},
		{137, "POLYGON"},
		{42161, "ARBITRUM"},
		{43114, "AVALANCHE"},
		{56, "BSC"},
		{7000, "ZETACHAIN"},
		{8453, "BASE"},
		{999999, ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, GetChainName(tc.chainID))
	}
}

func TestGetChainID(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"BASE", 8453},
		{"base", 8453},
		{"Arbitrum", 42161},
		{"ethereum", 1},
		{"SOLANA", 0},
		{"", 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, GetChainID(tc.name), "name %q", tc.name)
	}
}

func TestIsSupported(t *testing.T) {
	for _, chainID := range ChainList {
		assert.True(t, IsSupported(chainID))
	}
	assert.False(t, IsSupported(0))
	assert.False(t, IsSupported(5))
}

func TestCallDefaultGasLimitCoversAllChains(t *testing.T) {
	for _, chainID := range ChainList {
		limit, ok := CallDefaultGasLimit[chainID]
		require.True(t, ok, "chain %d has no default gas limit", chainID)
		assert.NotZero(t, limit)
	}
	assert.Equal(t, uint64(1000000), CallDefaultGasLimit[42161], "Arbitrum needs the higher default")
}

func TestStandardizedAmount(t *testing.T) {
	setString := func(s string) *big.Int {
		value, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok, "failed to parse %s", s)
		return value
	}

	tests := []struct {
		name       string
		baseAmount *big.Int
		decimals   uint8
		expected   float64
		isErr      bool
	}{
		{
			name:       "one token with 6 decimals",
			baseAmount: big.NewInt(1000000),
			decimals:   6,
			expected:   1.0,
		},
		{
			name:       "half token with 6 decimals",
			baseAmount: big.NewInt(500000),
			decimals:   6,
			expected:   0.5,
		},
		{
			name:       "one token with 18 decimals",
			baseAmount: setString("1000000000000000000"),
			decimals:   18,
			expected:   1.0,
		},
		{
			name:       "thousand tokens with 18 decimals",
			baseAmount: setString("1000000000000000000000"),
			decimals:   18,
			expected:   1000.0,
		},
		{
			name:       "zero",
			baseAmount: big.NewInt(0),
			decimals:   6,
			expected:   0,
		},
		{
			name:       "nil amount",
			baseAmount: nil,
			decimals:   6,
			isErr:      true,
		},
		{
			name:       "negative amount",
			baseAmount: big.NewInt(-1),
			decimals:   6,
			isErr:      true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := StandardizedAmount(tc.baseAmount, tc.decimals)
			if tc.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, result, 1e-9)
		})
	}
}
