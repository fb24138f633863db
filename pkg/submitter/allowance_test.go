package submitter

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllowanceManager(backend *fakeBackend) *AllowanceManager {
	return NewAllowanceManager(backend, &logger.EmptyLogger{})
}

func TestEnsureAllowanceSkipsWhenSufficient(t *testing.T) {
	tests := []struct {
		name      string
		allowance int64
		required  int64
	}{
		{name: "allowance above requirement", allowance: 500, required: 100},
		{name: "allowance exactly at requirement", allowance: 100, required: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := newFakeBackend(tc.allowance)
			manager := newTestAllowanceManager(backend)

			outcome, err := manager.EnsureAllowance(context.Background(),
				testSender, testSpender, "USDC", big.NewInt(tc.required))
			require.NoError(t, err)

			assert.False(t, outcome.Approved)
			assert.Equal(t, tc.allowance, outcome.Allowance.Int64())
			assert.NotContains(t, backend.ops, "approve")
		})
	}
}

func TestEnsureAllowanceApprovesExactAmount(t *testing.T) {
	backend := newFakeBackend(40)
	manager := newTestAllowanceManager(backend)

	outcome, err := manager.EnsureAllowance(context.Background(),
		testSender, testSpender, "USDC", big.NewInt(100))
	require.NoError(t, err)

	assert.True(t, outcome.Approved)
	require.NotNil(t, backend.approvedWith)
	assert.Equal(t, int64(100), backend.approvedWith.Int64(),
		"the approval must be for the required amount, never unlimited")
	assert.Equal(t, int64(100), outcome.Allowance.Int64())
	assert.NotEqual(t, outcome.TxHash.Hex(), "0x0000000000000000000000000000000000000000000000000000000000000000")
}

func TestEnsureAllowanceRevertedApproval(t *testing.T) {
	backend := newFakeBackend(0)
	backend.receiptStatus = 0
	manager := newTestAllowanceManager(backend)

	_, err := manager.EnsureAllowance(context.Background(),
		testSender, testSpender, "USDC", big.NewInt(100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reverted")
}

func TestEnsureAllowancePropagatesReadError(t *testing.T) {
	backend := newFakeBackend(0)
	backend.allowanceErr = errors.New("rpc timeout")
	manager := newTestAllowanceManager(backend)

	_, err := manager.EnsureAllowance(context.Background(),
		testSender, testSpender, "USDC", big.NewInt(100))
	require.ErrorIs(t, err, backend.allowanceErr)
	assert.NotContains(t, backend.ops, "approve", "a failed allowance read must not trigger an approval")
}
