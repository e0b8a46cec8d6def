package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

func TestSmartAccount(t *testing.T) {
	account, err := domain.NewSmartAccount(
		strings.ToLower(testAccount), "user-1", 137, testNow,
	)
	require.NoError(t, err)
	require.Equal(t, testAccount, account.Address)
	require.Equal(t, "0", account.Balance)
	require.False(t, account.IsDeployed)

	later := testNow.Add(time.Second)
	require.Equal(t, uint64(0), account.ReserveNonce(later))
	require.Equal(t, uint64(1), account.ReserveNonce(later))
	require.Equal(t, uint64(2), account.Nonce)
	require.Equal(t, later, account.UpdatedAt)

	require.True(t, account.MarkDeployed(later))
	require.False(t, account.MarkDeployed(later))

	require.NoError(t, account.UpdateBalance("1000000000000000000", later))
	require.Equal(t, "1000000000000000000", account.Balance)
	require.ErrorIs(
		t, account.UpdateBalance("-5", later), domain.ErrAccountInvalidBalance,
	)

	_, err = domain.NewSmartAccount("0x123", "user-1", 137, testNow)
	require.ErrorIs(t, err, domain.ErrAccountInvalidAddress)
}
