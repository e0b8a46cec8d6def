package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

func TestNewCall(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		call, err := domain.NewCall(
			testAccount, testTarget, "100",
			"0xa9059cbb0000000000000000000000003333333333333333333333333333333333333333",
		)
		require.NoError(t, err)
		require.Equal(t, "0xa9059cbb", call.Selector())
		require.Equal(t, "100", call.ValueBig().String())
	})

	t.Run("plain_transfer", func(t *testing.T) {
		call, err := domain.NewCall(testAccount, testTarget, "", "")
		require.NoError(t, err)
		require.Equal(t, "0x", call.Data)
		require.Equal(t, "0", call.Value)
		require.Empty(t, call.Selector())
	})

	tests := []struct {
		name        string
		account     string
		to          string
		value       string
		data        string
		expectedErr error
	}{
		{"invalid_account", "0x1", testTarget, "1", "0x", domain.ErrAccountInvalidAddress},
		{"invalid_target", testAccount, "target", "1", "0x", domain.ErrOperationInvalidTarget},
		{"negative_value", testAccount, testTarget, "-1", "0x", domain.ErrOperationInvalidValue},
		{"invalid_data", testAccount, testTarget, "1", "0xzz", domain.ErrOperationInvalidData},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			call, err := domain.NewCall(tt.account, tt.to, tt.value, tt.data)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, call)
		})
	}
}

func TestCallCheckFunction(t *testing.T) {
	call, err := domain.NewCall(
		testAccount, testTarget, "0",
		"0x095ea7b30000000000000000000000003333333333333333333333333333333333333333",
	)
	require.NoError(t, err)
	plain, err := domain.NewCall(testAccount, testTarget, "1", "")
	require.NoError(t, err)

	tests := []struct {
		name        string
		call        *domain.Call
		label       string
		expectedErr error
	}{
		{"no_label", call, "", nil},
		{"selector", call, "0x095ea7b3", nil},
		{"selector_upper_case", call, "0x095EA7B3", nil},
		{"signature", call, "approve(address,uint256)", nil},
		{"signature_with_spaces", call, "approve(address, uint256)", nil},
		{"no_label_without_calldata", plain, "", nil},
		{"other_signature", call, "transfer(address,uint256)", domain.ErrOperationFunctionMismatch},
		{"other_selector", call, "0xa9059cbb", domain.ErrOperationFunctionMismatch},
		{"plain_name", call, "approve", domain.ErrOperationFunctionMismatch},
		{"label_without_calldata", plain, "transfer", domain.ErrOperationFunctionMismatch},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call.CheckFunction(tt.label)
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestOperationStatus(t *testing.T) {
	call, err := domain.NewCall(testAccount, testTarget, "1", "0x")
	require.NoError(t, err)

	op := domain.NewOperation(
		*call, 1, 0, "bundler", "paymaster", "0xhash", "0xuserop",
		domain.OperationStatusPending, testNow,
	)
	require.NotEmpty(t, op.ID)
	require.False(t, op.IsFinal())
	require.Equal(t, *call, op.Call())

	later := testNow.Add(time.Minute)
	require.NoError(t, op.Confirm(21000, later))
	require.Equal(t, domain.OperationStatusSuccess, op.Status)
	require.Equal(t, uint64(21000), op.GasUsed)
	require.Equal(t, later, op.UpdatedAt)

	err = op.Fail("reverted", 0, later)
	require.ErrorIs(t, err, domain.ErrOperationInvalidStatus)

	failing := domain.NewOperation(
		*call, 1, 1, "bundler", "paymaster", "0xhash2", "0xuserop2",
		domain.OperationStatusPending, testNow,
	)
	require.NoError(t, failing.Fail("reverted", 30000, later))
	require.Equal(t, domain.OperationStatusFailed, failing.Status)
	require.Equal(t, "reverted", failing.FailureReason)
}
