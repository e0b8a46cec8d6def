package domain_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

var (
	guardianA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa").Hex()
	guardianB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb").Hex()
	guardianC = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc").Hex()
	guardians = []string{guardianA, guardianB, guardianC}
)

func TestNewRecoveryRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req, err := domain.NewRecoveryRequest(
			"id", testAccount, append(guardians, guardianA), 2,
			testNow, 48*time.Hour, 0,
		)
		require.NoError(t, err)
		require.Equal(t, domain.RecoveryStatusPending, req.Status)
		require.Len(t, req.Guardians, 3)
		require.Empty(t, req.Approvals)
		require.Equal(t, testNow.Add(48*time.Hour), req.ExecuteAfter)
		require.True(t, req.ExpiresAt.IsZero())
	})

	t.Run("with_max_pending_lifetime", func(t *testing.T) {
		req, err := domain.NewRecoveryRequest(
			"id", testAccount, guardians, 2, testNow, time.Hour, 24*time.Hour,
		)
		require.NoError(t, err)
		require.Equal(t, testNow.Add(24*time.Hour), req.ExpiresAt)
		require.False(t, req.ShouldExpire(testNow.Add(time.Hour)))
		require.True(t, req.ShouldExpire(testNow.Add(24*time.Hour)))
	})

	tests := []struct {
		name        string
		account     string
		guardians   []string
		threshold   int
		expectedErr error
	}{
		{"missing_account", "", guardians, 1, domain.ErrRecoveryMissingRequiredFields},
		{"missing_guardians", testAccount, nil, 1, domain.ErrRecoveryMissingRequiredFields},
		{"invalid_guardian", testAccount, []string{"0xnope"}, 1, domain.ErrRecoveryInvalidGuardian},
		{"zero_threshold", testAccount, guardians, 0, domain.ErrRecoveryInvalidThreshold},
		{"threshold_too_high", testAccount, guardians, 4, domain.ErrRecoveryInvalidThreshold},
		{
			"threshold_over_unique_guardians", testAccount,
			[]string{guardianA, guardianA}, 2, domain.ErrRecoveryInvalidThreshold,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := domain.NewRecoveryRequest(
				"id", tt.account, tt.guardians, tt.threshold, testNow, time.Hour, 0,
			)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, req)
		})
	}
}

func TestRecoveryRequestApprove(t *testing.T) {
	req := newRecoveryRequest(t, 2)

	ok, err := req.Approve(guardianA)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, domain.RecoveryStatusPending, req.Status)

	ok, err = req.Approve(guardianA)
	require.ErrorIs(t, err, domain.ErrRecoveryAlreadyApproved)
	require.False(t, ok)
	require.Len(t, req.Approvals, 1)

	_, err = req.Approve(testOther)
	require.ErrorIs(t, err, domain.ErrRecoveryNotAGuardian)

	ok, err = req.Approve(guardianB)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RecoveryStatusApproved, req.Status)
	require.Equal(t, []string{guardianA, guardianB}, req.Approvals)

	_, err = req.Approve(guardianC)
	require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
	require.Len(t, req.Approvals, 2)

	// a closed request reports its state to guardians that already approved.
	_, err = req.Approve(guardianA)
	require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
	require.NotErrorIs(t, err, domain.ErrRecoveryAlreadyApproved)

	cancelled := newRecoveryRequest(t, 2)
	_, err = cancelled.Approve(guardianA)
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel(testNow, "owner is back"))
	_, err = cancelled.Approve(guardianA)
	require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
	require.NotErrorIs(t, err, domain.ErrRecoveryAlreadyApproved)
}

func TestRecoveryRequestExecute(t *testing.T) {
	t.Run("not_approved", func(t *testing.T) {
		req := newRecoveryRequest(t, 1)
		err := req.Execute(testNow.Add(72 * time.Hour))
		require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
	})

	t.Run("too_early", func(t *testing.T) {
		req := newRecoveryRequest(t, 1)
		_, err := req.Approve(guardianC)
		require.NoError(t, err)

		err = req.Execute(testNow.Add(47 * time.Hour))
		require.ErrorIs(t, err, domain.ErrRecoveryTooEarly)
		require.Equal(t, domain.RecoveryStatusApproved, req.Status)
	})

	t.Run("executed", func(t *testing.T) {
		req := newRecoveryRequest(t, 1)
		_, err := req.Approve(guardianC)
		require.NoError(t, err)

		now := testNow.Add(48 * time.Hour)
		require.NoError(t, req.Execute(now))
		require.Equal(t, domain.RecoveryStatusExecuted, req.Status)
		require.Equal(t, now, req.ExecutedAt)

		err = req.Execute(now)
		require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
		err = req.Cancel(now, "")
		require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
	})
}

func TestRecoveryRequestCancel(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(req *domain.RecoveryRequest)
		wantErr bool
	}{
		{
			name:    "pending",
			prepare: func(req *domain.RecoveryRequest) {},
		},
		{
			name: "approved",
			prepare: func(req *domain.RecoveryRequest) {
				req.Approve(guardianA)
			},
		},
		{
			name: "expired",
			prepare: func(req *domain.RecoveryRequest) {
				req.Expire()
			},
			wantErr: true,
		},
		{
			name: "cancelled",
			prepare: func(req *domain.RecoveryRequest) {
				req.Cancel(testNow, "")
			},
			wantErr: true,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := newRecoveryRequest(t, 1)
			tt.prepare(req)

			err := req.Cancel(testNow, "lost guardian")
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
				return
			}
			require.NoError(t, err)
			require.Equal(t, domain.RecoveryStatusCancelled, req.Status)
			require.Equal(t, "lost guardian", req.CancelReason)
			require.False(t, req.IsOpen())
		})
	}
}

func TestRecoveryRequestExpire(t *testing.T) {
	req := newRecoveryRequest(t, 2)
	require.NoError(t, req.Expire())
	require.Equal(t, domain.RecoveryStatusExpired, req.Status)

	_, err := req.Approve(guardianA)
	require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)

	approved := newRecoveryRequest(t, 1)
	_, err = approved.Approve(guardianA)
	require.NoError(t, err)
	err = approved.Expire()
	require.ErrorIs(t, err, domain.ErrRecoveryInvalidState)
}

func newRecoveryRequest(t *testing.T, threshold int) *domain.RecoveryRequest {
	req, err := domain.NewRecoveryRequest(
		"id", testAccount, guardians, threshold, testNow, 48*time.Hour, 0,
	)
	require.NoError(t, err)
	return req
}
