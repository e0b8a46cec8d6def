package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

const (
	testAccount  = "0x1111111111111111111111111111111111111111"
	testTarget   = "0x2222222222222222222222222222222222222222"
	testGuardian = "0x3333333333333333333333333333333333333333"
)

func runCLICommand(t *testing.T, datadir string, args ...string) error {
	app := newApp()
	return app.Run(append([]string{"aawallet", "--datadir", datadir}, args...))
}

func TestCLI(t *testing.T) {
	datadir := t.TempDir()

	t.Run("session keys", func(t *testing.T) {
		err := runCLICommand(t, datadir,
			"session", "create", "--account", testAccount,
			"--permission", testTarget+":transfer|approve:1000",
		)
		require.NoError(t, err)

		err = runCLICommand(t, datadir, "session", "list", "--account", testAccount)
		require.NoError(t, err)

		err = runCLICommand(t, datadir,
			"session", "revoke", "--account", testAccount, "--id", "session_0",
		)
		require.ErrorIs(t, err, domain.ErrSessionKeyNotFound)
	})

	t.Run("recovery", func(t *testing.T) {
		err := runCLICommand(t, datadir,
			"recovery", "initiate", "--account", testAccount,
			"--guardian", testGuardian,
		)
		require.ErrorIs(t, err, domain.ErrRecoveryMissingRequiredFields)

		err = runCLICommand(t, datadir,
			"recovery", "initiate", "--account", testAccount,
			"--guardian", testGuardian, "--threshold", "1",
		)
		require.NoError(t, err)

		err = runCLICommand(t, datadir, "recovery", "list", "--account", testAccount)
		require.NoError(t, err)
	})

	t.Run("relay", func(t *testing.T) {
		err := runCLICommand(t, datadir, "providers", "--kind", "bundler")
		require.NoError(t, err)

		err = runCLICommand(t, datadir,
			"tx", "estimate", "--account", testAccount, "--to", testTarget,
		)
		require.NoError(t, err)

		err = runCLICommand(t, datadir,
			"tx", "send", "--account", testAccount, "--to", testTarget,
			"--value", "1",
		)
		require.NoError(t, err)

		err = runCLICommand(t, datadir, "tx", "status", "--hash", "0xunknown")
		require.ErrorIs(t, err, domain.ErrOperationNotFound)
	})

	t.Run("invalid usage", func(t *testing.T) {
		err := runCLICommand(t, datadir, "session", "revoke")
		var usageErr *invalidUsageError
		require.True(t, errors.As(err, &usageErr))
		require.Contains(t, usageErr.missing, "--account")
	})
}

func TestParsePermission(t *testing.T) {
	tests := []struct {
		in        string
		target    string
		functions []string
		limit     string
		wantErr   bool
	}{
		{
			in:        testTarget + ":transfer",
			target:    testTarget,
			functions: []string{"transfer"},
		},
		{
			in:        testTarget + ":transfer(address,uint256)|0x095ea7b3:5",
			target:    testTarget,
			functions: []string{"transfer(address,uint256)", "0x095ea7b3"},
			limit:     "5",
		},
		{in: testTarget, wantErr: true},
		{in: testTarget + ":a:1:2", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			p, err := parsePermission(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.target, p.Target)
			require.Equal(t, tt.functions, p.AllowedFunctions)
			require.Equal(t, tt.limit, p.SpendingLimit)
		})
	}
}
