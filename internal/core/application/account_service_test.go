package application_test

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/internal/infrastructure/clock"
	"github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/inmemory"
)

func newAccountService(
	t *testing.T, directory ports.AccountDirectory, chain ports.ChainReader,
) application.AccountService {
	t.Helper()

	svc, err := application.NewAccountService(
		inmemory.NewRepoManager(), directory, chain, clock.NewFake(startTime), chainID,
	)
	require.NoError(t, err)
	return svc
}

func TestResolveAccount(t *testing.T) {
	directory := &mockDirectory{}
	directory.On("Resolve", mock.Anything, "alice").Return(accountAddress, nil)
	directory.On("Resolve", mock.Anything, "bob").Return(
		"", fmt.Errorf("%w: bob", domain.ErrAccountNotFound),
	)

	svc := newAccountService(t, directory, nil)

	account, err := svc.Resolve(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, accountAddress, account.Address)
	require.Equal(t, "alice", account.OwnerID)
	require.Equal(t, chainID, account.ChainID)
	require.False(t, account.IsDeployed)
	require.Zero(t, account.Nonce)
	require.Equal(t, "0", account.Balance)

	again, err := svc.Resolve(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, account.CreatedAt, again.CreatedAt)

	owned, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, owned, 1)

	_, err = svc.Resolve(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.Equal(t, application.KindNotFound, application.KindOf(err))

	directory.AssertExpectations(t)
}

func TestEnsureAccount(t *testing.T) {
	svc := newAccountService(t, nil, nil)

	_, err := svc.Get(ctx, accountAddress)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	lower := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"
	account, err := svc.Ensure(ctx, lower)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(lower).Hex(), account.Address)

	stored, err := svc.Get(ctx, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	require.Equal(t, account.Address, stored.Address)

	_, err = svc.Ensure(ctx, "0x1234")
	require.ErrorIs(t, err, domain.ErrAccountInvalidAddress)

	_, err = svc.Resolve(ctx, "alice")
	require.Error(t, err)
	_, err = svc.Refresh(ctx, accountAddress)
	require.Error(t, err)
}

func TestRefreshAccount(t *testing.T) {
	chain := &mockChainReader{}
	chain.On("BalanceAt", mock.Anything, accountAddress).
		Return(big.NewInt(1000000000000000000), nil).Once()
	chain.On("IsDeployed", mock.Anything, accountAddress).Return(false, nil).Once()
	chain.On("BalanceAt", mock.Anything, accountAddress).
		Return(big.NewInt(5), nil).Once()
	chain.On("IsDeployed", mock.Anything, accountAddress).Return(true, nil).Once()
	chain.On("BalanceAt", mock.Anything, accountAddress).
		Return(nil, errors.New("connection refused")).Once()

	svc := newAccountService(t, nil, chain)

	account, err := svc.Refresh(ctx, accountAddress)
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", account.Balance)
	require.False(t, account.IsDeployed)

	account, err = svc.Refresh(ctx, accountAddress)
	require.NoError(t, err)
	require.Equal(t, "5", account.Balance)
	require.True(t, account.IsDeployed)

	_, err = svc.Refresh(ctx, accountAddress)
	require.Error(t, err)

	stored, err := svc.Get(ctx, accountAddress)
	require.NoError(t, err)
	require.Equal(t, "5", stored.Balance)
	require.True(t, stored.IsDeployed)

	chain.AssertExpectations(t)
}
