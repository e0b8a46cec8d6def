package application

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application/account"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type AccountService interface {
	Resolve(ctx context.Context, userID string) (*domain.SmartAccount, error)
	Get(ctx context.Context, address string) (*domain.SmartAccount, error)
	Ensure(ctx context.Context, address string) (*domain.SmartAccount, error)
	Refresh(ctx context.Context, address string) (*domain.SmartAccount, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.SmartAccount, error)
}

func NewAccountService(
	repoManager ports.RepoManager, directory ports.AccountDirectory,
	chain ports.ChainReader, clock ports.Clock, chainID int64,
) (AccountService, error) {
	return account.NewService(repoManager, directory, chain, clock, chainID)
}
