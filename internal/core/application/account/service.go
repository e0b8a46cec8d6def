package account

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

// Service manages the SmartAccount records. Accounts are created lazily the
// first time they are referenced and are never deleted.
type Service struct {
	repoManager ports.RepoManager
	directory   ports.AccountDirectory
	chain       ports.ChainReader
	clock       ports.Clock
	chainID     int64
}

// NewService returns an account service. The directory and the chain reader
// are optional: without them Resolve and Refresh are not available.
func NewService(
	repoManager ports.RepoManager,
	directory ports.AccountDirectory,
	chain ports.ChainReader,
	clock ports.Clock,
	chainID int64,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if chainID <= 0 {
		return nil, fmt.Errorf("chain id must be positive")
	}
	return &Service{repoManager, directory, chain, clock, chainID}, nil
}

func (s *Service) ChainID() int64 {
	return s.chainID
}

// Resolve looks up the account address of the given user in the directory
// and returns its record, creating it on first use.
func (s *Service) Resolve(
	ctx context.Context, userID string,
) (*domain.SmartAccount, error) {
	if s.directory == nil {
		return nil, fmt.Errorf("account directory is not configured")
	}
	address, err := s.directory.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ensure(ctx, address, userID)
}

// Get returns the stored account or ErrAccountNotFound.
func (s *Service) Get(
	ctx context.Context, address string,
) (*domain.SmartAccount, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.repoManager.AccountRepository().GetAccount(ctx, addr)
}

// Ensure returns the account with the given address, creating it if missing.
func (s *Service) Ensure(
	ctx context.Context, address string,
) (*domain.SmartAccount, error) {
	return s.ensure(ctx, address, "")
}

// ReserveNonce atomically returns the next nonce of the account and
// increments the stored one.
func (s *Service) ReserveNonce(ctx context.Context, address string) (uint64, error) {
	account, err := s.Ensure(ctx, address)
	if err != nil {
		return 0, err
	}

	var nonce uint64
	if err := s.repoManager.AccountRepository().UpdateAccount(
		ctx, account.Address,
		func(a *domain.SmartAccount) (*domain.SmartAccount, error) {
			nonce = a.ReserveNonce(s.clock.Now())
			return a, nil
		},
	); err != nil {
		return 0, err
	}
	return nonce, nil
}

// Refresh updates balance and deployment status of the account with the
// values read from the chain.
func (s *Service) Refresh(
	ctx context.Context, address string,
) (*domain.SmartAccount, error) {
	if s.chain == nil {
		return nil, fmt.Errorf("chain reader is not configured")
	}
	account, err := s.Ensure(ctx, address)
	if err != nil {
		return nil, err
	}

	balance, err := s.chain.BalanceAt(ctx, account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	deployed, err := s.chain.IsDeployed(ctx, account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployment status: %w", err)
	}

	var updated *domain.SmartAccount
	if err := s.repoManager.AccountRepository().UpdateAccount(
		ctx, account.Address,
		func(a *domain.SmartAccount) (*domain.SmartAccount, error) {
			now := s.clock.Now()
			if err := a.UpdateBalance(balance.String(), now); err != nil {
				return nil, err
			}
			if deployed {
				a.MarkDeployed(now)
			}
			updated = a
			return a, nil
		},
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":  updated.Address,
		"balance":  updated.Balance,
		"deployed": updated.IsDeployed,
	}).Debug("account refreshed")
	return updated, nil
}

// ListByOwner returns the accounts resolved for the given user.
func (s *Service) ListByOwner(
	ctx context.Context, ownerID string,
) ([]domain.SmartAccount, error) {
	return s.repoManager.AccountRepository().GetAccountsByOwner(ctx, ownerID)
}

func (s *Service) ensure(
	ctx context.Context, address, ownerID string,
) (*domain.SmartAccount, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	repo := s.repoManager.AccountRepository()
	account, err := repo.GetAccount(ctx, addr)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	account, err = domain.NewSmartAccount(addr, ownerID, s.chainID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := repo.AddAccount(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountAlreadyExists) {
			return repo.GetAccount(ctx, addr)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": account.Address,
		"owner":   ownerID,
	}).Info("new smart account")
	return account, nil
}
