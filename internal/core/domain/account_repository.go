package domain

import "context"

// AccountRepository is the abstraction for any kind of database intended to
// persist SmartAccounts.
type AccountRepository interface {
	// AddAccount persists a new account. It returns ErrAccountAlreadyExists if
	// an account with the same address is already stored.
	AddAccount(ctx context.Context, account *SmartAccount) error
	// GetAccount returns the account identified by the given address.
	GetAccount(ctx context.Context, address string) (*SmartAccount, error)
	// GetAccountsByOwner returns all accounts owned by the given user.
	GetAccountsByOwner(ctx context.Context, ownerID string) ([]SmartAccount, error)
	// UpdateAccount atomically applies updateFn to the stored account and
	// persists the result.
	UpdateAccount(
		ctx context.Context,
		address string,
		updateFn func(account *SmartAccount) (*SmartAccount, error),
	) error
}
