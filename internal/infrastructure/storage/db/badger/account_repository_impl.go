package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type accountRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAccountRepositoryImpl returns a badger AccountRepository implementation.
func NewAccountRepositoryImpl(store *badgerhold.Store) domain.AccountRepository {
	return &accountRepositoryImpl{store}
}

func (r *accountRepositoryImpl) AddAccount(
	_ context.Context, account *domain.SmartAccount,
) error {
	if err := r.store.Insert(account.Address, account); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrAccountAlreadyExists
		}
		return err
	}
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, address string,
) (*domain.SmartAccount, error) {
	var account domain.SmartAccount
	if err := r.store.Get(address, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepositoryImpl) GetAccountsByOwner(
	_ context.Context, ownerID string,
) ([]domain.SmartAccount, error) {
	var accounts []domain.SmartAccount
	query := badgerhold.Where("OwnerID").Eq(ownerID)
	if err := r.store.Find(&accounts, query); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context,
	address string,
	updateFn func(account *domain.SmartAccount) (*domain.SmartAccount, error),
) error {
	return updateWithRetry(r.store, func(tx *badger.Txn) error {
		var account domain.SmartAccount
		if err := r.store.TxGet(tx, address, &account); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrAccountNotFound
			}
			return err
		}

		updatedAccount, err := updateFn(&account)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, address, updatedAccount)
	})
}
