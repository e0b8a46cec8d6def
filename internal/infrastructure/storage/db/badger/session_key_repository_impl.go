package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type sessionKeyRepositoryImpl struct {
	store *badgerhold.Store
}

// NewSessionKeyRepositoryImpl returns a badger SessionKeyRepository
// implementation.
func NewSessionKeyRepositoryImpl(store *badgerhold.Store) domain.SessionKeyRepository {
	return &sessionKeyRepositoryImpl{store}
}

func (r *sessionKeyRepositoryImpl) AddSessionKey(
	_ context.Context, key *domain.SessionKey,
) error {
	if err := r.store.Insert(key.ID, key); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrSessionKeyAlreadyExists
		}
		return err
	}
	return nil
}

func (r *sessionKeyRepositoryImpl) GetSessionKey(
	_ context.Context, id string,
) (*domain.SessionKey, error) {
	var key domain.SessionKey
	if err := r.store.Get(id, &key); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrSessionKeyNotFound
		}
		return nil, err
	}
	return withSpent(&key), nil
}

func (r *sessionKeyRepositoryImpl) GetSessionKeysForAccount(
	_ context.Context, accountAddress string,
) ([]domain.SessionKey, error) {
	var keys []domain.SessionKey
	query := badgerhold.Where("AccountAddress").Eq(accountAddress)
	if err := r.store.Find(&keys, query); err != nil {
		return nil, err
	}
	for i := range keys {
		withSpent(&keys[i])
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
	return keys, nil
}

func (r *sessionKeyRepositoryImpl) UpdateSessionKey(
	_ context.Context,
	id string,
	updateFn func(key *domain.SessionKey) (*domain.SessionKey, error),
) error {
	return updateWithRetry(r.store, func(tx *badger.Txn) error {
		var key domain.SessionKey
		if err := r.store.TxGet(tx, id, &key); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrSessionKeyNotFound
			}
			return err
		}

		updatedKey, err := updateFn(withSpent(&key))
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, updatedKey)
	})
}

// gob decodes empty maps as nil.
func withSpent(key *domain.SessionKey) *domain.SessionKey {
	if key.Spent == nil {
		key.Spent = make(map[string]string)
	}
	return key
}
