package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
)

type accountRepositoryImpl struct {
	accounts map[string]domain.SmartAccount
	lock     *sync.RWMutex
	keyLock  *keymutex.KeyMutex
}

// NewAccountRepositoryImpl returns a new inmemory AccountRepository
// implementation.
func NewAccountRepositoryImpl() domain.AccountRepository {
	return &accountRepositoryImpl{
		accounts: make(map[string]domain.SmartAccount),
		lock:     &sync.RWMutex{},
		keyLock:  keymutex.New(),
	}
}

func (r *accountRepositoryImpl) AddAccount(
	_ context.Context, account *domain.SmartAccount,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.accounts[account.Address]; ok {
		return domain.ErrAccountAlreadyExists
	}
	r.accounts[account.Address] = *account
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, address string,
) (*domain.SmartAccount, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getAccount(address)
}

func (r *accountRepositoryImpl) GetAccountsByOwner(
	_ context.Context, ownerID string,
) ([]domain.SmartAccount, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	accounts := make([]domain.SmartAccount, 0)
	for _, a := range r.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	_ context.Context,
	address string,
	updateFn func(account *domain.SmartAccount) (*domain.SmartAccount, error),
) error {
	r.keyLock.Lock(address)
	defer r.keyLock.Unlock(address)

	r.lock.RLock()
	account, err := r.getAccount(address)
	r.lock.RUnlock()
	if err != nil {
		return err
	}

	updatedAccount, err := updateFn(account)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.accounts[address] = *updatedAccount
	return nil
}

func (r *accountRepositoryImpl) getAccount(
	address string,
) (*domain.SmartAccount, error) {
	account, ok := r.accounts[address]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}
