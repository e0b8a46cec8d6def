package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
)

type sessionKeyRepositoryImpl struct {
	keys          map[string]domain.SessionKey
	keysByAccount map[string][]string
	lock          *sync.RWMutex
	keyLock       *keymutex.KeyMutex
}

// NewSessionKeyRepositoryImpl returns a new inmemory SessionKeyRepository
// implementation.
func NewSessionKeyRepositoryImpl() domain.SessionKeyRepository {
	return &sessionKeyRepositoryImpl{
		keys:          make(map[string]domain.SessionKey),
		keysByAccount: make(map[string][]string),
		lock:          &sync.RWMutex{},
		keyLock:       keymutex.New(),
	}
}

func (r *sessionKeyRepositoryImpl) AddSessionKey(
	_ context.Context, key *domain.SessionKey,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.keys[key.ID]; ok {
		return domain.ErrSessionKeyAlreadyExists
	}
	r.keys[key.ID] = copySessionKey(*key)
	r.keysByAccount[key.AccountAddress] = append(
		r.keysByAccount[key.AccountAddress], key.ID,
	)
	return nil
}

func (r *sessionKeyRepositoryImpl) GetSessionKey(
	_ context.Context, id string,
) (*domain.SessionKey, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getSessionKey(id)
}

func (r *sessionKeyRepositoryImpl) GetSessionKeysForAccount(
	_ context.Context, accountAddress string,
) ([]domain.SessionKey, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := r.keysByAccount[accountAddress]
	keys := make([]domain.SessionKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, copySessionKey(r.keys[id]))
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
	r.keyLock.Lock(id)
	defer r.keyLock.Unlock(id)

	r.lock.RLock()
	key, err := r.getSessionKey(id)
	r.lock.RUnlock()
	if err != nil {
		return err
	}

	updatedKey, err := updateFn(key)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.keys[id] = copySessionKey(*updatedKey)
	return nil
}

func (r *sessionKeyRepositoryImpl) getSessionKey(
	id string,
) (*domain.SessionKey, error) {
	key, ok := r.keys[id]
	if !ok {
		return nil, domain.ErrSessionKeyNotFound
	}
	key = copySessionKey(key)
	return &key, nil
}
