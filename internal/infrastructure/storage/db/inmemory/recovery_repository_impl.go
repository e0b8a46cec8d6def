package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
)

type recoveryRepositoryImpl struct {
	requests          map[string]domain.RecoveryRequest
	requestsByAccount map[string][]string
	lock              *sync.RWMutex
	keyLock           *keymutex.KeyMutex
}

// NewRecoveryRepositoryImpl returns a new inmemory RecoveryRepository
// implementation.
func NewRecoveryRepositoryImpl() domain.RecoveryRepository {
	return &recoveryRepositoryImpl{
		requests:          make(map[string]domain.RecoveryRequest),
		requestsByAccount: make(map[string][]string),
		lock:              &sync.RWMutex{},
		keyLock:           keymutex.New(),
	}
}

func (r *recoveryRepositoryImpl) AddRecoveryRequest(
	_ context.Context, req *domain.RecoveryRequest,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.requests[req.ID]; ok {
		return domain.ErrRecoveryAlreadyExists
	}
	r.requests[req.ID] = copyRecoveryRequest(*req)
	r.requestsByAccount[req.AccountAddress] = append(
		r.requestsByAccount[req.AccountAddress], req.ID,
	)
	return nil
}

func (r *recoveryRepositoryImpl) GetRecoveryRequest(
	_ context.Context, id string,
) (*domain.RecoveryRequest, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getRecoveryRequest(id)
}

func (r *recoveryRepositoryImpl) GetRecoveryRequestsForAccount(
	_ context.Context, accountAddress string,
) ([]domain.RecoveryRequest, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := r.requestsByAccount[accountAddress]
	reqs := make([]domain.RecoveryRequest, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, copyRecoveryRequest(r.requests[id]))
	}
	sortRecoveryRequests(reqs)
	return reqs, nil
}

func (r *recoveryRepositoryImpl) GetRecoveryRequestsByStatus(
	_ context.Context, status domain.RecoveryStatus,
) ([]domain.RecoveryRequest, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	reqs := make([]domain.RecoveryRequest, 0)
	for _, req := range r.requests {
		if req.Status == status {
			reqs = append(reqs, copyRecoveryRequest(req))
		}
	}
	sortRecoveryRequests(reqs)
	return reqs, nil
}

func (r *recoveryRepositoryImpl) UpdateRecoveryRequest(
	_ context.Context,
	id string,
	updateFn func(req *domain.RecoveryRequest) (*domain.RecoveryRequest, error),
) error {
	r.keyLock.Lock(id)
	defer r.keyLock.Unlock(id)

	r.lock.RLock()
	req, err := r.getRecoveryRequest(id)
	r.lock.RUnlock()
	if err != nil {
		return err
	}

	updatedReq, err := updateFn(req)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.requests[id] = copyRecoveryRequest(*updatedReq)
	return nil
}

func (r *recoveryRepositoryImpl) getRecoveryRequest(
	id string,
) (*domain.RecoveryRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRecoveryNotFound
	}
	req = copyRecoveryRequest(req)
	return &req, nil
}

func sortRecoveryRequests(reqs []domain.RecoveryRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
