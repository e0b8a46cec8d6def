package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type recoveryRepositoryImpl struct {
	store *badgerhold.Store
}

// NewRecoveryRepositoryImpl returns a badger RecoveryRepository
// implementation.
func NewRecoveryRepositoryImpl(store *badgerhold.Store) domain.RecoveryRepository {
	return &recoveryRepositoryImpl{store}
}

func (r *recoveryRepositoryImpl) AddRecoveryRequest(
	_ context.Context, req *domain.RecoveryRequest,
) error {
	if err := r.store.Insert(req.ID, req); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrRecoveryAlreadyExists
		}
		return err
	}
	return nil
}

func (r *recoveryRepositoryImpl) GetRecoveryRequest(
	_ context.Context, id string,
) (*domain.RecoveryRequest, error) {
	var req domain.RecoveryRequest
	if err := r.store.Get(id, &req); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrRecoveryNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *recoveryRepositoryImpl) GetRecoveryRequestsForAccount(
	_ context.Context, accountAddress string,
) ([]domain.RecoveryRequest, error) {
	query := badgerhold.Where("AccountAddress").Eq(accountAddress)
	return r.findRecoveryRequests(query)
}

func (r *recoveryRepositoryImpl) GetRecoveryRequestsByStatus(
	_ context.Context, status domain.RecoveryStatus,
) ([]domain.RecoveryRequest, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findRecoveryRequests(query)
}

func (r *recoveryRepositoryImpl) UpdateRecoveryRequest(
	_ context.Context,
	id string,
	updateFn func(req *domain.RecoveryRequest) (*domain.RecoveryRequest, error),
) error {
	return updateWithRetry(r.store, func(tx *badger.Txn) error {
		var req domain.RecoveryRequest
		if err := r.store.TxGet(tx, id, &req); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrRecoveryNotFound
			}
			return err
		}

		updatedReq, err := updateFn(&req)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, updatedReq)
	})
}

func (r *recoveryRepositoryImpl) findRecoveryRequests(
	query *badgerhold.Query,
) ([]domain.RecoveryRequest, error) {
	var reqs []domain.RecoveryRequest
	if err := r.store.Find(&reqs, query); err != nil {
		return nil, err
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
	return reqs, nil
}
