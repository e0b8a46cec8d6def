package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type operationRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOperationRepositoryImpl returns a badger OperationRepository
// implementation. Operations are keyed by hash.
func NewOperationRepositoryImpl(store *badgerhold.Store) domain.OperationRepository {
	return &operationRepositoryImpl{store}
}

func (r *operationRepositoryImpl) AddOperation(
	_ context.Context, op *domain.Operation,
) error {
	if err := r.store.Insert(op.Hash, op); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrOperationAlreadyExists
		}
		return err
	}
	return nil
}

func (r *operationRepositoryImpl) GetOperationByHash(
	_ context.Context, hash string,
) (*domain.Operation, error) {
	var op domain.Operation
	if err := r.store.Get(hash, &op); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (r *operationRepositoryImpl) GetOperationsForAccount(
	_ context.Context, accountAddress string,
) ([]domain.Operation, error) {
	query := badgerhold.Where("AccountAddress").Eq(accountAddress)
	return r.findOperations(query)
}

func (r *operationRepositoryImpl) GetOperationsByStatus(
	_ context.Context, status domain.OperationStatus,
) ([]domain.Operation, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findOperations(query)
}

func (r *operationRepositoryImpl) GetRetriesOf(
	_ context.Context, hash string,
) ([]domain.Operation, error) {
	query := badgerhold.Where("RetryOf").Eq(hash)
	return r.findOperations(query)
}

func (r *operationRepositoryImpl) UpdateOperation(
	_ context.Context,
	hash string,
	updateFn func(op *domain.Operation) (*domain.Operation, error),
) error {
	return updateWithRetry(r.store, func(tx *badger.Txn) error {
		var op domain.Operation
		if err := r.store.TxGet(tx, hash, &op); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrOperationNotFound
			}
			return err
		}

		updatedOp, err := updateFn(&op)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, hash, updatedOp)
	})
}

func (r *operationRepositoryImpl) findOperations(
	query *badgerhold.Query,
) ([]domain.Operation, error) {
	var ops []domain.Operation
	if err := r.store.Find(&ops, query); err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].Hash < ops[j].Hash
		}
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
	return ops, nil
}
