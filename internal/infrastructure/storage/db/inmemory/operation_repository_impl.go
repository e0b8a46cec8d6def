package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
)

type operationRepositoryImpl struct {
	operations          map[string]domain.Operation
	operationsByAccount map[string][]string
	lock                *sync.RWMutex
	keyLock             *keymutex.KeyMutex
}

// NewOperationRepositoryImpl returns a new inmemory OperationRepository
// implementation.
func NewOperationRepositoryImpl() domain.OperationRepository {
	return &operationRepositoryImpl{
		operations:          make(map[string]domain.Operation),
		operationsByAccount: make(map[string][]string),
		lock:                &sync.RWMutex{},
		keyLock:             keymutex.New(),
	}
}

func (r *operationRepositoryImpl) AddOperation(
	_ context.Context, op *domain.Operation,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.operations[op.Hash]; ok {
		return domain.ErrOperationAlreadyExists
	}
	r.operations[op.Hash] = *op
	r.operationsByAccount[op.AccountAddress] = append(
		r.operationsByAccount[op.AccountAddress], op.Hash,
	)
	return nil
}

func (r *operationRepositoryImpl) GetOperationByHash(
	_ context.Context, hash string,
) (*domain.Operation, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getOperation(hash)
}

func (r *operationRepositoryImpl) GetOperationsForAccount(
	_ context.Context, accountAddress string,
) ([]domain.Operation, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	hashes := r.operationsByAccount[accountAddress]
	ops := make([]domain.Operation, 0, len(hashes))
	for _, hash := range hashes {
		ops = append(ops, r.operations[hash])
	}
	sortOperations(ops)
	return ops, nil
}

func (r *operationRepositoryImpl) GetOperationsByStatus(
	_ context.Context, status domain.OperationStatus,
) ([]domain.Operation, error) {
	return r.findOperations(func(op domain.Operation) bool {
		return op.Status == status
	}), nil
}

func (r *operationRepositoryImpl) GetRetriesOf(
	_ context.Context, hash string,
) ([]domain.Operation, error) {
	return r.findOperations(func(op domain.Operation) bool {
		return op.RetryOf == hash
	}), nil
}

func (r *operationRepositoryImpl) UpdateOperation(
	_ context.Context,
	hash string,
	updateFn func(op *domain.Operation) (*domain.Operation, error),
) error {
	r.keyLock.Lock(hash)
	defer r.keyLock.Unlock(hash)

	r.lock.RLock()
	op, err := r.getOperation(hash)
	r.lock.RUnlock()
	if err != nil {
		return err
	}

	updatedOp, err := updateFn(op)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.operations[hash] = *updatedOp
	return nil
}

func (r *operationRepositoryImpl) getOperation(
	hash string,
) (*domain.Operation, error) {
	op, ok := r.operations[hash]
	if !ok {
		return nil, domain.ErrOperationNotFound
	}
	return &op, nil
}

func (r *operationRepositoryImpl) findOperations(
	filter func(op domain.Operation) bool,
) []domain.Operation {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ops := make([]domain.Operation, 0)
	for _, op := range r.operations {
		if filter(op) {
			ops = append(ops, op)
		}
	}
	sortOperations(ops)
	return ops
}

func sortOperations(ops []domain.Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].Hash < ops[j].Hash
		}
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
}
