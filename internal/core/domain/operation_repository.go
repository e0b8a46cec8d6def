package domain

import "context"

// OperationRepository is the abstraction for any kind of database intended to
// persist Operations.
type OperationRepository interface {
	// AddOperation persists a new operation. The hash must be unique.
	AddOperation(ctx context.Context, op *Operation) error
	// GetOperationByHash returns the operation identified by hash.
	GetOperationByHash(ctx context.Context, hash string) (*Operation, error)
	// GetOperationsForAccount returns all operations of the given account
	// ordered by creation time.
	GetOperationsForAccount(
		ctx context.Context, accountAddress string,
	) ([]Operation, error)
	// GetOperationsByStatus returns all operations with the given status.
	GetOperationsByStatus(
		ctx context.Context, status OperationStatus,
	) ([]Operation, error)
	// GetRetriesOf returns the operations that retried the given one.
	GetRetriesOf(ctx context.Context, hash string) ([]Operation, error)
	// UpdateOperation atomically applies updateFn to the stored operation and
	// persists the result.
	UpdateOperation(
		ctx context.Context,
		hash string,
		updateFn func(op *Operation) (*Operation, error),
	) error
}
