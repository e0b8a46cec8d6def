package domain

import "context"

// RecoveryRepository is the abstraction for any kind of database intended to
// persist RecoveryRequests.
type RecoveryRepository interface {
	// AddRecoveryRequest persists a new request.
	AddRecoveryRequest(ctx context.Context, req *RecoveryRequest) error
	// GetRecoveryRequest returns the request with the given id.
	GetRecoveryRequest(ctx context.Context, id string) (*RecoveryRequest, error)
	// GetRecoveryRequestsForAccount returns all requests for the given account
	// ordered by creation time.
	GetRecoveryRequestsForAccount(
		ctx context.Context, accountAddress string,
	) ([]RecoveryRequest, error)
	// GetRecoveryRequestsByStatus returns all requests with the given status.
	GetRecoveryRequestsByStatus(
		ctx context.Context, status RecoveryStatus,
	) ([]RecoveryRequest, error)
	// UpdateRecoveryRequest atomically applies updateFn to the stored request
	// and persists the result.
	UpdateRecoveryRequest(
		ctx context.Context,
		id string,
		updateFn func(req *RecoveryRequest) (*RecoveryRequest, error),
	) error
}
