package ports

import "github.com/tdex-network/aawalletd/internal/core/domain"

// RepoManager gives access to every repository of the core.
type RepoManager interface {
	AccountRepository() domain.AccountRepository
	SessionKeyRepository() domain.SessionKeyRepository
	RecoveryRepository() domain.RecoveryRepository
	OperationRepository() domain.OperationRepository

	Close()
}
