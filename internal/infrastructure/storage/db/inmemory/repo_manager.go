package inmemory

import (
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type repoManager struct {
	accountRepository    domain.AccountRepository
	sessionKeyRepository domain.SessionKeyRepository
	recoveryRepository   domain.RecoveryRepository
	operationRepository  domain.OperationRepository
}

// NewRepoManager returns a RepoManager keeping everything in memory.
func NewRepoManager() ports.RepoManager {
	return &repoManager{
		accountRepository:    NewAccountRepositoryImpl(),
		sessionKeyRepository: NewSessionKeyRepositoryImpl(),
		recoveryRepository:   NewRecoveryRepositoryImpl(),
		operationRepository:  NewOperationRepositoryImpl(),
	}
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) SessionKeyRepository() domain.SessionKeyRepository {
	return r.sessionKeyRepository
}

func (r *repoManager) RecoveryRepository() domain.RecoveryRepository {
	return r.recoveryRepository
}

func (r *repoManager) OperationRepository() domain.OperationRepository {
	return r.operationRepository
}

func (r *repoManager) Close() {}
