package application

import (
	"context"
	"time"

	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/application/recovery"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type InitiateRecoveryArgs = recovery.InitiateArgs

type RecoveryService interface {
	Initiate(
		ctx context.Context, args InitiateRecoveryArgs,
	) (*domain.RecoveryRequest, error)
	Approve(ctx context.Context, id, guardian string) (*domain.RecoveryRequest, error)
	Execute(ctx context.Context, id string) (*domain.RecoveryRequest, error)
	Cancel(ctx context.Context, id, reason string) (*domain.RecoveryRequest, error)
	Status(ctx context.Context, id string) (*domain.RecoveryRequest, error)
	ListForAccount(
		ctx context.Context, accountAddress string,
	) ([]domain.RecoveryRequest, error)
	ExpireStale(ctx context.Context) (int, error)
}

func NewRecoveryService(
	pubsubSvc PubSubService, repoManager ports.RepoManager,
	clock ports.Clock, ids ports.IDGenerator, delay, maxPending time.Duration,
) (RecoveryService, error) {
	p := pubsubSvc.(*pubsub.Service)
	return recovery.NewService(p, repoManager, clock, ids, delay, maxPending)
}
