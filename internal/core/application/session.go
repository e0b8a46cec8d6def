package application

import (
	"context"
	"time"

	"github.com/tdex-network/aawalletd/internal/core/application/account"
	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/application/session"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type (
	CreateSessionKeyArgs = session.CreateArgs
	PermissionArgs       = session.PermissionArgs
)

type SessionKeyService interface {
	Create(ctx context.Context, args CreateSessionKeyArgs) (*domain.SessionKey, error)
	Get(ctx context.Context, accountAddress, id string) (*domain.SessionKey, error)
	List(ctx context.Context, accountAddress string) ([]domain.SessionKey, error)
	Revoke(ctx context.Context, accountAddress, id string) error
	Authorize(
		ctx context.Context, accountAddress, id, target, function, amount string,
	) error
	Check(
		ctx context.Context, accountAddress, id, target, function, amount string,
	) error
	Release(ctx context.Context, accountAddress, id, target, amount string) error
}

func NewSessionKeyService(
	accountSvc AccountService, pubsubSvc PubSubService,
	repoManager ports.RepoManager, clock ports.Clock, ids ports.IDGenerator,
	ttl time.Duration,
) (SessionKeyService, error) {
	a := accountSvc.(*account.Service)
	p := pubsubSvc.(*pubsub.Service)
	return session.NewService(a, p, repoManager, clock, ids, ttl)
}
