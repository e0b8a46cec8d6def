package application

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application/account"
	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/application/registry"
	"github.com/tdex-network/aawalletd/internal/core/application/relay"
	"github.com/tdex-network/aawalletd/internal/core/application/session"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type (
	RelayOptions = relay.Options
	EstimateArgs = relay.EstimateArgs
	SendArgs     = relay.SendArgs
	RetryArgs    = relay.RetryArgs
)

type RelayService interface {
	EstimateGas(ctx context.Context, args EstimateArgs) (*domain.GasEstimate, error)
	Send(ctx context.Context, args SendArgs) (*domain.Operation, error)
	GetStatus(ctx context.Context, hash string) (*domain.Operation, error)
	Retry(ctx context.Context, args RetryArgs) (*domain.Operation, error)
	ListOperations(
		ctx context.Context, accountAddress string,
	) ([]domain.Operation, error)
	SyncPending(ctx context.Context) (int, error)
}

func NewRelayService(
	accountSvc AccountService, sessionSvc SessionKeyService,
	registrySvc RegistryService, pubsubSvc PubSubService,
	repoManager ports.RepoManager, clients ports.ProviderClients,
	clock ports.Clock, opts RelayOptions,
) (RelayService, error) {
	a := accountSvc.(*account.Service)
	s := sessionSvc.(*session.Service)
	r := registrySvc.(*registry.Service)
	p := pubsubSvc.(*pubsub.Service)
	return relay.NewService(a, s, r, p, repoManager, clients, clock, opts)
}
