package application

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application/registry"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type ProviderFilter = registry.Filter

type RegistryService interface {
	Select(filter ProviderFilter) []domain.ProviderConfig
	Default(kind domain.ProviderKind, chainID int64) (*domain.ProviderConfig, error)
	Get(id string) (*domain.ProviderConfig, error)
	List() []domain.ProviderConfig
	Refresh(ctx context.Context) error
}

func NewRegistryService(
	ctx context.Context, source ports.ProviderSource,
) (RegistryService, error) {
	return registry.NewService(ctx, source)
}
