package application_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider"
)

func newBundlerConfig(
	t *testing.T, id, name string, reliability domain.Reliability,
	recommended, popular bool, chains ...int64,
) domain.ProviderConfig {
	t.Helper()

	p, err := domain.NewBundlerProvider(
		id, name, "https://"+id+".test/rpc", chains, reliability,
		recommended, popular, domain.BundlerCapabilities{SupportsGasEstimation: true},
	)
	require.NoError(t, err)
	return *p
}

func newPaymasterConfig(
	t *testing.T, id string, sponsorship domain.Sponsorship,
	reliability domain.Reliability, chains ...int64,
) domain.ProviderConfig {
	t.Helper()

	p, err := domain.NewPaymasterProvider(
		id, id, "https://"+id+".test/rpc", chains, reliability, false, false,
		domain.PaymasterCapabilities{Sponsorship: sponsorship},
	)
	require.NoError(t, err)
	return *p
}

func TestRegistrySelect(t *testing.T) {
	providers := []domain.ProviderConfig{
		newBundlerConfig(t, "zeta", "Zeta", domain.ReliabilityLow, false, false, 1, 137),
		newBundlerConfig(t, "beta", "Beta", domain.ReliabilityHigh, false, false, 1),
		newBundlerConfig(t, "alpha", "Alpha", domain.ReliabilityHigh, false, false, 1),
		newBundlerConfig(t, "pop", "Pop", domain.ReliabilityMedium, false, true, 1),
		newBundlerConfig(t, "rec", "Rec", domain.ReliabilityLow, true, false, 1),
		newBundlerConfig(t, "recpop", "RecPop", domain.ReliabilityLow, true, true, 1),
		newPaymasterConfig(t, "full", domain.SponsorshipFull, domain.ReliabilityHigh, 1),
		newPaymasterConfig(t, "erc20", domain.SponsorshipERC20, domain.ReliabilityLow, 1, 137),
	}

	svc, err := application.NewRegistryService(ctx, provider.NewStaticSource(providers))
	require.NoError(t, err)

	tests := []struct {
		name        string
		filter      application.ProviderFilter
		expectedIDs []string
	}{
		{
			name: "bundlers by preference",
			filter: application.ProviderFilter{
				Kind: domain.ProviderKindBundler, ChainID: 1,
			},
			expectedIDs: []string{"recpop", "rec", "pop", "alpha", "beta", "zeta"},
		},
		{
			name: "bundlers by chain",
			filter: application.ProviderFilter{
				Kind: domain.ProviderKindBundler, ChainID: 137,
			},
			expectedIDs: []string{"zeta"},
		},
		{
			name: "bundlers by reliability",
			filter: application.ProviderFilter{
				Kind:           domain.ProviderKindBundler,
				ChainID:        1,
				MinReliability: domain.ReliabilityMedium,
			},
			expectedIDs: []string{"pop", "alpha", "beta"},
		},
		{
			name: "paymasters by sponsorship",
			filter: application.ProviderFilter{
				Kind:        domain.ProviderKindPaymaster,
				ChainID:     1,
				Sponsorship: domain.SponsorshipERC20,
			},
			expectedIDs: []string{"erc20"},
		},
		{
			name: "unsupported chain",
			filter: application.ProviderFilter{
				Kind: domain.ProviderKindPaymaster, ChainID: 10,
			},
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			selected := svc.Select(tt.filter)
			require.Equal(t, tt.expectedIDs, providerIDs(selected))
		})
	}

	require.Len(t, svc.List(), len(providers))
}

func TestRegistryDefault(t *testing.T) {
	env := newTestEnv(t)
	svc := env.app.RegistryService()

	bundler, err := svc.Default(domain.ProviderKindBundler, chainID)
	require.NoError(t, err)
	require.Equal(t, provider.SimulatedBundlerID, bundler.ID)

	paymaster, err := svc.Default(domain.ProviderKindPaymaster, chainID)
	require.NoError(t, err)
	require.Equal(t, provider.SimulatedPaymasterID, paymaster.ID)

	_, err = svc.Default(domain.ProviderKindBundler, 1)
	require.ErrorIs(t, err, domain.ErrProviderNotFound)

	p, err := svc.Get(provider.SimulatedManualBundlerID)
	require.NoError(t, err)
	require.Equal(t, domain.ReliabilityMedium, p.Reliability)

	_, err = svc.Get("unknown")
	require.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestRegistryRefresh(t *testing.T) {
	first := []domain.ProviderConfig{
		newBundlerConfig(t, "alpha", "Alpha", domain.ReliabilityHigh, true, false, 1),
	}
	second := []domain.ProviderConfig{
		newBundlerConfig(t, "beta", "Beta", domain.ReliabilityHigh, true, false, 1),
	}
	invalid := []domain.ProviderConfig{
		{ID: "broken", Kind: domain.ProviderKindBundler},
	}
	duplicated := []domain.ProviderConfig{second[0], second[0]}

	source := &mockProviderSource{}
	source.On("Providers", mock.Anything).Return(first, nil).Once()
	source.On("Providers", mock.Anything).Return(second, nil).Once()
	source.On("Providers", mock.Anything).Return(invalid, nil).Once()
	source.On("Providers", mock.Anything).Return(duplicated, nil).Once()
	source.On("Providers", mock.Anything).Return(nil, errors.New("file not found")).Once()

	svc, err := application.NewRegistryService(ctx, source)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, providerIDs(svc.List()))

	require.NoError(t, svc.Refresh(ctx))
	require.Equal(t, []string{"beta"}, providerIDs(svc.List()))

	// a bad table never replaces the current one.
	require.ErrorIs(t, svc.Refresh(ctx), domain.ErrProviderNoChains)
	require.Error(t, svc.Refresh(ctx))
	require.Error(t, svc.Refresh(ctx))
	require.Equal(t, []string{"beta"}, providerIDs(svc.List()))

	source.AssertExpectations(t)
}

func providerIDs(list []domain.ProviderConfig) []string {
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids
}
