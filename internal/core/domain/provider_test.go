package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

func TestProviderConfigValidate(t *testing.T) {
	bundler, err := domain.NewBundlerProvider(
		"alchemy", "Alchemy", "", []int64{1, 137}, domain.ReliabilityHigh,
		true, true, domain.BundlerCapabilities{SupportsUserOpHash: true},
	)
	require.NoError(t, err)
	require.True(t, bundler.SupportsChain(137))
	require.False(t, bundler.SupportsChain(10))

	paymaster, err := domain.NewPaymasterProvider(
		"pimlico", "Pimlico", "", []int64{1}, domain.ReliabilityMedium,
		false, true, domain.PaymasterCapabilities{Sponsorship: domain.SponsorshipFull},
	)
	require.NoError(t, err)
	require.True(t, paymaster.SponsorsGas())

	tests := []struct {
		name        string
		provider    domain.ProviderConfig
		expectedErr error
	}{
		{
			name: "missing_id",
			provider: domain.ProviderConfig{
				Kind: domain.ProviderKindBundler, SupportedChains: []int64{1},
				Reliability: domain.ReliabilityLow, Bundler: &domain.BundlerCapabilities{},
			},
			expectedErr: domain.ErrProviderMissingID,
		},
		{
			name: "no_chains",
			provider: domain.ProviderConfig{
				ID: "p", Kind: domain.ProviderKindBundler,
				Reliability: domain.ReliabilityLow, Bundler: &domain.BundlerCapabilities{},
			},
			expectedErr: domain.ErrProviderNoChains,
		},
		{
			name: "invalid_reliability",
			provider: domain.ProviderConfig{
				ID: "p", Kind: domain.ProviderKindBundler, SupportedChains: []int64{1},
				Reliability: "great", Bundler: &domain.BundlerCapabilities{},
			},
			expectedErr: domain.ErrProviderInvalidReliability,
		},
		{
			name: "bundler_with_paymaster_capabilities",
			provider: domain.ProviderConfig{
				ID: "p", Kind: domain.ProviderKindBundler, SupportedChains: []int64{1},
				Reliability: domain.ReliabilityLow,
				Paymaster:   &domain.PaymasterCapabilities{},
			},
			expectedErr: domain.ErrProviderMissingCapabilities,
		},
		{
			name: "paymaster_with_both_capabilities",
			provider: domain.ProviderConfig{
				ID: "p", Kind: domain.ProviderKindPaymaster, SupportedChains: []int64{1},
				Reliability: domain.ReliabilityLow,
				Bundler:     &domain.BundlerCapabilities{},
				Paymaster:   &domain.PaymasterCapabilities{},
			},
			expectedErr: domain.ErrProviderMissingCapabilities,
		},
		{
			name: "unknown_kind",
			provider: domain.ProviderConfig{
				ID: "p", Kind: "relayer", SupportedChains: []int64{1},
				Reliability: domain.ReliabilityLow,
			},
			expectedErr: domain.ErrProviderInvalidKind,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.provider.Validate(), tt.expectedErr)
		})
	}
}

func TestReliabilityRank(t *testing.T) {
	require.Less(t, domain.ReliabilityHigh.Rank(), domain.ReliabilityMedium.Rank())
	require.Less(t, domain.ReliabilityMedium.Rank(), domain.ReliabilityLow.Rank())
	require.Less(t, domain.ReliabilityLow.Rank(), domain.Reliability("unknown").Rank())
}
