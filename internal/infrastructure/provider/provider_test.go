package provider_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

const providersYAML = `
providers:
  - id: acme-bundler
    kind: bundler
    display_name: Acme
    endpoint: https://bundler.acme.test/rpc
    chains: [1, 10]
    reliability: high
    recommended: true
    supports_user_op_hash: true
  - id: acme-paymaster
    kind: paymaster
    display_name: Acme Paymaster
    endpoint: https://paymaster.acme.test/rpc
    chains: [1]
    reliability: medium
    sponsorship: partial
`

func TestBuiltinProviders(t *testing.T) {
	providers, err := provider.NewStaticSource(provider.BuiltinProviders()).
		Providers(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 4)

	for _, p := range providers {
		require.NoError(t, p.Validate(), p.ID)
		require.True(t, p.SupportsChain(provider.DevChainID))
	}
}

func TestFileSource(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, "providers.yaml", providersYAML)

		providers, err := provider.NewFileSource(path).Providers(context.Background())
		require.NoError(t, err)
		require.Len(t, providers, 2)

		bundler := providers[0]
		require.Equal(t, "acme-bundler", bundler.ID)
		require.Equal(t, domain.ProviderKindBundler, bundler.Kind)
		require.Equal(t, []int64{1, 10}, bundler.SupportedChains)
		require.True(t, bundler.Bundler.SupportsUserOpHash)
		require.Nil(t, bundler.Paymaster)

		paymaster := providers[1]
		require.Equal(t, domain.ProviderKindPaymaster, paymaster.Kind)
		require.Equal(t, domain.SponsorshipPartial, paymaster.Paymaster.Sponsorship)
		require.True(t, paymaster.SponsorsGas())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			err     error
		}{
			{
				name: "unknown kind",
				content: `
providers:
  - id: x
    kind: relayer
    chains: [1]
    reliability: high
`,
				err: domain.ErrProviderInvalidKind,
			},
			{
				name: "no chains",
				content: `
providers:
  - id: x
    kind: bundler
    reliability: high
`,
				err: domain.ErrProviderNoChains,
			},
			{
				name: "bad reliability",
				content: `
providers:
  - id: x
    kind: paymaster
    chains: [1]
    reliability: great
`,
				err: domain.ErrProviderInvalidReliability,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				path := writeFile(t, "providers.yaml", tt.content)
				_, err := provider.NewFileSource(path).Providers(context.Background())
				require.ErrorIs(t, err, tt.err)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")
		_, err := provider.NewFileSource(path).Providers(context.Background())
		require.Error(t, err)
	})
}

func TestClients(t *testing.T) {
	_, err := provider.NewClients(provider.Options{})
	require.Error(t, err)

	clients, err := provider.NewClients(provider.Options{
		ChainID:    provider.DevChainID,
		EntryPoint: common.HexToAddress(userop.DefaultEntryPoint),
	})
	require.NoError(t, err)
	defer clients.Close()

	providers := provider.BuiltinProviders()
	bundlerCfg, paymasterCfg := providers[0], providers[2]

	bundler, err := clients.Bundler(bundlerCfg)
	require.NoError(t, err)
	again, err := clients.Bundler(bundlerCfg)
	require.NoError(t, err)
	require.Same(t, bundler, again)

	sim, ok := clients.SimulatedBundler(bundlerCfg.ID)
	require.True(t, ok)
	require.Same(t, bundler, sim)

	_, err = clients.Paymaster(bundlerCfg)
	require.ErrorIs(t, err, domain.ErrProviderInvalidKind)
	_, err = clients.Bundler(paymasterCfg)
	require.ErrorIs(t, err, domain.ErrProviderInvalidKind)

	_, err = clients.Paymaster(paymasterCfg)
	require.NoError(t, err)
	_, ok = clients.SimulatedPaymaster(paymasterCfg.ID)
	require.True(t, ok)
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
