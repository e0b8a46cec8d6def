package provider

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

// DevChainID is the chain id of local development nodes, the only chain
// served by the built-in simulated providers.
const DevChainID = 31337

const (
	SimulatedBundlerID        = "simulated-bundler"
	SimulatedManualBundlerID  = "simulated-bundler-manual"
	SimulatedPaymasterID      = "simulated-paymaster"
	SimulatedERC20PaymasterID = "simulated-paymaster-erc20"
)

// BuiltinProviders returns the table of in-process simulated providers.
func BuiltinProviders() []domain.ProviderConfig {
	chains := []int64{DevChainID}
	return []domain.ProviderConfig{
		{
			ID:              SimulatedBundlerID,
			Kind:            domain.ProviderKindBundler,
			DisplayName:     "Simulated Bundler",
			Endpoint:        "sim://local",
			SupportedChains: chains,
			Reliability:     domain.ReliabilityHigh,
			Recommended:     true,
			Popular:         true,
			Bundler: &domain.BundlerCapabilities{
				SupportsUserOpHash:    true,
				SupportsGasEstimation: true,
			},
		},
		{
			ID:              SimulatedManualBundlerID,
			Kind:            domain.ProviderKindBundler,
			DisplayName:     "Simulated Bundler (manual settlement)",
			Endpoint:        "sim://local?settle=manual",
			SupportedChains: chains,
			Reliability:     domain.ReliabilityMedium,
			Bundler: &domain.BundlerCapabilities{
				SupportsGasEstimation: true,
			},
		},
		{
			ID:              SimulatedPaymasterID,
			Kind:            domain.ProviderKindPaymaster,
			DisplayName:     "Simulated Paymaster",
			Endpoint:        "sim://local",
			SupportedChains: chains,
			Reliability:     domain.ReliabilityHigh,
			Recommended:     true,
			Paymaster: &domain.PaymasterCapabilities{
				Sponsorship: domain.SponsorshipFull,
			},
		},
		{
			ID:              SimulatedERC20PaymasterID,
			Kind:            domain.ProviderKindPaymaster,
			DisplayName:     "Simulated ERC20 Paymaster",
			Endpoint:        "sim://local",
			SupportedChains: chains,
			Reliability:     domain.ReliabilityLow,
			Paymaster: &domain.PaymasterCapabilities{
				Sponsorship: domain.SponsorshipERC20,
			},
		},
	}
}

type staticSource struct {
	providers []domain.ProviderConfig
}

// NewStaticSource returns a source that always serves the given table.
func NewStaticSource(providers []domain.ProviderConfig) ports.ProviderSource {
	return staticSource{providers}
}

func (s staticSource) Providers(_ context.Context) ([]domain.ProviderConfig, error) {
	providers := make([]domain.ProviderConfig, len(s.providers))
	copy(providers, s.providers)
	return providers, nil
}

type fileEntry struct {
	ID                    string  `mapstructure:"id"`
	Kind                  string  `mapstructure:"kind"`
	DisplayName           string  `mapstructure:"display_name"`
	Endpoint              string  `mapstructure:"endpoint"`
	Chains                []int64 `mapstructure:"chains"`
	Reliability           string  `mapstructure:"reliability"`
	Recommended           bool    `mapstructure:"recommended"`
	Popular               bool    `mapstructure:"popular"`
	SupportsUserOpHash    bool    `mapstructure:"supports_user_op_hash"`
	SupportsGasEstimation bool    `mapstructure:"supports_gas_estimation"`
	Sponsorship           string  `mapstructure:"sponsorship"`
}

func (e fileEntry) toDomain() (*domain.ProviderConfig, error) {
	switch domain.ProviderKind(e.Kind) {
	case domain.ProviderKindBundler:
		return domain.NewBundlerProvider(
			e.ID, e.DisplayName, e.Endpoint, e.Chains,
			domain.Reliability(e.Reliability), e.Recommended, e.Popular,
			domain.BundlerCapabilities{
				SupportsUserOpHash:    e.SupportsUserOpHash,
				SupportsGasEstimation: e.SupportsGasEstimation,
			},
		)
	case domain.ProviderKindPaymaster:
		sponsorship := domain.Sponsorship(e.Sponsorship)
		if sponsorship == "" {
			sponsorship = domain.SponsorshipNone
		}
		return domain.NewPaymasterProvider(
			e.ID, e.DisplayName, e.Endpoint, e.Chains,
			domain.Reliability(e.Reliability), e.Recommended, e.Popular,
			domain.PaymasterCapabilities{Sponsorship: sponsorship},
		)
	default:
		return nil, domain.ErrProviderInvalidKind
	}
}

type fileSource struct {
	path string
}

// NewFileSource returns a source reading the table from a JSON, YAML or TOML
// file under the "providers" key. The file is read again at every call so
// that a registry refresh picks up changes.
func NewFileSource(path string) ports.ProviderSource {
	return fileSource{path}
}

func (s fileSource) Providers(_ context.Context) ([]domain.ProviderConfig, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}

	entries := make([]fileEntry, 0)
	if err := v.UnmarshalKey("providers", &entries); err != nil {
		return nil, fmt.Errorf("parsing providers file: %w", err)
	}

	providers := make([]domain.ProviderConfig, 0, len(entries))
	for i, e := range entries {
		provider, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("provider #%d (%s): %w", i, e.ID, err)
		}
		providers = append(providers, *provider)
	}

	log.Debugf("loaded %d providers from %s", len(providers), s.path)
	return providers, nil
}
